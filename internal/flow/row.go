package flow

import (
	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/rational"
)

// Effect limits applied after modules and beacons are summed.
var (
	minEffect             = rational.MustNew(1, 5)
	maxEffect             = rational.FromInt(32767)
	minProductivityEffect = rational.One
)

// beaconEfficiency is the share of a beacon module's bonus each beacon
// transmits.
var beaconEfficiency = rational.MustNew(1, 2)

// Row is one line of the production chain. The caller guarantees that
// Machine can craft Recipe's category.
type Row struct {
	Recipe  *gamedata.Recipe
	Machine *gamedata.Machine
	Count   rational.Rational

	// Modules holds one entry per machine slot; nil is an empty slot.
	Modules []*gamedata.Module

	Beacon      *gamedata.Module
	BeaconCount int
}

// Effects are the multiplicative factors a row runs with.
type Effects struct {
	Speed        rational.Rational
	Productivity rational.Rational
	Consumption  rational.Rational
	Pollution    rational.Rational
}

// ComputeEffects sums module and beacon bonuses on top of a base of 1 and
// clamps the result. Productivity never drops below 1; the other effects
// stay within [1/5, 32767].
func ComputeEffects(row Row) Effects {
	e := Effects{
		Speed:        rational.One,
		Productivity: rational.One,
		Consumption:  rational.One,
		Pollution:    rational.One,
	}

	for _, m := range row.Modules {
		if m == nil {
			continue
		}
		e = e.add(m.Effects, rational.One)
	}

	if row.Beacon != nil && row.BeaconCount > 0 {
		scale := rational.FromInt(int64(row.BeaconCount)).Mul(beaconEfficiency)
		e = e.add(row.Beacon.Effects, scale)
	}

	return Effects{
		Speed:        e.Speed.Clamp(minEffect, maxEffect),
		Productivity: e.Productivity.Clamp(minProductivityEffect, maxEffect),
		Consumption:  e.Consumption.Clamp(minEffect, maxEffect),
		Pollution:    e.Pollution.Clamp(minEffect, maxEffect),
	}
}

func (e Effects) add(b gamedata.Effects, scale rational.Rational) Effects {
	return Effects{
		Speed:        e.Speed.Add(b.Speed.Mul(scale)),
		Productivity: e.Productivity.Add(b.Productivity.Mul(scale)),
		Consumption:  e.Consumption.Add(b.Consumption.Mul(scale)),
		Pollution:    e.Pollution.Add(b.Pollution.Mul(scale)),
	}
}
