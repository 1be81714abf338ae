package state

import (
	"github.com/roach88/ratio/internal/payload"
	"github.com/roach88/ratio/internal/rational"
)

// CurrentVersion is the schema version written by this package.
const CurrentVersion = 5

// migration upgrades payload data from version From to From+1.
type migration struct {
	From  int
	Apply func(payload.Value) (payload.Value, error)
}

// migrations is ordered by From and covers every version below CurrentVersion.
var migrations = []migration{
	{From: 1, Apply: wrapRowsInGroup},
	{From: 2, Apply: markCompressible},
	{From: 3, Apply: ensureGroupList},
	{From: 4, Apply: countsToFractions},
}

// Migrate upgrades data stored at version to CurrentVersion by applying
// every later migration in order.
func Migrate(version int, data payload.Value) (payload.Value, error) {
	if version < 1 || version > CurrentVersion {
		return nil, unknownVersion(version)
	}
	for _, m := range migrations {
		if m.From < version {
			continue
		}
		next, err := m.Apply(data)
		if err != nil {
			return nil, err
		}
		data = next
	}
	return data, nil
}

// MigrateEnvelope upgrades payload text of any known version to a
// current-version envelope without resolving names against game data.
func MigrateEnvelope(text string) (payload.Object, error) {
	version, data, err := ParseEnvelope(text)
	if err != nil {
		return nil, err
	}
	migrated, err := Migrate(version, data)
	if err != nil {
		return nil, err
	}
	return payload.Object{"version": payload.Int(CurrentVersion), "data": migrated}, nil
}

// wrapRowsInGroup: version 1 stored a bare row list.
func wrapRowsInGroup(data payload.Value) (payload.Value, error) {
	rows, ok := data.(payload.Array)
	if !ok {
		return nil, malformed(nil, "version 1 data: expected row list, got %T", data)
	}
	return groupedData(payload.Array{defaultGroup(rows)}, payload.Object{}), nil
}

// markCompressible: versions 3 and later may be compressed in transport;
// the data itself is unchanged.
func markCompressible(data payload.Value) (payload.Value, error) {
	return data, nil
}

// ensureGroupList brings every pre-multi-group shape to {groups, settings}.
// Already grouped data passes through.
func ensureGroupList(data payload.Value) (payload.Value, error) {
	switch d := data.(type) {
	case payload.Object:
		if _, ok := d["groups"]; ok {
			if _, ok := d["settings"]; !ok {
				return groupedData(d["groups"], payload.Object{}), nil
			}
			return d, nil
		}
		rows, ok := d["rows"].(payload.Array)
		if !ok {
			return nil, malformed(nil, "version 3 data: no groups or rows")
		}
		g := defaultGroup(rows)
		if name, ok := d["name"].(payload.String); ok {
			g["name"] = name
		}
		settings, ok := d["settings"].(payload.Object)
		if !ok {
			settings = payload.Object{}
		}
		return groupedData(payload.Array{g}, settings), nil
	case payload.Array:
		if len(d) > 0 {
			if _, isGroup := d[0].(payload.Object); isGroup {
				return groupedData(d, payload.Object{}), nil
			}
		}
		return groupedData(payload.Array{defaultGroup(d)}, payload.Object{}), nil
	default:
		return nil, malformed(nil, "version 3 data: unexpected %T", data)
	}
}

// countsToFractions: version 5 stores machine counts as fraction text.
func countsToFractions(data payload.Value) (payload.Value, error) {
	d, ok := data.(payload.Object)
	if !ok {
		return nil, malformed(nil, "version 4 data: expected object, got %T", data)
	}
	groups, ok := d["groups"].(payload.Array)
	if !ok {
		return nil, malformed(nil, "version 4 data: groups is not a list")
	}

	out := make(payload.Array, len(groups))
	for gi, gv := range groups {
		g, ok := gv.(payload.Object)
		if !ok {
			return nil, malformed(nil, "version 4 group %d: expected object", gi)
		}
		rows, ok := g["rows"].(payload.Array)
		if !ok {
			return nil, malformed(nil, "version 4 group %d: rows is not a list", gi)
		}
		newRows := make(payload.Array, len(rows))
		for ri, rv := range rows {
			row, ok := rv.(payload.Array)
			if !ok || len(row) < 3 {
				return nil, malformed(nil, "version 4 group %d row %d: expected list of at least 3 fields", gi, ri)
			}
			row = append(payload.Array(nil), row...)
			switch c := row[2].(type) {
			case payload.Int:
				row[2] = payload.String(rational.FromInt(int64(c)).Fraction())
			case payload.String:
			default:
				return nil, malformed(nil, "version 4 group %d row %d: machine count is %T", gi, ri, row[2])
			}
			newRows[ri] = row
		}
		ng := make(payload.Object, len(g))
		for k, v := range g {
			ng[k] = v
		}
		ng["rows"] = newRows
		out[gi] = ng
	}

	nd := make(payload.Object, len(d))
	for k, v := range d {
		nd[k] = v
	}
	nd["groups"] = out
	return nd, nil
}

func defaultGroup(rows payload.Array) payload.Object {
	return payload.Object{"name": payload.String(DefaultGroupName), "rows": rows}
}

func groupedData(groups payload.Value, settings payload.Object) payload.Object {
	return payload.Object{"groups": groups, "settings": settings}
}
