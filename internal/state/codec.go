package state

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/payload"
	"github.com/roach88/ratio/internal/rational"
)

// StorageKey is the local-storage key holding the saved state.
const StorageKey = "ratio.state"

// fragmentSeparator splits the version prefix from the fragment body.
const fragmentSeparator = "-"

// lastUncompressedVersion is the newest version whose fragments are raw text.
const lastUncompressedVersion = 2

// fragmentEncoding renders compressed bytes as URL-safe text.
var fragmentEncoding = base64.RawURLEncoding

// Codec serializes States and resolves decoded names against game data.
type Codec struct {
	repo       gamedata.Repository
	compressor CompressionCodec
	logger     *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger for migration and fallback messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// NewCodec builds a Codec. Logging is discarded unless WithLogger is given.
func NewCodec(repo gamedata.Repository, compressor CompressionCodec, opts ...Option) *Codec {
	c := &Codec{
		repo:       repo,
		compressor: compressor,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode builds the current-version payload envelope for s.
func (c *Codec) Encode(s *State) payload.Object {
	groups := make(payload.Array, len(s.Groups))
	for i, g := range s.Groups {
		rows := make(payload.Array, len(g.Rows))
		for j, r := range g.Rows {
			rows[j] = c.encodeRow(s, r.Row)
		}
		groups[i] = payload.Object{"name": payload.String(g.Name), "rows": rows}
	}

	overrides := make(payload.Object, len(s.Settings.AssemblerOverrides))
	for category, machine := range s.Settings.AssemblerOverrides {
		overrides[category] = payload.String(machine)
	}

	return payload.Object{
		"version": payload.Int(CurrentVersion),
		"data": payload.Object{
			"groups":   groups,
			"settings": payload.Object{"assemblerOverrides": overrides},
		},
	}
}

// encodeRow writes null for a machine equal to the category default so the
// row follows later override changes.
func (c *Codec) encodeRow(s *State, r flow.Row) payload.Array {
	var machine payload.Value = payload.Null{}
	if r.Machine != nil {
		def, err := s.DefaultMachine(c.repo, r.Recipe.Category)
		if err != nil || def.Name != r.Machine.Name {
			machine = payload.String(r.Machine.Name)
		}
	}

	modules := make(payload.Array, len(r.Modules))
	for i, m := range r.Modules {
		modules[i] = moduleName(m)
	}

	return payload.Array{
		payload.String(r.Recipe.Name),
		machine,
		payload.String(r.Count.Fraction()),
		modules,
		moduleName(r.Beacon),
		payload.Int(r.BeaconCount),
	}
}

func moduleName(m *gamedata.Module) payload.Value {
	if m == nil {
		return payload.Null{}
	}
	return payload.String(m.Name)
}

// Marshal renders s as current-version payload text.
func (c *Codec) Marshal(s *State) (string, error) {
	text, err := payload.Marshal(c.Encode(s))
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(text), nil
}

// Decode migrates data stored at version and resolves it into a State.
func (c *Codec) Decode(version int, data payload.Value) (*State, error) {
	if version != CurrentVersion {
		c.logger.Debug("migrating payload", "from", version, "to", CurrentVersion)
	}
	migrated, err := Migrate(version, data)
	if err != nil {
		return nil, err
	}
	return c.resolve(migrated)
}

// Unmarshal parses current-or-older payload text with a version envelope.
func (c *Codec) Unmarshal(text string) (*State, error) {
	version, data, err := ParseEnvelope(text)
	if err != nil {
		return nil, err
	}
	return c.Decode(version, data)
}

// ParseEnvelope splits payload text into its version and data. An object
// without an integer version is reported as version 0, which no migration
// accepts.
func ParseEnvelope(text string) (int, payload.Value, error) {
	v, err := payload.Parse([]byte(text))
	if err != nil {
		return 0, nil, malformed(err, "parse payload")
	}
	obj, ok := v.(payload.Object)
	if !ok {
		return 0, nil, malformed(nil, "payload is %T, expected object", v)
	}
	version, ok := obj["version"].(payload.Int)
	if !ok {
		return 0, obj["data"], nil
	}
	data, ok := obj["data"]
	if !ok {
		return 0, nil, malformed(nil, "payload has no data")
	}
	return int(version), data, nil
}

// EncodeFragment renders s as "<version>-<base64url(compressed payload)>".
func (c *Codec) EncodeFragment(s *State) (string, error) {
	text, err := c.Marshal(s)
	if err != nil {
		return "", err
	}
	return c.encodeFragmentText(CurrentVersion, text)
}

func (c *Codec) encodeFragmentText(version int, text string) (string, error) {
	prefix := strconv.Itoa(version) + fragmentSeparator
	if version <= lastUncompressedVersion {
		return prefix + text, nil
	}
	compressed, err := c.compressor.Compress(text)
	if err != nil {
		return "", fmt.Errorf("compress fragment: %w", err)
	}
	return prefix + fragmentEncoding.EncodeToString(compressed), nil
}

// DecodeFragment parses a fragment of any known version. Text without a
// numeric version prefix is an unversioned version 1 fragment.
func (c *Codec) DecodeFragment(fragment string) (*State, error) {
	version, body, err := splitFragment(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return nil, err
	}
	if version < 1 || version > CurrentVersion {
		return nil, unknownVersion(version)
	}

	text := body
	if version > lastUncompressedVersion {
		raw, err := fragmentEncoding.DecodeString(body)
		if err != nil {
			return nil, malformed(err, "fragment body is not base64url")
		}
		if text, err = c.compressor.Decompress(raw); err != nil {
			return nil, malformed(err, "decompress fragment")
		}
	}

	v, err := payload.Parse([]byte(text))
	if err != nil {
		return nil, malformed(err, "parse fragment payload")
	}
	// The prefix is authoritative; a bare value is the data itself.
	if obj, ok := v.(payload.Object); ok {
		if data, ok := obj["data"]; ok {
			v = data
		}
	}
	return c.Decode(version, v)
}

func splitFragment(fragment string) (int, string, error) {
	prefix, body, ok := strings.Cut(fragment, fragmentSeparator)
	if !ok || prefix == "" || strings.Trim(prefix, "0123456789") != "" {
		return 1, fragment, nil
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", malformed(err, "fragment version %q", prefix)
	}
	return version, body, nil
}

// WriteFragment encodes s into fb.
func (c *Codec) WriteFragment(fb FragmentBackend, s *State) error {
	text, err := c.EncodeFragment(s)
	if err != nil {
		return err
	}
	return fb.Write(text)
}

// ReadFragment decodes the State held by fb. An empty fragment is a new State.
func (c *Codec) ReadFragment(fb FragmentBackend) (*State, error) {
	text, err := fb.Read()
	if err != nil {
		return nil, fmt.Errorf("read fragment: %w", err)
	}
	if strings.TrimPrefix(text, "#") == "" {
		return NewState(), nil
	}
	return c.DecodeFragment(text)
}

// ReadFragmentOrDefault is ReadFragment that falls back to a new State,
// returning the decode error alongside it.
func (c *Codec) ReadFragmentOrDefault(fb FragmentBackend) (*State, error) {
	s, err := c.ReadFragment(fb)
	if err != nil {
		c.logger.Warn("fragment unreadable, starting empty", "err", err)
		return NewState(), err
	}
	return s, nil
}

// SaveLocal writes s uncompressed under StorageKey.
func (c *Codec) SaveLocal(backend PersistenceBackend, s *State) error {
	text, err := c.Marshal(s)
	if err != nil {
		return err
	}
	if err := backend.Set(StorageKey, text); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadLocal reads the State saved under StorageKey. Nothing stored yields a
// new State. A stored version of 1 is read as version 3.
func (c *Codec) LoadLocal(backend PersistenceBackend) (*State, error) {
	text, ok, err := backend.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		return NewState(), nil
	}

	version, data, err := ParseEnvelope(text)
	if err != nil {
		return nil, err
	}
	if version == 1 {
		c.logger.Debug("remapping stored version", "key", StorageKey, "from", 1, "to", 3)
		version = 3
	}
	return c.Decode(version, data)
}

// LoadLocalOrDefault is LoadLocal that falls back to a new State, returning
// the error alongside it.
func (c *Codec) LoadLocalOrDefault(backend PersistenceBackend) (*State, error) {
	s, err := c.LoadLocal(backend)
	if err != nil {
		c.logger.Warn("saved state unreadable, starting empty", "key", StorageKey, "err", err)
		return NewState(), err
	}
	return s, nil
}

// resolve turns current-version data into a State.
func (c *Codec) resolve(data payload.Value) (*State, error) {
	d, ok := data.(payload.Object)
	if !ok {
		return nil, malformed(nil, "data is %T, expected object", data)
	}

	s := &State{Settings: Settings{AssemblerOverrides: map[string]string{}}}
	if err := decodeSettings(d["settings"], &s.Settings); err != nil {
		return nil, err
	}

	groups, ok := d["groups"].(payload.Array)
	if !ok {
		return nil, malformed(nil, "groups is not a list")
	}
	for gi, gv := range groups {
		gobj, ok := gv.(payload.Object)
		if !ok {
			return nil, malformed(nil, "group %d is %T, expected object", gi, gv)
		}
		name, _ := gobj["name"].(payload.String)
		g := s.AddGroup(string(name))

		rows, ok := gobj["rows"].(payload.Array)
		if !ok && !payload.IsNull(gobj["rows"]) {
			return nil, malformed(nil, "group %d rows is %T, expected list", gi, gobj["rows"])
		}
		for ri, rv := range rows {
			row, err := c.resolveRow(s, rv)
			if err != nil {
				return nil, fmt.Errorf("group %d row %d: %w", gi, ri, err)
			}
			if _, err := s.AddRow(g.ID, row); err != nil {
				return nil, err
			}
		}
	}
	s.ensureGroup()
	return s, nil
}

func decodeSettings(v payload.Value, out *Settings) error {
	if payload.IsNull(v) {
		return nil
	}
	obj, ok := v.(payload.Object)
	if !ok {
		return malformed(nil, "settings is %T, expected object", v)
	}
	overrides := obj["assemblerOverrides"]
	if payload.IsNull(overrides) {
		return nil
	}
	om, ok := overrides.(payload.Object)
	if !ok {
		return malformed(nil, "assemblerOverrides is %T, expected object", overrides)
	}
	for category, mv := range om {
		name, ok := mv.(payload.String)
		if !ok {
			return malformed(nil, "override for %q is %T, expected string", category, mv)
		}
		out.AssemblerOverrides[category] = string(name)
	}
	return nil
}

// field returns row[i], or null when the row is shorter.
func field(row payload.Array, i int) payload.Value {
	if i < len(row) {
		return row[i]
	}
	return payload.Null{}
}

func (c *Codec) resolveRow(s *State, v payload.Value) (flow.Row, error) {
	row, ok := v.(payload.Array)
	if !ok || len(row) < 3 {
		return flow.Row{}, malformed(nil, "row must be a list of at least 3 fields")
	}

	recipeName, ok := row[0].(payload.String)
	if !ok {
		return flow.Row{}, malformed(nil, "recipe name is %T", row[0])
	}
	recipe, err := c.repo.Recipe(string(recipeName))
	if err != nil {
		return flow.Row{}, unresolved(err, "recipe")
	}
	out := flow.Row{Recipe: recipe}

	switch m := row[1].(type) {
	case payload.String:
		if out.Machine, err = c.repo.Machine(string(m)); err != nil {
			return flow.Row{}, unresolved(err, "machine")
		}
	case payload.Null:
		if out.Machine, err = s.DefaultMachine(c.repo, recipe.Category); err != nil {
			return flow.Row{}, unresolved(err, "default machine for %q", recipe.Category)
		}
	default:
		return flow.Row{}, malformed(nil, "machine is %T", row[1])
	}

	countText, ok := row[2].(payload.String)
	if !ok {
		return flow.Row{}, malformed(nil, "machine count is %T, expected fraction text", row[2])
	}
	if out.Count, err = rational.Parse(string(countText)); err != nil {
		return flow.Row{}, malformed(err, "machine count")
	}
	if out.Count.Sign() < 0 {
		return flow.Row{}, malformed(nil, "machine count %s is negative", out.Count)
	}

	if mods := field(row, 3); !payload.IsNull(mods) {
		list, ok := mods.(payload.Array)
		if !ok {
			return flow.Row{}, malformed(nil, "modules is %T, expected list", mods)
		}
		out.Modules = make([]*gamedata.Module, len(list))
		for i, mv := range list {
			if out.Modules[i], err = c.resolveModule(mv); err != nil {
				return flow.Row{}, fmt.Errorf("module slot %d: %w", i, err)
			}
		}
	}

	if out.Beacon, err = c.resolveModule(field(row, 4)); err != nil {
		return flow.Row{}, fmt.Errorf("beacon: %w", err)
	}

	switch n := field(row, 5).(type) {
	case payload.Int:
		if n < 0 {
			return flow.Row{}, malformed(nil, "beacon count %d is negative", n)
		}
		out.BeaconCount = int(n)
	case payload.Null:
	default:
		return flow.Row{}, malformed(nil, "beacon count is %T", n)
	}

	return out, nil
}

func (c *Codec) resolveModule(v payload.Value) (*gamedata.Module, error) {
	switch m := v.(type) {
	case payload.Null:
		return nil, nil
	case payload.String:
		mod, err := c.repo.Module(string(m))
		if err != nil {
			return nil, unresolved(err, "module")
		}
		return mod, nil
	default:
		return nil, malformed(nil, "module is %T", v)
	}
}
