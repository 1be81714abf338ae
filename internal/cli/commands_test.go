package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Unversioned fragment: two assembling-machine-1 making copper cable.
	cableFragment = `[["copper-cable",null,2]]`

	cablePayload = `{"data":{"groups":[{"name":"Factory","rows":[["copper-cable",null,"2",[],null,0]]}],"settings":{"assemblerOverrides":{}}},"version":5}`
)

func TestRate_TextFromFragment(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "rate", cableFragment)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "in   copper-plate"), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], " 2/s"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "out  copper-cable"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], " 4/s"), lines[1])
}

func TestRate_DigitsAndFractions(t *testing.T) {
	dir := t.TempDir()
	fragment := `[["copper-cable",null,"1/3"]]`

	out, err := runCLI(t, dir, "rate", fragment)
	require.NoError(t, err)
	assert.Contains(t, out, " 0.333/s")
	assert.Contains(t, out, " 0.667/s")

	out, err = runCLI(t, dir, "rate", "--digits", "1", fragment)
	require.NoError(t, err)
	assert.Contains(t, out, " 0.3/s")
	assert.Contains(t, out, " 0.7/s")

	out, err = runCLI(t, dir, "rate", "--fraction", fragment)
	require.NoError(t, err)
	assert.Contains(t, out, " 1/3/s")
	assert.Contains(t, out, " 2/3/s")
}

func TestRate_JSON(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--format", "json", "rate", `[["copper-cable","assembling-machine-2",1]]`)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)

	ingredients := data["ingredients"].([]any)
	require.Len(t, ingredients, 1)
	plate := ingredients[0].(map[string]any)
	assert.Equal(t, "copper-plate", plate["name"])
	assert.Equal(t, "item", plate["kind"])
	assert.Equal(t, "3/2", plate["amount"])
	assert.Equal(t, "1.5", plate["rate"])

	products := data["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "3", products[0].(map[string]any)["amount"])
}

func TestRate_BalancedPlan(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "rate", `[]`)
	require.NoError(t, err)
	assert.Equal(t, "No net flow.\n", out)

	out, err = runCLI(t, t.TempDir(), "--format", "json", "rate", `[]`)
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, []any{}, data["ingredients"])
	assert.Equal(t, []any{}, data["products"])
}

func TestRate_Group(t *testing.T) {
	// Raw version 2 fragment; the second group makes gears.
	fragment := `2-{"groups":[{"name":"Cable","rows":[["copper-cable",null,2]]},{"name":"Gears","rows":[["iron-gear-wheel",null,1]]}],"settings":{}}`
	dir := t.TempDir()

	out, err := runCLI(t, dir, "rate", "--group", "Gears", fragment)
	require.NoError(t, err)
	assert.Contains(t, out, "iron-plate")
	assert.NotContains(t, out, "copper")

	out, err = runCLI(t, dir, "--format", "json", "rate", "--group", "Nope", fragment)
	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestRate_BadFragment(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--format", "json", "rate", "9-abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeDecode, resp.Error.Code)
	assert.Equal(t, map[string]any{"codec": "UNKNOWN_SCHEMA_VERSION"}, resp.Error.Details)
}

func TestRate_UnresolvedRecipe(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "rate", `[["warp-drive",null,1]]`)
	require.Error(t, err)
	assert.Contains(t, out, "Error [E006]")
	assert.Contains(t, out, "UNRESOLVED_REFERENCE")
}

func TestDecode(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "decode", cableFragment)
	require.NoError(t, err)
	assert.Equal(t, cablePayload+"\n", out)

	out, err = runCLI(t, t.TempDir(), "--format", "json", "decode", cableFragment)
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	p := data["payload"].(map[string]any)
	assert.Equal(t, float64(5), p["version"])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(cablePayload), 0644))

	fragment, err := runCLI(t, dir, "encode", path)
	require.NoError(t, err)
	fragment = strings.TrimSpace(fragment)
	assert.True(t, strings.HasPrefix(fragment, "5-"), fragment)

	out, err := runCLI(t, dir, "decode", fragment)
	require.NoError(t, err)
	assert.Equal(t, cablePayload+"\n", out)
}

func TestEncode_OlderPayloadAndErrors(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"version":1,"data":[["copper-cable",null,2]]}`), 0644))

	out, err := runCLI(t, dir, "--format", "json", "encode", old)
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.True(t, strings.HasPrefix(data["fragment"].(string), "5-"))

	out, err = runCLI(t, dir, "--format", "json", "encode", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeInput, decodeResponse(t, out).Error.Code)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":5}`), 0644))
	out, err = runCLI(t, dir, "--format", "json", "encode", bad)
	require.Error(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, ErrCodeDecode, resp.Error.Code)
	assert.Equal(t, map[string]any{"codec": "MALFORMED_PAYLOAD"}, resp.Error.Details)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"version":4,"data":{"groups":[{"name":"Main","rows":[["no-such-recipe",null,7]]}],"settings":{}}}`), 0644))

	// Names are not resolved, so unknown recipes migrate fine.
	want := `{"data":{"groups":[{"name":"Main","rows":[["no-such-recipe",null,"7"]]}],"settings":{}},"version":5}`

	out, err := runCLI(t, dir, "migrate", old)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	target := filepath.Join(dir, "new.json")
	out, err = runCLI(t, dir, "migrate", old, "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Migrated to version 5")
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, want, string(written))
}

func TestMigrate_Errors(t *testing.T) {
	dir := t.TempDir()
	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version":6,"data":{}}`), 0644))

	out, err := runCLI(t, dir, "migrate", future)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
	assert.Contains(t, out, "UNKNOWN_SCHEMA_VERSION")

	out, err = runCLI(t, dir, "--format", "json", "migrate", future, "-o", filepath.Join(dir, "missing", "dir", "x.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeDecode, decodeResponse(t, out).Error.Code)

	ok := filepath.Join(dir, "ok.json")
	require.NoError(t, os.WriteFile(ok, []byte(`{"version":5,"data":{"groups":[],"settings":{}}}`), 0644))
	out, err = runCLI(t, dir, "--format", "json", "migrate", ok, "-o", filepath.Join(dir, "missing", "dir", "x.json"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeWriteFailed, decodeResponse(t, out).Error.Code)
}

func TestSaveLoadRate(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "save", cableFragment)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved snapshot")
	assert.Contains(t, out, "(seq 1)")

	out, err = runCLI(t, dir, "rate")
	require.NoError(t, err)
	assert.Contains(t, out, "copper-cable")
	assert.Contains(t, out, " 4/s")

	fragment, err := runCLI(t, dir, "load")
	require.NoError(t, err)
	fragment = strings.TrimSpace(fragment)
	assert.True(t, strings.HasPrefix(fragment, "5-"), fragment)

	out, err = runCLI(t, dir, "decode", fragment)
	require.NoError(t, err)
	assert.Equal(t, cablePayload+"\n", out)
}

func TestLoad_EmptyDatabase(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "--format", "json", "load")
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	fragment := data["fragment"].(string)

	out, err = runCLI(t, dir, "decode", fragment)
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"groups":[{"name":"Factory","rows":[]}],"settings":{"assemblerOverrides":{}}},"version":5}`+"\n", out)

	out, err = runCLI(t, dir, "rate")
	require.NoError(t, err)
	assert.Equal(t, "No net flow.\n", out)
}

func TestSave_BadFragmentSavesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "save", "5-!!!")
	require.Error(t, err)

	out, err := runCLI(t, dir, "history")
	require.NoError(t, err)
	assert.Equal(t, "No saved snapshots.\n", out)
}

func TestHistoryAndRestore(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "--format", "json", "save", cableFragment)
	require.NoError(t, err)
	first := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, float64(1), first["seq"])

	_, err = runCLI(t, dir, "save", `[["iron-gear-wheel",null,1]]`)
	require.NoError(t, err)

	out, err = runCLI(t, dir, "--format", "json", "history")
	require.NoError(t, err)
	data := decodeResponse(t, out).Data.(map[string]any)
	assert.Equal(t, "ratio.state", data["key"])
	snaps := data["snapshots"].([]any)
	require.Len(t, snaps, 2)
	assert.Equal(t, first["id"], snaps[0].(map[string]any)["id"])
	assert.Equal(t, float64(2), snaps[1].(map[string]any)["seq"])

	out, err = runCLI(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, first["id"].(string))
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = runCLI(t, dir, "rate")
	require.NoError(t, err)
	assert.Contains(t, out, "iron-gear-wheel")

	out, err = runCLI(t, dir, "history", "--restore", first["id"].(string))
	require.NoError(t, err)
	assert.Contains(t, out, "(seq 3)")

	out, err = runCLI(t, dir, "rate")
	require.NoError(t, err)
	assert.Contains(t, out, "copper-cable")
	assert.NotContains(t, out, "iron-gear-wheel")
}

func TestHistory_RestoreMissing(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--format", "json", "history", "--restore", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNotFound, decodeResponse(t, out).Error.Code)
}
