package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ratio/internal/gamedata"
	"github.com/roach88/ratio/internal/state"
	"github.com/roach88/ratio/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(FragmentResult{Fragment: "5-abc"})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"fragment": "5-abc"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeDecode, "failed to decode fragment", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E006", resp.Error.Code)
	assert.Equal(t, "failed to decode fragment", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("5-abc")
	require.NoError(t, err)
	assert.Equal(t, "5-abc\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "rate failed", map[string]string{"group": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]: rate failed")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E001", "rate failed", map[string]string{"group": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Migrated %s", "old.json")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Equal(t, "Migrated old.json\n", errOut.String())
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		err         error
		wantCode    string
		wantDetails any
	}{
		{
			name:     "plain error keeps code",
			code:     ErrCodeStore,
			err:      errors.New("disk full"),
			wantCode: ErrCodeStore,
		},
		{
			name:        "codec error adds details",
			code:        ErrCodeDecode,
			err:         fmt.Errorf("wrapped: %w", &state.CodecError{Code: state.ErrCodeMalformedPayload, Message: "bad"}),
			wantCode:    ErrCodeDecode,
			wantDetails: map[string]any{"codec": "MALFORMED_PAYLOAD"},
		},
		{
			name:     "missing snapshot is not found",
			code:     ErrCodeStore,
			err:      fmt.Errorf("restore: %w", store.ErrNotFound),
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "missing game data entry is not found",
			code:     ErrCodeGeneric,
			err:      &gamedata.NotFoundError{Kind: "recipe", Name: "x"},
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "missing group is not found",
			code:     ErrCodeGeneric,
			err:      fmt.Errorf("group %q: %w", "x", state.ErrUnknownHandle),
			wantCode: ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.code, "failed", tt.err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
			assert.Contains(t, resp.Error.Message, "failed: ")
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "scenarios failed")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "bad input"))))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad input", NewExitError(ExitCommandError, "bad input").Error())

	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to read payload", inner)
	assert.Equal(t, "failed to read payload: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
}
