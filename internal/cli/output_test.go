package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/query"
	"github.com/roach88/storefront/internal/route"
	"github.com/roach88/storefront/internal/session"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data, func(w io.Writer) { fmt.Fprintln(w, "ignored") })
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("data", func(w io.Writer) { fmt.Fprintln(w, "pretty") }))
	assert.Equal(t, "pretty\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("data", nil))
	assert.Equal(t, "data\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNetwork, "backend unreachable", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNetwork, resp.Error.Code)
	assert.Equal(t, "backend unreachable", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeValidation, "bad input", map[string]string{"email": "required"}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E005]: bad input")
	assert.Contains(t, errOut.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	buf := &bytes.Buffer{}
	quiet := &OutputFormatter{Format: "text", Writer: buf}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, buf.String())

	loud := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", buf.String())
}

func TestOutputFormatter_FailValidationDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	ve := &session.ValidationError{Fields: map[string]string{"email": "Email is required"}}
	err := formatter.Fail(ve)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorAs(t, err, &ve)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, map[string]any{"email": "Email is required"}, resp.Error.Details)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"network", &api.NetworkError{Op: "items", Err: errors.New("refused")}, ErrCodeNetwork, ExitFailure},
		{"http", &api.HTTPError{Op: "items", Status: 503, Message: "Service unavailable"}, ErrCodeHTTP, ExitFailure},
		{"validation", &session.ValidationError{Fields: map[string]string{"x": "y"}}, ErrCodeValidation, ExitCommandError},
		{"empty query", query.ErrEmptyQuery, ErrCodeValidation, ExitCommandError},
		{"not found", fmt.Errorf("open /x: %w", route.ErrNotFound), ErrCodeNotFound, ExitCommandError},
		{"command error", NewExitError(ExitCommandError, "bad path"), ErrCodeGeneric, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.exit, exit)
		})
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: ExitSuccess,
		},
		{
			name:     "simple error",
			err:      NewExitError(ExitFailure, "scenario failed"),
			wantCode: ExitFailure,
			wantMsg:  "scenario failed",
		},
		{
			name:     "wrapped error",
			err:      WrapExitError(ExitCommandError, "load config", errors.New("no such file")),
			wantCode: ExitCommandError,
			wantMsg:  "load config: no such file",
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: ExitFailure,
			wantMsg:  "boom",
		},
		{
			name:     "exit error behind fmt wrap",
			err:      fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")),
			wantCode: ExitCommandError,
			wantMsg:  "outer: inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, GetExitCode(tt.err))
			if tt.err != nil {
				assert.Equal(t, tt.wantMsg, tt.err.Error())
			}
		})
	}
}
