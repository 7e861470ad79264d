package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securewipe/internal/wipe"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, EXIT_SUCCESS, exitCodeFor(nil))
	assert.Equal(t, EXIT_CONFIG, exitCodeFor(&wipe.Error{Kind: wipe.KindConfig, Err: errors.New("bad")}))
	assert.Equal(t, EXIT_CANCELED, exitCodeFor(&wipe.Error{Kind: wipe.KindCanceled, Err: context.Canceled}))
	assert.Equal(t, EXIT_ERROR, exitCodeFor(&wipe.Error{Kind: wipe.KindIO, Err: errors.New("eio")}))
	assert.Equal(t, EXIT_ERROR, exitCodeFor(errors.New("plain")))
	assert.Equal(t, EXIT_CONFIG, exitCodeFor(withCode(EXIT_CONFIG, errors.New("yaml"))))
	assert.Equal(t, EXIT_CANCELED, exitCodeFor(errors.Wrap(&wipe.Error{Kind: wipe.KindCanceled, Err: context.Canceled}, "run")))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"WIPE\n", true},
		{"  WIPE  \n", true},
		{"wipe\n", false},
		{"y\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		ok, err := confirm(strings.NewReader(tt.input), &out, "/tmp/x.img", wipe.TargetRegularFile, wipe.DoD5220)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "input %q", tt.input)
		assert.Contains(t, out.String(), "Type 'WIPE' to confirm")
		assert.Contains(t, out.String(), "проходов: 3")
	}
}

func TestParseTargetType(t *testing.T) {
	for in, want := range map[string]wipe.TargetType{
		"":      wipe.TargetAuto,
		"auto":  wipe.TargetAuto,
		"file":  wipe.TargetRegularFile,
		"BLOCK": wipe.TargetBlockDevice,
	} {
		got, err := parseTargetType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := parseTargetType("tape")
	assert.Error(t, err)
}

func TestPrintAlgorithmsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printAlgorithms(&buf, true))

	var got []algorithmInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, "dod5220", got[2].ID)
	assert.Equal(t, 3, got[2].Passes)
	assert.Equal(t, []string{"0x00", "0xFF", "RAND"}, got[2].Labels)
	assert.Equal(t, 35, got[3].Passes)
	assert.Equal(t, 0, got[4].Passes)
}

func TestPrintAlgorithmsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printAlgorithms(&buf, false))
	out := buf.String()
	for _, id := range []string{"zero", "random", "dod5220", "gutmann", "custom"} {
		assert.Contains(t, out, id)
	}
}
