package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatAuto, ParseFormat("auto"))
	assert.Equal(t, FormatAuto, ParseFormat("anything else"))
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	assert.Equal(t, FormatText, DetectFormat(buf, FormatText))
	assert.Equal(t, FormatJSON, DetectFormat(buf, FormatJSON))
	// Non-TTY writer resolves auto to JSON
	assert.Equal(t, FormatJSON, DetectFormat(buf, FormatAuto))
}

func TestFormatterPrintJSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	f := NewFormatter(FormatJSON, buf)
	require.NoError(t, f.Print(map[string]string{"hash": "0xabc"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "0xabc", decoded["hash"])
	assert.True(t, f.IsJSON())
}

func TestFormatterPrintText(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	f := NewFormatter(FormatText, buf)
	require.NoError(t, f.Print("hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestFormatErrorJSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	err := ethrawerr.WithSuggestion(
		ethrawerr.WithDetails(ethrawerr.ErrChecksumMismatch, map[string]string{"address": "0xabc"}),
		"use the checksummed form",
	)
	require.NoError(t, FormatError(buf, err, FormatJSON))

	var out ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "CHECKSUM_MISMATCH", out.Error.Code)
	assert.Equal(t, "0xabc", out.Error.Details["address"])
	assert.Equal(t, "use the checksummed form", out.Error.Suggestion)
	assert.Equal(t, ethrawerr.ExitInput, out.Error.ExitCode)
}

func TestFormatErrorText(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	err := ethrawerr.WithSuggestion(ethrawerr.ErrInvalidMnemonic, "check the word list")
	require.NoError(t, FormatError(buf, err, FormatText))

	s := buf.String()
	assert.Contains(t, s, "Error:")
	assert.Contains(t, s, "Suggestion: check the word list")
}

func TestFormatErrorGeneric(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, FormatError(buf, assert.AnError, FormatJSON))

	var out ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "GENERAL_ERROR", out.Error.Code)
	assert.Equal(t, ethrawerr.ExitGeneral, out.Error.ExitCode)
}

func TestFormatErrorNil(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, FormatError(buf, nil, FormatJSON))
	assert.Empty(t, buf.String())
}

func TestTableRender(t *testing.T) {
	t.Parallel()

	table := NewTable("UNIT", "EXPONENT")
	table.AddRow("wei", "0")
	table.AddRow("ether", "18")

	s := table.String()
	assert.Contains(t, s, "UNIT")
	assert.Contains(t, s, "wei")
	assert.Contains(t, s, "ether")
	// Columns align
	assert.Contains(t, s, "wei    0")
}

func TestCanRenderQRNonTTY(t *testing.T) {
	t.Parallel()

	assert.False(t, CanRenderQR(&bytes.Buffer{}))
}
