// --- START OF FINAL REVISED FILE pkg/transformer/encoding/decoder_test.go ---
package encoding_test

import (
	"bytes"
	"testing"

	"github.com/stackvity/code-transformer/pkg/transformer/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func encodeBytes(t *testing.T, text string, enc transform.Transformer) []byte {
	t.Helper()
	out, _, err := transform.Bytes(enc, []byte(text))
	require.NoError(t, err)
	return out
}

func TestDetectAndDecode_UTF8(t *testing.T) {
	decoder := encoding.NewDecoder("")
	decoded, err := decoder.DetectAndDecode([]byte("fn main() { println!(\"héllo\"); }"))

	require.NoError(t, err)
	assert.Equal(t, "utf-8", decoded.Encoding)
	assert.True(t, decoded.Certain)
	assert.Equal(t, "fn main() { println!(\"héllo\"); }", decoded.Text)
}

func TestDetectAndDecode_UTF16LE_WithBOM(t *testing.T) {
	decoder := encoding.NewDecoder("")
	original := "def greet(name):\n    return name\n"
	input := append([]byte{0xFF, 0xFE}, encodeBytes(t, original, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())...)

	decoded, err := decoder.DetectAndDecode(input)

	require.NoError(t, err)
	assert.Contains(t, decoded.Encoding, "utf-16le")
	assert.True(t, decoded.Certain)
	assert.Equal(t, original, decoded.Text)
}

func TestDetectAndDecode_StripsBOM(t *testing.T) {
	decoder := encoding.NewDecoder("")
	testCases := []struct {
		name  string
		input []byte
	}{
		{name: "UTF-16LE", input: []byte{0xFF, 0xFE, 'h', 0, 'i', 0}},
		{name: "UTF-16BE", input: []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}},
		{name: "UTF-8", input: []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := decoder.DetectAndDecode(tc.input)
			require.NoError(t, err)
			assert.Equal(t, "hi", decoded.Text)
		})
	}
}

func TestDetectAndDecode_FallbackEncoding(t *testing.T) {
	original := "print('café')"
	input := encodeBytes(t, original, charmap.Windows1252.NewEncoder())

	decoded, err := encoding.NewDecoder("windows-1252").DetectAndDecode(input)

	require.NoError(t, err)
	assert.Equal(t, "windows-1252", decoded.Encoding)
	assert.True(t, decoded.Certain)
	assert.Equal(t, original, decoded.Text)
}

func TestDetectAndDecode_InvalidFallbackKeepsGuess(t *testing.T) {
	input := encodeBytes(t, "café", charmap.Windows1252.NewEncoder())

	decoded, err := encoding.NewDecoder("not-a-charset").DetectAndDecode(input)

	require.NoError(t, err)
	assert.NotEmpty(t, decoded.Encoding)
	assert.False(t, decoded.Certain)
	assert.Equal(t, "café", decoded.Text)
}

func TestDecodeText(t *testing.T) {
	decoder := encoding.NewDecoder("")

	text, err := decoder.DecodeText([]byte("\ufeffconsole.log('hi')"))
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')", text)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err = decoder.DecodeText(png)
	assert.ErrorIs(t, err, encoding.ErrBinaryContent)
}

func TestIsBinary(t *testing.T) {
	decoder := encoding.NewDecoder("")

	testCases := []struct {
		name     string
		content  []byte
		expected bool
	}{
		{name: "Empty", content: nil, expected: false},
		{name: "Go source", content: []byte("package main\n\nfunc main() {}\n"), expected: false},
		{name: "JSON", content: []byte(`{"a": [1, 2, 3]}`), expected: false},
		{name: "HTML", content: []byte("<!DOCTYPE html><html><body></body></html>"), expected: false},
		{name: "PNG header", content: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), expected: true},
		{name: "Mostly nulls", content: append([]byte("ab"), bytes.Repeat([]byte{0}, 100)...), expected: true},
		{name: "Few nulls", content: append(bytes.Repeat([]byte("x"), 200), 0), expected: false},
		{name: "UTF-16 with BOM", content: append([]byte{0xFF, 0xFE}, encodeBytes(t, "abc", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())...), expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, decoder.IsBinary(tc.content))
		})
	}
}

// --- END OF FINAL REVISED FILE pkg/transformer/encoding/decoder_test.go ---
