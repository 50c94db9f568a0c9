// --- START OF FINAL REVISED FILE pkg/transformer/encoding/decoder.go ---
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const (
	// sniffLen is the number of bytes used by http.DetectContentType.
	sniffLen = 512
	// checkLen bounds the null byte scan.
	checkLen = 1024
	// nullThreshold is the share of null bytes above which content is binary.
	nullThreshold = 0.15
)

// ErrBinaryContent is returned by DecodeText when the input looks binary.
var ErrBinaryContent = errors.New("binary content")

// textMIMETypes lists application/* types that carry source text.
var textMIMETypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/ecmascript": true,
	"application/typescript": true,
	"application/x-sh":       true,
	"application/sql":        true,
	"application/yaml":       true,
	"application/toml":       true,
	"image/svg+xml":          true,
	// http.DetectContentType falls back to octet-stream for most unknown
	// input; the null byte check decides those.
	"application/octet-stream": true,
}

// Decoded is the UTF-8 form of an input together with the detected charset.
type Decoded struct {
	Text     string
	Encoding string
	Certain  bool
}

// Decoder turns uploaded bytes into UTF-8 source text.
//
// Stability: Public Stable API - Implementations can be provided externally.
type Decoder interface {
	// DecodeText rejects binary input with ErrBinaryContent and otherwise
	// returns the content converted to UTF-8 with any byte order mark removed.
	DecodeText(content []byte) (string, error)
	// DetectAndDecode converts content to UTF-8 and reports the charset used.
	DetectAndDecode(content []byte) (Decoded, error)
	// IsBinary reports whether content is likely binary data.
	IsBinary(content []byte) bool
}

type charsetDecoder struct {
	defaultEncoding string
}

// NewDecoder creates a Decoder based on golang.org/x/net/html/charset.
// defaultEncoding (an IANA name such as "windows-1252") is applied when
// detection is uncertain; an empty or unknown name keeps the detected guess.
func NewDecoder(defaultEncoding string) Decoder { // minimal comment
	return &charsetDecoder{defaultEncoding: strings.TrimSpace(defaultEncoding)}
}

// DecodeText implements Decoder.
func (d *charsetDecoder) DecodeText(content []byte) (string, error) {
	if d.IsBinary(content) {
		return "", ErrBinaryContent
	}
	decoded, err := d.DetectAndDecode(content)
	if err != nil {
		return "", err
	}
	return decoded.Text, nil
}

// DetectAndDecode implements Decoder.
func (d *charsetDecoder) DetectAndDecode(content []byte) (Decoded, error) {
	// Valid UTF-8 without a BOM for another encoding needs no conversion.
	if utf8.Valid(content) && !hasUTF16BOM(content) {
		return Decoded{Text: trimBOM(string(content)), Encoding: "utf-8", Certain: true}, nil
	}

	enc, name, certain := charset.DetermineEncoding(content, "")
	if !certain && d.defaultEncoding != "" {
		if fallback, fallbackName := charset.Lookup(d.defaultEncoding); fallback != nil {
			enc, name, certain = fallback, fallbackName, true
		}
	}
	if name == "" {
		name = "unknown"
	}
	if enc == nil {
		return Decoded{Text: trimBOM(string(content)), Encoding: name, Certain: certain}, nil
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), enc.NewDecoder()))
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to convert from '%s': %w", name, err)
	}
	return Decoded{Text: trimBOM(string(out)), Encoding: name, Certain: certain}, nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func hasUTF16BOM(content []byte) bool {
	return bytes.HasPrefix(content, []byte{0xFF, 0xFE}) || bytes.HasPrefix(content, []byte{0xFE, 0xFF})
}

func isTextMIME(contentType string) bool {
	mimeType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if strings.HasPrefix(mimeType, "text/") || textMIMETypes[mimeType] {
		return true
	}
	return strings.HasSuffix(mimeType, "+xml") || strings.HasSuffix(mimeType, "+json")
}

// IsBinary implements Decoder. It combines MIME sniffing of the first 512
// bytes with the null byte share of the first 1024 bytes. Content with a
// UTF-16 byte order mark is text even though half its bytes may be null.
func (d *charsetDecoder) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	if hasUTF16BOM(content) {
		return false
	}
	if !isTextMIME(http.DetectContentType(content[:min(len(content), sniffLen)])) {
		return true
	}
	head := content[:min(len(content), checkLen)]
	nulls := bytes.Count(head, []byte{0x00})
	return float64(nulls)/float64(len(head)) > nullThreshold
}

// --- END OF FINAL REVISED FILE pkg/transformer/encoding/decoder.go ---
