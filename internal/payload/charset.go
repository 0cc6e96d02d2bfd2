package payload

import (
	"strings"

	"github.com/deppfellow/data-api/internal/errs"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// charsets maps the accepted charset labels to their decoders. A byte order
// mark overrides the declared endianness and is stripped.
var charsets = map[string]encoding.Encoding{
	"utf-8":    unicode.UTF8BOM,
	"utf-16":   unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"utf-32":   utf32.UTF32(utf32.LittleEndian, utf32.UseBOM),
	"utf-32le": utf32.UTF32(utf32.LittleEndian, utf32.UseBOM),
	"utf-32be": utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
}

// charsetFor returns the decoder for a Content-Type charset parameter. An
// empty label means UTF-8.
func charsetFor(label string) (encoding.Encoding, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return unicode.UTF8BOM, nil
	}

	enc, ok := charsets[label]
	if !ok {
		return nil, errs.BodyErrorf(errs.CodeUnsupportedCharset, "unsupported charset %q", label)
	}
	return enc, nil
}

// toUTF8 decodes data from enc. Invalid sequences become U+FFFD.
func toUTF8(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errs.NewBodyError(errs.CodeMalformedBody, err)
	}
	return out, nil
}
