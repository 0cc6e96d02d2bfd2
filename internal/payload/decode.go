package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/deppfellow/data-api/internal/errs"
)

// MaxDepth is the deepest array/object nesting accepted in a body. It
// matches the limit encoding/json applies when the body is echoed back.
const MaxDepth = 10000

// Parse decodes a request body in strict mode: after optional whitespace
// the body must start with '{' or '[' and hold exactly one JSON value.
// An empty body yields Absent.
//
// Failures are *errs.BodyError with code MALFORMED_BODY.
func Parse(data []byte) (Value, error) {
	if len(data) == 0 {
		return Absent(), nil
	}

	if first := firstNonSpace(data); first != '{' && first != '[' {
		return Value{}, errs.BodyErrorf(errs.CodeMalformedBody, "strict body must start with '{' or '[', got %s", describeByte(data, first))
	}

	v, err := decode(data)
	if err != nil {
		return Value{}, errs.NewBodyError(errs.CodeMalformedBody, err)
	}
	return v, nil
}

func firstNonSpace(data []byte) byte {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}

func describeByte(data []byte, c byte) string {
	if len(bytes.TrimLeft(data, " \t\n\r")) == 0 {
		return "only whitespace"
	}
	return fmt.Sprintf("%q", c)
}

// decode reads exactly one JSON value of any kind from data.
func decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Value{}, unexpected(err)
	}

	v, err := decodeValue(dec, tok, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return Value{}, err
	}

	return v, nil
}

func decodeValue(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, fmt.Errorf("exceeded max nesting depth %d at offset %d", MaxDepth, dec.InputOffset())
		}
		switch t {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	var members []Member

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, unexpected(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string at offset %d", dec.InputOffset())
		}

		valTok, err := dec.Token()
		if err != nil {
			return Value{}, unexpected(err)
		}
		member, err := decodeValue(dec, valTok, depth)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: member})
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpected(err)
	}
	return Object(members...), nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	var items []Value

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, unexpected(err)
		}
		item, err := decodeValue(dec, tok, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpected(err)
	}
	return Array(items...), nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
