package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Codes of the MalformedBody family. They are logged, never sent.
const (
	CodeMalformedBody       = "MALFORMED_BODY"
	CodeBodyTooLarge        = "BODY_TOO_LARGE"
	CodeUnsupportedCharset  = "UNSUPPORTED_CHARSET"
	CodeUnsupportedEncoding = "UNSUPPORTED_ENCODING"
)

// BodyError reports that a request declared a JSON body which could not be
// read or decoded.
type BodyError struct {
	Code string
	Err  error
}

func (e *BodyError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

// NewBodyError wraps cause in a BodyError and records the call stack.
func NewBodyError(code string, cause error) error {
	return errors.WithStack(&BodyError{Code: code, Err: cause})
}

// BodyErrorf is NewBodyError with a formatted cause.
func BodyErrorf(code string, format string, args ...interface{}) error {
	return NewBodyError(code, fmt.Errorf(format, args...))
}
