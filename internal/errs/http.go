package errs

import "strings"

// Client-facing messages. These never carry internal detail.
const (
	MessageNotFound       = "Not Found"
	MessageInternalServer = "Something went wrong!"
)

// HTTPError is the error shape written to API clients.
//
// Only Message is serialized, as {"error": "<message>"}. Code and Status
// drive logging and the response status line.
type HTTPError struct {
	Code    string `json:"-"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError. It does not compare
// Code or Status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Not Found" -> "NOT_FOUND"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
