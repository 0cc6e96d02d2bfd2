package errs

import (
	"net/http"
)

// NewNotFoundError creates the 404 returned when no route matches.
func NewNotFoundError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Message: MessageNotFound,
		Status:  http.StatusNotFound,
	}
}

// NewInternalServerError creates the generic 500.
//
// The message is fixed; the real cause belongs in the log only.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: MessageInternalServer,
		Status:  http.StatusInternalServerError,
	}
}
