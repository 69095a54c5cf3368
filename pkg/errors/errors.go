package errors

import (
	"net/http"

	"github.com/stitchfactory/sf-order/pkg/status"
)

// AppError carries the HTTP status code and machine-readable status next to
// the user-facing message, so handlers can destructure it at the edge.
type AppError struct {
	HTTPStatusCode int
	Status         string
	Message        string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(httpStatusCode int, st string, message string) error {
	return &AppError{
		HTTPStatusCode: httpStatusCode,
		Status:         st,
		Message:        message,
	}
}

// Destruct resolves any error into an AppError. Unknown errors map to an
// internal server error so their internals never reach a response body.
func Destruct(err error) *AppError {
	if ae, ok := err.(*AppError); ok {
		return ae
	}

	return &AppError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        "an unexpected error occurred",
	}
}
