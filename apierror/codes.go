package apierror

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrMalformedScore   ErrorCode = "MALFORMED_SCORE"
	ErrDurationMismatch ErrorCode = "MEASURE_DURATION_MISMATCH"
	ErrRecognition      ErrorCode = "RECOGNITION_FAILED"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:         http.StatusNotFound,
	ErrBadRequest:       http.StatusBadRequest,
	ErrMalformedScore:   http.StatusUnprocessableEntity,
	ErrDurationMismatch: http.StatusUnprocessableEntity,
	ErrRecognition:      http.StatusBadGateway,
	ErrInternalError:    http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
