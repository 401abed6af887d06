package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jsphweid/musicbox/recognize"
	"github.com/jsphweid/musicbox/render"
	"github.com/jsphweid/musicbox/score"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

func MalformedScore(err error) *APIError {
	return newError(ErrMalformedScore, err.Error())
}

func RecognitionFailed(err error) *APIError {
	return newError(ErrRecognition, err.Error())
}

func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// From classifies err. Errors that are not score or API errors become
// INTERNAL_ERROR without leaking their text.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var malformed *score.MalformedScoreError
	if errors.As(err, &malformed) {
		return MalformedScore(malformed)
	}
	if errors.Is(err, recognize.ErrNoImages) {
		return BadRequest("no images part in the request")
	}
	var recognition *recognize.Error
	if errors.As(err, &recognition) {
		return RecognitionFailed(recognition)
	}
	var duration *render.DurationError
	if errors.As(err, &duration) {
		return newError(ErrDurationMismatch, duration.Error())
	}
	return InternalError("internal error")
}

// Write sends err as a JSON error response.
func Write(w http.ResponseWriter, err error) *APIError {
	apiErr := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(apiErr)
	return apiErr
}
