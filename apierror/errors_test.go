package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsphweid/musicbox/recognize"
	"github.com/jsphweid/musicbox/render"
	"github.com/jsphweid/musicbox/score"
	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"malformed", &score.MalformedScoreError{Measure: 1, Note: -1, Reason: "no events"}, ErrMalformedScore, http.StatusUnprocessableEntity},
		{"wrapped malformed", fmt.Errorf("upload: %w", &score.MalformedScoreError{Measure: -1, Note: -1, Reason: "x"}), ErrMalformedScore, http.StatusUnprocessableEntity},
		{"duration", &render.DurationError{Measure: 0, Staff: 1, Want: 4, Got: 3}, ErrDurationMismatch, http.StatusUnprocessableEntity},
		{"no images", recognize.ErrNoImages, ErrBadRequest, http.StatusBadRequest},
		{"recognition", &recognize.Error{Recognizer: "oemer", Err: errors.New("exit status 1")}, ErrRecognition, http.StatusBadGateway},
		{"api", NotFound("score.musicxml"), ErrNotFound, http.StatusNotFound},
		{"other", errors.New("disk on fire"), ErrInternalError, http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.Status)
		})
	}
}

func TestInternalErrorsHideText(t *testing.T) {
	assert.NotContains(t, From(errors.New("secret path")).Message, "secret")
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, BadRequest("no images").WithDetails("field images"))

	assert := assert.New(t)
	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Equal("application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal("BAD_REQUEST", body["code"])
	assert.Equal("no images", body["message"])
	assert.Equal("field images", body["details"])
}

func TestUnknownCodeIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("NOPE").StatusCode())
}
