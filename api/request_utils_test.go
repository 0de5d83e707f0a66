package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRequestError(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodPost, "/fields")
		HandleRequestError(c, ValidationError(MsgMissingFields, map[string]string{"name": "Name is required"}))

		resp := AssertJSONErrorResponse(t, w, http.StatusBadRequest, MsgMissingFields)
		assert.Equal(t, map[string]string{"name": "Name is required"}, resp.Errors)
		assert.Nil(t, resp.Collection)
	})

	t.Run("Submission", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodPost, "/forms")
		HandleRequestError(c, SubmissionError(map[string]string{"dob": "Dob is not a valid Date format."}))

		resp := AssertJSONErrorResponse(t, w, http.StatusBadRequest, MsgFieldErrors)
		assert.Equal(t, "Dob is not a valid Date format.", resp.Collection["dob"])
		assert.Nil(t, resp.Errors)
	})

	t.Run("Conflict", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodPost, "/fields")
		HandleRequestError(c, ConflictError("email"))

		resp := AssertJSONErrorResponse(t, w, http.StatusConflict, MsgDuplicateField)
		assert.Equal(t, `Duplicate "email" field.`, resp.Errors["name"])
	})

	t.Run("StoreHidesCause", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodPost, "/forms")
		HandleRequestError(c, StoreError(errors.New("disk I/O error on /var/lib/db")))

		AssertJSONErrorResponse(t, w, http.StatusBadRequest, MsgSupport)
		assert.NotContains(t, w.Body.String(), "disk I/O")
	})

	t.Run("WrappedRequestError", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodGet, "/fields/9")
		HandleRequestError(c, fmt.Errorf("lookup: %w", NotFoundError(MsgFieldNotFound)))

		AssertJSONErrorResponse(t, w, http.StatusNotFound, MsgFieldNotFound)
	})

	t.Run("UnknownError", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodGet, "/fields")
		HandleRequestError(c, errors.New("boom"))

		resp := AssertJSONErrorResponse(t, w, http.StatusInternalServerError, MsgInternalServerError)
		assert.NotContains(t, w.Body.String(), "boom")
		assert.NotEmpty(t, resp.RequestID)
		assert.Equal(t, w.Header().Get("X-Request-ID"), resp.RequestID)
	})

	t.Run("UnknownErrorKeepsIncomingRequestID", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodGet, "/fields")
		c.Request.Header.Set("X-Request-ID", "req-42")
		HandleRequestError(c, errors.New("boom"))

		resp := AssertJSONErrorResponse(t, w, http.StatusInternalServerError, MsgInternalServerError)
		assert.Equal(t, "req-42", resp.RequestID)
	})

	t.Run("TaxonomyErrorsCarryNoRequestID", func(t *testing.T) {
		c, w := CreateTestGinContext(http.MethodGet, "/fields")
		HandleRequestError(c, StoreError(errors.New("disk full")))

		resp := AssertJSONErrorResponse(t, w, http.StatusBadRequest, MsgSupport)
		assert.Empty(t, resp.RequestID)
	})
}

func TestRequestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "store", err.Kind.String())
}

func TestParseFieldID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantMsg string
	}{
		{"1", 1, ""},
		{" 42 ", 42, ""},
		{"", 0, MsgFieldIDRequired},
		{"abc", 0, MsgInvalidFieldID},
		{"0", 0, MsgInvalidFieldID},
		{"-3", 0, MsgInvalidFieldID},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, err := ParseFieldID(tt.raw)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, id)
				return
			}
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, KindValidation, reqErr.Kind)
			assert.Equal(t, tt.wantMsg, reqErr.Message)
		})
	}
}

func TestReadBody(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		c, _ := CreateTestGinContextWithBody(http.MethodPost, "/fields", "application/json", []byte("  "))
		_, err := readBody(c, 1024)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	})

	t.Run("TooLarge", func(t *testing.T) {
		body := []byte(`{"name":"` + strings.Repeat("x", 100) + `"}`)
		c, _ := CreateTestGinContextWithBody(http.MethodPost, "/fields", "application/json", body)
		_, err := readBody(c, 16)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, reqErr.Status)
	})

	t.Run("WithinLimit", func(t *testing.T) {
		c, _ := CreateTestGinContextWithBody(http.MethodPost, "/fields", "application/json", []byte(`{"a":1}`))
		body, err := readBody(c, 1024)

		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(body))
	})
}
