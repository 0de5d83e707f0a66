package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/gin-gonic/gin"
)

// Client-facing messages
const (
	MsgMissingFields       = "Missing fields"
	MsgFieldErrors         = "Following fields have errors."
	MsgDuplicateField      = "Looks like there is a duplicate field."
	MsgSupport             = "Something went wrong, please contact support."
	MsgFieldIDRequired     = "Field Id required."
	MsgInvalidFieldID      = "Field Id must be a positive integer."
	MsgInternalServerError = "Internal server error"
)

// ErrorKind classifies a RequestError
type ErrorKind int

const (
	// KindValidation is a locally detected input problem
	KindValidation ErrorKind = iota
	// KindConflict is a uniqueness violation reported by the store
	KindConflict
	// KindStore is any other persistence failure; the cause is logged, not exposed
	KindStore
	// KindNotFound is a lookup of an id that does not exist
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// RequestError is the closed set of failures the services report to callers
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Errors carries per-attribute detail for field definition writes
	Errors map[string]string
	// Collection carries per-key detail for rejected submissions
	Collection map[string]string
	// Cause is logged by HandleRequestError and never rendered
	Cause error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ErrorResponse is the JSON body rendered for a RequestError
type ErrorResponse struct {
	Status     int               `json:"status"`
	Msg        string            `json:"msg"`
	Errors     map[string]string `json:"errors,omitempty"`
	Collection map[string]string `json:"collection,omitempty"`
	// RequestID is set on internal errors so a caller can quote it
	RequestID  string            `json:"request_id,omitempty"`
}

// ValidationError reports missing or malformed field definition attributes
func ValidationError(message string, errs map[string]string) *RequestError {
	return &RequestError{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: message,
		Errors:  errs,
	}
}

// SubmissionError reports the per-key failures of a rejected submission
func SubmissionError(collection map[string]string) *RequestError {
	return &RequestError{
		Kind:       KindValidation,
		Status:     http.StatusBadRequest,
		Message:    MsgFieldErrors,
		Collection: collection,
	}
}

// ConflictError reports a duplicate field name
func ConflictError(name string) *RequestError {
	return &RequestError{
		Kind:    KindConflict,
		Status:  http.StatusConflict,
		Message: MsgDuplicateField,
		Errors:  map[string]string{"name": fmt.Sprintf("Duplicate %q field.", name)},
	}
}

// StoreError hides a persistence failure behind the support message
func StoreError(cause error) *RequestError {
	return &RequestError{
		Kind:    KindStore,
		Status:  http.StatusBadRequest,
		Message: MsgSupport,
		Cause:   cause,
	}
}

// NotFoundError reports a lookup of an unknown id
func NotFoundError(message string) *RequestError {
	return &RequestError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// HandleRequestError renders err. A *RequestError anywhere in the chain is
// rendered with its status and detail; anything else is a 500 without detail.
func HandleRequestError(c *gin.Context, err error) {
	logger := slogging.GetContextLogger(c)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		logger.Error("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:    http.StatusInternalServerError,
			Msg:       MsgInternalServerError,
			RequestID: logger.RequestID(),
		})
		return
	}

	if reqErr.Cause != nil {
		logger.WithAttrs(
			slog.String("kind", reqErr.Kind.String()),
			slog.String("path", c.Request.URL.Path),
		).ErrorCtx("Request failed", slog.String("cause", reqErr.Cause.Error()))
	}

	c.JSON(reqErr.Status, ErrorResponse{
		Status:     reqErr.Status,
		Msg:        reqErr.Message,
		Errors:     reqErr.Errors,
		Collection: reqErr.Collection,
	})
}

// ParseFieldID parses a field id path parameter
func ParseFieldID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ValidationError(MsgFieldIDRequired, nil)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidationError(MsgInvalidFieldID, map[string]string{"id": fmt.Sprintf("%q is not a valid field id", raw)})
	}
	return id, nil
}

// readBody reads the request body, rejecting empty and oversized bodies
func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, ValidationError("Request body is empty", nil)
	}
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Kind:    KindValidation,
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, ValidationError("Failed to read request body", nil)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ValidationError("Request body is empty", nil)
	}
	return body, nil
}
