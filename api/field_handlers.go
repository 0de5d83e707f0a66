package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MergePatchContentType is the media type accepted by PatchField
const MergePatchContentType = "application/merge-patch+json"

// ListFields returns every field definition
func (s *Server) ListFields(c *gin.Context) {
	fields, err := s.fields.List(c.Request.Context())
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// GetField returns one field definition
func (s *Server) GetField(c *gin.Context) {
	field, err := s.fields.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

// CreateField stores a new field definition
func (s *Server) CreateField(c *gin.Context) {
	body, err := readBody(c, s.config.MaxBodyBytes)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	field, err := s.fields.Create(c.Request.Context(), body)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

// UpdateField replaces a field definition
func (s *Server) UpdateField(c *gin.Context) {
	body, err := readBody(c, s.config.MaxBodyBytes)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	field, err := s.fields.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

// PatchField applies a JSON merge patch to a field definition
func (s *Server) PatchField(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, MergePatchContentType) && !strings.HasPrefix(contentType, "application/json") {
		HandleRequestError(c, &RequestError{
			Kind:    KindValidation,
			Status:  http.StatusUnsupportedMediaType,
			Message: "Content-Type must be " + MergePatchContentType,
		})
		return
	}

	body, err := readBody(c, s.config.MaxBodyBytes)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	field, err := s.fields.Patch(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, field)
}

// DeleteField removes a field definition. It is also routed without an id
// so that the missing id is reported.
func (s *Server) DeleteField(c *gin.Context) {
	result, err := s.fields.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
