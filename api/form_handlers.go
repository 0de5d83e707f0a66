package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SubmitForm validates and stores a submission
func (s *Server) SubmitForm(c *gin.Context) {
	body, err := readBody(c, s.config.MaxBodyBytes)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	payload, err := DecodePayload(body)
	if err != nil {
		HandleRequestError(c, ValidationError(MsgPayloadInvalid, map[string]string{
			"body": strings.TrimPrefix(err.Error(), ErrInvalidPayload.Error()+": "),
		}))
		return
	}

	saved, err := s.forms.Submit(c.Request.Context(), payload)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	out, err := saved.MarshalJSON()
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// GetForm returns the stored rows of one submission
func (s *Server) GetForm(c *gin.Context) {
	rows, err := s.forms.Get(c.Request.Context(), c.Param("form_id"))
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportForm returns one submission as an xlsx workbook
func (s *Server) ExportForm(c *gin.Context) {
	formID := c.Param("form_id")
	rows, err := s.forms.Get(c.Request.Context(), formID)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	buf, err := BuildSubmissionWorkbook(formID, rows)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "form-"+formID+".xlsx"))
	c.Data(http.StatusOK, XLSXContentType, buf.Bytes())
}
