package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServerConfig holds the transport settings of the API server
type ServerConfig struct {
	// MaxBodyBytes caps request bodies; zero disables the limit
	MaxBodyBytes int64
	// MetricsHandler serves /metrics when non-nil
	MetricsHandler http.Handler
}

// Server is the main API server instance
type Server struct {
	fields *FieldService
	forms  *FormService
	config ServerConfig
}

// NewServer creates a new API server instance
func NewServer(fields *FieldService, forms *FormService, config ServerConfig) *Server {
	return &Server{
		fields: fields,
		forms:  forms,
		config: config,
	}
}

// RegisterRoutes registers every API route with the router
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", s.Ping)

	r.GET("/fields", s.ListFields)
	r.POST("/fields", s.CreateField)
	r.DELETE("/fields", s.DeleteField)
	r.GET("/fields/:id", s.GetField)
	r.PUT("/fields/:id", s.UpdateField)
	r.PATCH("/fields/:id", s.PatchField)
	r.DELETE("/fields/:id", s.DeleteField)

	r.POST("/forms", s.SubmitForm)
	r.GET("/forms/:form_id", s.GetForm)
	r.GET("/forms/:form_id/export", s.ExportForm)

	if s.config.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(s.config.MetricsHandler))
	}
}

// Ping answers liveness checks
func (s *Server) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
