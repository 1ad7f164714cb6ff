// Package api exposes the rewriter over HTTP as a small JSON service.
package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/stdtext/pkg/stdtext"
)

// Polisher is the optional language-model cleanup pass applied after the
// rule-based rewrite. It never fails: on any problem it must return the
// draft unchanged.
type Polisher interface {
	Polish(ctx context.Context, original, draft string) string
}

// Server routes HTTP requests onto a shared Rewriter. The polisher may be
// nil, in which case rewrite responses carry no polished line.
type Server struct {
	rewriter *stdtext.Rewriter
	polisher Polisher
}

// New creates a Server over the given rewriter.
func New(rewriter *stdtext.Rewriter, polisher Polisher) *Server {
	return &Server{rewriter: rewriter, polisher: polisher}
}

// Handler builds the gin engine with middleware and all routes attached.
func (s *Server) Handler() http.Handler {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLog())
	router.Use(gin.Recovery())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/rewrite", s.rewrite)
		v1.POST("/rewrite/debug", s.rewriteDebug)
		v1.POST("/spelling", s.spelling)
		v1.GET("/examples", s.examples)
		v1.GET("/model", s.model)
		v1.POST("/model/rebuild", s.rebuildModel)
		v1.GET("/dictionary/words", s.listWords)
		v1.POST("/dictionary/words", s.addWords)
		v1.DELETE("/dictionary/words", s.removeWords)
	}

	return router
}

func sendError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":      true,
		"message":    message,
		"request_id": requestID(c),
	})
}
