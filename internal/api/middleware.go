package api

import (
	"crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const requestIDHeader = "X-Request-ID"

// idSource mints ULID request IDs. MonotonicEntropy is not safe for
// concurrent use, hence the lock.
type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (s *idSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// RequestID carries a caller-supplied X-Request-ID through to the response,
// minting a ULID when the caller sent none.
func RequestID() gin.HandlerFunc {
	ids := newIDSource()
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ids.next()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestID reads the ID stored by the RequestID middleware.
func requestID(c *gin.Context) string {
	v, ok := c.Get("request_id")
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// RequestLog writes one line per request once the handler chain finished.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.Printf("%s %s %d %s id=%s",
			c.Request.Method, path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), requestID(c))
	}
}
