package activity

import (
	"log/slog"
	"strings"
	"time"

	"shophub/internal/auth"
	"shophub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DefaultDocsPrefix is the path prefix of the API documentation; it is never logged.
const DefaultDocsPrefix = "/api-docs"

// Identifier resolves a bearer token to a user id. *auth.Manager satisfies it.
type Identifier interface {
	Identify(token string, now time.Time) (string, error)
}

// Sink accepts finished records without blocking. *Recorder satisfies it.
type Sink interface {
	Enqueue(r Record) bool
}

// MiddlewareConfig wires the activity middleware; zero fields take package defaults.
type MiddlewareConfig struct {
	Identifier Identifier
	Sink       Sink

	DocsPrefix     string
	TrustForwarded bool
	// SensitiveKeys are body field names never recorded, in addition to "password".
	SensitiveKeys []string
	MaxBodyBytes  int64

	Clock func() time.Time
}

// Middleware records one activity entry per finished request.
//
// It never aborts, never writes headers and never changes the request body as
// seen by handlers. Install it before gin.Recovery so panicking handlers are
// recorded with the status Recovery writes.
func Middleware(cfg MiddlewareConfig) gin.HandlerFunc {
	if cfg.DocsPrefix == "" {
		cfg.DocsPrefix = DefaultDocsPrefix
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	filter := newKeyFilter(cfg.SensitiveKeys)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, cfg.DocsPrefix) {
			c.Next()
			recordsTotal.WithLabelValues(resultSkipped).Inc()
			return
		}

		start := cfg.Clock()
		actor := resolveActor(cfg.Identifier, c.GetHeader("Authorization"), start)
		bodyKeys := captureBodyKeys(c.Request, cfg.MaxBodyBytes, filter)

		c.Next()

		emit(c, cfg, Record{
			ActorID:       actor,
			Action:        c.Request.Method + " " + path,
			Method:        c.Request.Method,
			Path:          path,
			SourceAddress: ClientAddress(c.Request, c.RemoteIP(), cfg.TrustForwarded),
			UserAgent:     c.Request.UserAgent(),
			StatusCode:    c.Writer.Status(),
			Metadata: Metadata{
				DurationMs: cfg.Clock().Sub(start).Milliseconds(),
				Query:      queryMap(c.Request.URL.Query()),
				BodyKeys:   bodyKeys,
				RequestID:  c.GetString(logger.ContextRequestID),
				Errors:     ginErrors(c),
			},
		})
	}
}

// resolveActor is best-effort: any failure, including a panicking identifier, yields "".
func resolveActor(id Identifier, header string, now time.Time) (actor string) {
	if id == nil {
		return ""
	}
	tok, err := auth.BearerToken(header)
	if err != nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			actor = ""
		}
	}()
	uid, err := id.Identify(tok, now)
	if err != nil {
		return ""
	}
	return uid
}

func emit(c *gin.Context, cfg MiddlewareConfig, rec Record) {
	if cfg.Sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			recordsTotal.WithLabelValues(resultFailed).Inc()
			slog.Debug("activity sink panic", "path", rec.Path, "panic", p)
		}
	}()
	cfg.Sink.Enqueue(rec)
}

func ginErrors(c *gin.Context) []string {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors.Errors()
}
