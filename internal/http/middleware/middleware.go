package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
)

// Authorizer is the authorization check run before protected routes.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
	RequireAdmin(ctx context.Context, token string) (auth.Principal, error)
}

type Middleware struct {
	authorizer Authorizer
}

// New initializes the middleware with the given authorizer.
// We don't need ctx here because it always has Gin context.
func New(authorizer Authorizer) *Middleware {
	return &Middleware{
		authorizer: authorizer,
	}
}

// Authenticate rejects requests without a valid bearer token and stores the
// principal in the request context.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return m.authorize(m.authorizer.Authenticate)
}

// RequireAdmin rejects requests whose principal is not an admin.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return m.authorize(m.authorizer.RequireAdmin)
}

func (m *Middleware) authorize(check func(ctx context.Context, token string) (auth.Principal, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.Request)
		if err != nil {
			response.Error(c, err)
			return
		}

		principal, err := check(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// CORS allows browser calls from origins. A "*" entry allows every origin.
func CORS(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       24 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			conf.AllowAllOrigins = true
		}
	}
	if !conf.AllowAllOrigins {
		conf.AllowOrigins = origins
	}
	return cors.New(conf)
}

// Logger logs one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if p, ok := auth.PrincipalFromContext(c.Request.Context()); ok {
			attrs = append(attrs, slog.String("user_id", p.UserID.String()))
		}
		slog.Debug("HTTP request", attrs...)
	}
}

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error
// instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
					Error: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}
