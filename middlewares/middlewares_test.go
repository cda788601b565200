package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eqcoach/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, UserEmail(c))
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetJWTSecret("middleware-secret", time.Hour)
	token, err := utils.GenerateJWTToken("u1", "ada@example.com")
	require.NoError(t, err)

	r := newRouter(AuthMiddleware(zap.NewNop()))

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{name: "bearer header", target: "/me", header: "Bearer " + token, status: http.StatusOK, body: "ada@example.com"},
		{name: "query token", target: "/me?token=" + token, status: http.StatusOK, body: "ada@example.com"},
		{name: "missing", target: "/me", status: http.StatusUnauthorized},
		{name: "bad format", target: "/me", header: "Token " + token, status: http.StatusBadRequest},
		{name: "garbage", target: "/me", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

type fakeLimiter struct {
	allow bool
	err   error
	seen  []string
}

func (f *fakeLimiter) Allow(_ context.Context, subject string) (bool, error) {
	f.seen = append(f.seen, subject)
	return f.allow, f.err
}

func TestRateLimit(t *testing.T) {
	setEmail := func(c *gin.Context) { c.Set(UserEmailKey, "ada@example.com") }

	tests := []struct {
		name    string
		limiter *fakeLimiter
		status  int
	}{
		{name: "within budget", limiter: &fakeLimiter{allow: true}, status: http.StatusOK},
		{name: "over budget", limiter: &fakeLimiter{allow: false}, status: http.StatusTooManyRequests},
		{name: "limiter down", limiter: &fakeLimiter{err: errors.New("redis down")}, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(setEmail, RateLimit(tt.limiter, zap.NewNop()))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, []string{"ada@example.com"}, tt.limiter.seen)
		})
	}
}
