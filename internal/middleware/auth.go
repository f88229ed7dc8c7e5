package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/schoolbus-tracker/internal/auth"
	"github.com/ukydev/schoolbus-tracker/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	SessionContextKey contextKey = "session"

	// SessionCookie carries the session token set at login.
	SessionCookie = "schoolbus_session"
)

// SessionMiddleware reads the session token, if any, into the request context
type SessionMiddleware struct {
	authService *auth.Service
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(authService *auth.Service) *SessionMiddleware {
	return &SessionMiddleware{
		authService: authService,
	}
}

// Attach adds the session claims to the context when a valid token comes
// with the request. It never rejects: dashboards are open to everyone and the
// session only decides what name is shown.
func (m *SessionMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest prefers a well-formed Authorization header over the cookie.
func (m *SessionMiddleware) tokenFromRequest(r *http.Request) string {
	if token, err := m.authService.ExtractTokenFromHeader(r.Header.Get("Authorization")); err == nil {
		return token
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*models.Claims)
	return claims, ok
}

// Throttle limits how often a client IP may hit a handler within a window.
type Throttle struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewThrottle creates a throttle allowing maxRequests per window per IP
func NewThrottle(maxRequests int, window time.Duration) *Throttle {
	return &Throttle{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		hits:        make(map[string][]time.Time),
	}
}

// Allow records a hit for ip and reports whether it is within the limit.
func (t *Throttle) Allow(ip string) bool {
	now := t.now()
	cutoff := now.Add(-t.window)

	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.hits[ip][:0]
	for _, ts := range t.hits[ip] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= t.maxRequests {
		t.hits[ip] = recent
		return false
	}
	t.hits[ip] = append(recent, now)
	return true
}

// Limit wraps a handler with the throttle
func (t *Throttle) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Allow(getClientIP(r)) {
			http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
