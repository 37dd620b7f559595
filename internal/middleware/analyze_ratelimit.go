package middleware

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/aura-backend/pkg/clientip"
)

// Analysis calls a paid model, so it gets its own budget.
// Signed-in users: 6 req/min, burst 3, per user. Anonymous: 2 req/min, burst 1, per IP.
var (
	analyzeAuthLimiters = newLimiterSet(rate.Limit(0.1), 3)
	analyzeAnonLimiters = newLimiterSet(rate.Limit(1.0/30), 1)
)

const sessionCheckTimeout = 2 * time.Second

// SessionValidator resolves a session token to its user id.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, bool, error)
}

// AnalyzeRateLimit limits analysis requests. Only a cookie whose token the
// session store accepts earns the signed-in budget, keyed on the user so a
// user cannot multiply it across addresses. Anything else is limited per IP.
func AnalyzeRateLimit(sessionCookie string, sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, key := analyzeAnonLimiters, "ip:"+clientip.RealClientIP(r)
			if userID, ok := sessionUser(r, sessionCookie, sessions); ok {
				set, key = analyzeAuthLimiters, "user:"+userID
			}
			if !set.allow(key) {
				tooManyRequests(w, "Too many analysis requests. Please wait a moment.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionUser(r *http.Request, cookie string, sessions SessionValidator) (string, bool) {
	if sessions == nil {
		return "", false
	}
	c, err := r.Cookie(cookie)
	if err != nil || c.Value == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(r.Context(), sessionCheckTimeout)
	defer cancel()
	userID, ok, err := sessions.Validate(ctx, c.Value)
	if err != nil || !ok {
		return "", false
	}
	return userID, true
}
