// Package ratelimit holds the in-memory throttles for the auth endpoints and
// for chat messages. It depends on nothing inside the module.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Scope names an anonymous auth endpoint. Each scope counts separately, so
// asking for reset links does not use up an IP's login attempts.
type Scope string

const (
	ScopeLogin          Scope = "login"
	ScopeForgotPassword Scope = "forgot_password"
)

type attemptKey struct {
	scope Scope
	ip    string
}

type attempts struct {
	count int
	since time.Time
}

// AuthLimiter counts attempts per (scope, client IP) in a fixed window.
// A scope without a configured maximum is not limited.
type AuthLimiter struct {
	mu      sync.Mutex
	counts  map[attemptKey]*attempts
	limits  map[Scope]int
	window  time.Duration
	now     func() time.Time
	sweeper *sweeper
}

// NewAuthLimiter e.g. NewAuthLimiter(15*time.Minute, map[Scope]int{ScopeLogin: 5}).
func NewAuthLimiter(window time.Duration, limits map[Scope]int) *AuthLimiter {
	l := &AuthLimiter{
		counts: make(map[attemptKey]*attempts),
		limits: limits,
		window: window,
		now:    time.Now,
	}
	l.sweeper = startSweeper(time.Minute, l.sweep)
	return l
}

// Allow records one attempt from ip against scope and reports whether it is
// within the limit.
func (l *AuthLimiter) Allow(scope Scope, ip string) bool {
	limit, ok := l.limits[scope]
	if !ok {
		return true
	}
	now := l.now()
	key := attemptKey{scope: scope, ip: ip}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, exists := l.counts[key]
	if !exists || now.Sub(a.since) > l.window {
		l.counts[key] = &attempts{count: 1, since: now}
		return true
	}
	a.count++
	return a.count <= limit
}

// Reset forgets ip's attempts in scope, e.g. after a successful login.
func (l *AuthLimiter) Reset(scope Scope, ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, attemptKey{scope: scope, ip: ip})
}

// RetryAfterSeconds is the value for the Retry-After header, or 0.
func (l *AuthLimiter) RetryAfterSeconds(scope Scope, ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, exists := l.counts[attemptKey{scope: scope, ip: ip}]
	if !exists {
		return 0
	}
	return ceilSeconds(l.window - l.now().Sub(a.since))
}

// Stop ends the sweep goroutine.
func (l *AuthLimiter) Stop() {
	l.sweeper.stop()
}

func (l *AuthLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, a := range l.counts {
		if now.Sub(a.since) > l.window {
			delete(l.counts, key)
		}
	}
}

// ceilSeconds rounds a remaining wait up to whole seconds; 0 when elapsed.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds()) + 1
}

// ExtractIP returns the client address, preferring proxy headers:
// the first X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage renders a wait time for an error message.
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
