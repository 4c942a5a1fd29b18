package ratelimit

import (
	"sync"
	"time"
)

// senderState is either counting inside a window or serving a cooldown.
type senderState struct {
	sent          int
	windowStart   time.Time
	cooldownUntil time.Time
}

func (s *senderState) restart(now time.Time) {
	*s = senderState{sent: 1, windowStart: now}
}

// MessageRateLimiter throttles chat messages per sender. Going over
// maxMessages within window starts a cooldown during which every message
// from that sender is rejected.
//
// Message volume drives profile reveal, so this is also what keeps one side
// from flooding a conversation to push its own counter.
type MessageRateLimiter struct {
	mu          sync.Mutex
	senders     map[string]*senderState
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	now         func() time.Time
	sweeper     *sweeper
}

// NewMessageRateLimiter e.g. NewMessageRateLimiter(5, 5*time.Second, 15*time.Second).
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		senders:     make(map[string]*senderState),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
	}
	rl.sweeper = startSweeper(30*time.Second, rl.sweep)
	return rl
}

// Allow records a message from senderID and reports whether it may be sent.
func (rl *MessageRateLimiter) Allow(senderID string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, exists := rl.senders[senderID]
	switch {
	case !exists:
		rl.senders[senderID] = &senderState{sent: 1, windowStart: now}
		return true
	case !s.cooldownUntil.IsZero():
		if now.Before(s.cooldownUntil) {
			return false
		}
		s.restart(now)
		return true
	case now.Sub(s.windowStart) > rl.window:
		s.restart(now)
		return true
	}

	s.sent++
	if s.sent > rl.maxMessages {
		s.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds is the remaining cooldown for senderID, or 0.
func (rl *MessageRateLimiter) CooldownSeconds(senderID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	s, exists := rl.senders[senderID]
	if !exists || s.cooldownUntil.IsZero() {
		return 0
	}
	return ceilSeconds(s.cooldownUntil.Sub(rl.now()))
}

// Stop ends the sweep goroutine.
func (rl *MessageRateLimiter) Stop() {
	rl.sweeper.stop()
}

// sweep keeps senders that are still in cooldown.
func (rl *MessageRateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for id, s := range rl.senders {
		if now.Sub(s.windowStart) > rl.window && !now.Before(s.cooldownUntil) {
			delete(rl.senders, id)
		}
	}
}
