package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// CleanupWorker periodically deletes expired refresh sessions and password
// reset tokens. Expired rows are already unusable; this only keeps the
// tables small.
type CleanupWorker interface {
	Start()
	Stop()
}

type cleanupWorker struct {
	authService  AuthService
	resetService PasswordResetService
	interval     time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewCleanupWorker(authService AuthService, resetService PasswordResetService, interval time.Duration) CleanupWorker {
	return &cleanupWorker{
		authService:  authService,
		resetService: resetService,
		interval:     interval,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval.
func (c *cleanupWorker) Start() {
	log.Printf("[cleanup] starting (interval=%s)", c.interval)

	go func() {
		defer close(c.done)
		c.runOnce()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.runOnce()
			case <-c.stopCh:
				log.Println("[cleanup] stopped")
				return
			}
		}
	}()
}

// Stop waits for a pass in progress to finish.
func (c *cleanupWorker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.done
	})
}

func (c *cleanupWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := c.authService.CleanupExpiredSessions(ctx)
	if err != nil {
		log.Printf("[cleanup] session purge error: %v", err)
	}

	tokens, err := c.resetService.CleanupExpired(ctx)
	if err != nil {
		log.Printf("[cleanup] reset token purge error: %v", err)
	}

	if sessions > 0 || tokens > 0 {
		log.Printf("[cleanup] removed %d expired sessions, %d expired reset tokens", sessions, tokens)
	}
}
