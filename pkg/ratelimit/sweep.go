package ratelimit

import (
	"sync"
	"time"
)

// sweeper calls fn every interval until stopped.
type sweeper struct {
	done chan struct{}
	once sync.Once
}

func startSweeper(interval time.Duration, fn func()) *sweeper {
	s := &sweeper{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-s.done:
				return
			}
		}
	}()
	return s
}

func (s *sweeper) stop() {
	s.once.Do(func() { close(s.done) })
}
