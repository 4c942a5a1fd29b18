// Package cache keeps the last position each online user reported. Entries
// expire after a fixed TTL; a background sweep removes them until Close.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
)

// Position is a user's last reported point and when it was reported.
type Position struct {
	Point      geo.Point
	ReportedAt time.Time
}

// Neighbor is a user found by Within.
type Neighbor struct {
	UserID         string
	Point          geo.Point
	DistanceMeters float64
}

// Positions is safe for concurrent use.
type Positions struct {
	mu     sync.RWMutex
	byUser map[string]Position
	ttl    time.Duration
	now    func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewPositions starts the sweep goroutine; call Close when done.
func NewPositions(ttl, sweepEvery time.Duration) *Positions {
	c := &Positions{
		byUser: make(map[string]Position),
		ttl:    ttl,
		now:    time.Now,
		done:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.done:
				return
			}
		}
	}()

	return c
}

// Report stores p as userID's position and restarts its TTL.
func (c *Positions) Report(userID string, p geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byUser[userID] = Position{Point: p, ReportedAt: c.now()}
}

// Get returns userID's position unless it is missing or expired.
func (c *Positions) Get(userID string) (Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.byUser[userID]
	if !ok || c.expired(pos, c.now()) {
		return Position{}, false
	}
	return pos, true
}

// Forget drops userID's position.
func (c *Positions) Forget(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.byUser, userID)
}

// Within returns users whose live position is at most radius meters from
// center, nearest first. excludeUserID is skipped.
func (c *Positions) Within(center geo.Point, radius float64, excludeUserID string) []Neighbor {
	box := geo.BoundingBox(center, radius)

	c.mu.RLock()
	now := c.now()
	var out []Neighbor
	for userID, pos := range c.byUser {
		if userID == excludeUserID || c.expired(pos, now) || !box.Contains(pos.Point) {
			continue
		}
		if d := geo.Distance(center, pos.Point); d <= radius {
			out = append(out, Neighbor{UserID: userID, Point: pos.Point, DistanceMeters: d})
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out
}

// Len counts stored positions, including expired ones not yet swept.
func (c *Positions) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.byUser)
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (c *Positions) Close() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Positions) expired(pos Position, now time.Time) bool {
	return now.Sub(pos.ReportedAt) > c.ttl
}

func (c *Positions) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for userID, pos := range c.byUser {
		if c.expired(pos, now) {
			delete(c.byUser, userID)
		}
	}
}
