package services

import (
	"fmt"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/cache"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
)

// LocationService remembers where online users last said they were.
// Positions live only in memory and expire after the configured TTL.
type LocationService interface {
	// Update validates p and records it as userID's position.
	Update(userID string, p geo.Point) error
	Get(userID string) (geo.Point, bool)
	// UsersNear returns users whose last position is within radius meters
	// of center, nearest first.
	UsersNear(center geo.Point, radius float64, excludeUserID string) []cache.Neighbor
	Forget(userID string)
	Close()
}

type locationService struct {
	positions *cache.Positions
}

func NewLocationService(ttl time.Duration) LocationService {
	return &locationService{
		positions: cache.NewPositions(ttl, time.Minute),
	}
}

func (s *locationService) Update(userID string, p geo.Point) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	s.positions.Report(userID, p)
	return nil
}

func (s *locationService) Get(userID string) (geo.Point, bool) {
	pos, ok := s.positions.Get(userID)
	return pos.Point, ok
}

func (s *locationService) UsersNear(center geo.Point, radius float64, excludeUserID string) []cache.Neighbor {
	return s.positions.Within(center, radius, excludeUserID)
}

func (s *locationService) Forget(userID string) {
	s.positions.Forget(userID)
}

func (s *locationService) Close() {
	s.positions.Close()
}
