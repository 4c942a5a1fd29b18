package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/google/uuid"
)

// nearbyScanLimit caps the rows read from the bounding box before the exact
// distance filter.
const nearbyScanLimit = 2000

// WhisperService owns location-pinned whispers. Whispers by users in a
// block relationship with the viewer behave as if they did not exist.
type WhisperService interface {
	// Create stores the whisper and pushes it to nearby online users.
	Create(ctx context.Context, authorID string, req *models.CreateWhisperRequest) (*models.Whisper, error)
	Nearby(ctx context.Context, viewerID string, q models.NearbyQuery) ([]models.NearbyWhisper, error)
	// Get includes the viewer's own reaction, if any.
	Get(ctx context.Context, viewerID, whisperID string) (*models.WhisperDetail, error)
	ListMine(ctx context.Context, authorID string) ([]models.Whisper, error)
	Delete(ctx context.Context, authorID, whisperID string) error
	React(ctx context.Context, userID, whisperID string, kind models.ReactionKind) (*models.ReactionCounts, error)
	ClearReaction(ctx context.Context, userID, whisperID string) (*models.ReactionCounts, error)
}

// WhisperLimits are the geographic defaults from configuration.
type WhisperLimits struct {
	DefaultRadius float64
	MaxRadius     float64
	PushRadius    float64
}

type whisperService struct {
	db          *sql.DB
	whisperRepo repository.WhisperRepository
	userRepo    repository.UserRepository
	blockRepo   repository.BlockRepository
	locations   LocationService
	hub         ws.EventPublisher
	catalog     *i18n.Catalog
	limits      WhisperLimits
	now         func() time.Time
}

func NewWhisperService(
	db *sql.DB,
	whisperRepo repository.WhisperRepository,
	userRepo repository.UserRepository,
	blockRepo repository.BlockRepository,
	locations LocationService,
	hub ws.EventPublisher,
	catalog *i18n.Catalog,
	limits WhisperLimits,
) WhisperService {
	return &whisperService{
		db:          db,
		whisperRepo: whisperRepo,
		userRepo:    userRepo,
		blockRepo:   blockRepo,
		locations:   locations,
		hub:         hub,
		catalog:     catalog,
		limits:      limits,
		now:         time.Now,
	}
}

func (s *whisperService) Create(ctx context.Context, authorID string, req *models.CreateWhisperRequest) (*models.Whisper, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	w := &models.Whisper{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          req.Title,
		Text:           req.Text,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.whisperRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.pushNearby(ctx, w)
	return w, nil
}

// pushNearby tells online users close to the whisper about it. Failures are
// logged; the whisper is already stored.
func (s *whisperService) pushNearby(ctx context.Context, w *models.Whisper) {
	if s.locations == nil {
		return
	}

	for _, near := range s.locations.UsersNear(w.Point(), s.limits.PushRadius, w.AuthorID) {
		if !s.hub.IsOnline(near.UserID) {
			continue
		}
		blocked, err := s.blockRepo.IsBlockedEither(ctx, w.AuthorID, near.UserID)
		if err != nil {
			log.Printf("[whisper] block check for push failed: %v", err)
			continue
		}
		if blocked {
			continue
		}

		lang := i18n.DefaultLanguage
		if u, err := s.userRepo.GetByID(ctx, near.UserID); err == nil {
			lang = u.Language
		}

		s.hub.BroadcastToUser(near.UserID, ws.Event{
			Op: ws.OpWhisperNearby,
			Data: ws.WhisperNearbyData{
				Whisper:        *w,
				DistanceMeters: math.Round(near.DistanceMeters),
				Message: s.catalog.Localizer(lang).TWithParams("whisper.nearby", map[string]string{
					"title": w.Title,
				}),
			},
		})
	}
}

// Nearby prefilters with a bounding box in SQL and then keeps only whispers
// whose great-circle distance is within the radius, nearest first.
func (s *whisperService) Nearby(ctx context.Context, viewerID string, q models.NearbyQuery) ([]models.NearbyWhisper, error) {
	if err := q.Center.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	radius := q.Radius
	if radius <= 0 {
		radius = s.limits.DefaultRadius
	}
	radius = math.Min(radius, s.limits.MaxRadius)

	limit := q.Limit
	if limit <= 0 || limit > models.MaxNearbyResults {
		limit = models.MaxNearbyResults
	}

	box := geo.BoundingBox(q.Center, radius)
	candidates, err := s.whisperRepo.ListInBox(ctx, box, viewerID, nearbyScanLimit)
	if err != nil {
		return nil, err
	}

	out := make([]models.NearbyWhisper, 0, len(candidates))
	for _, w := range candidates {
		if !box.Contains(w.Point()) {
			continue
		}
		d := geo.Distance(q.Center, w.Point())
		if d > radius {
			continue
		}
		out = append(out, models.NearbyWhisper{Whisper: w, DistanceMeters: math.Round(d)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if len(out) > limit {
		out = out[:limit]
	}

	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	reactions, err := s.whisperRepo.GetReactions(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if kind, ok := reactions[out[i].ID]; ok {
			out[i].MyReaction = &kind
		}
	}
	return out, nil
}

func (s *whisperService) Get(ctx context.Context, viewerID, whisperID string) (*models.WhisperDetail, error) {
	w, err := visibleWhisper(ctx, s.whisperRepo, s.blockRepo, viewerID, whisperID)
	if err != nil {
		return nil, err
	}

	mine, err := s.whisperRepo.GetReaction(ctx, whisperID, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.WhisperDetail{Whisper: *w, MyReaction: mine}, nil
}

func (s *whisperService) ListMine(ctx context.Context, authorID string) ([]models.Whisper, error) {
	return s.whisperRepo.ListByAuthor(ctx, authorID)
}

// Delete removes one of the caller's own whispers.
func (s *whisperService) Delete(ctx context.Context, authorID, whisperID string) error {
	w, err := s.whisperRepo.GetByID(ctx, whisperID)
	if err != nil {
		return err
	}
	if w.AuthorID != authorID {
		return fmt.Errorf("%w: not your whisper", pkg.ErrForbidden)
	}
	if err := s.whisperRepo.Delete(ctx, whisperID, authorID); err != nil {
		return err
	}

	if s.locations != nil {
		ids := []string{authorID}
		for _, near := range s.locations.UsersNear(w.Point(), s.limits.PushRadius, authorID) {
			ids = append(ids, near.UserID)
		}
		s.hub.BroadcastToUsers(ids, ws.Event{
			Op:   ws.OpWhisperDelete,
			Data: ws.WhisperDeleteData{WhisperID: whisperID},
		})
	}
	return nil
}

// React sets the caller's reaction. Switching from like to dislike moves one
// count; repeating the same reaction changes nothing.
func (s *whisperService) React(ctx context.Context, userID, whisperID string, kind models.ReactionKind) (*models.ReactionCounts, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: invalid reaction", pkg.ErrBadRequest)
	}
	return s.updateReaction(ctx, userID, whisperID, func(repo repository.WhisperRepository) error {
		return repo.SetReaction(ctx, whisperID, userID, kind)
	})
}

func (s *whisperService) ClearReaction(ctx context.Context, userID, whisperID string) (*models.ReactionCounts, error) {
	return s.updateReaction(ctx, userID, whisperID, func(repo repository.WhisperRepository) error {
		return repo.ClearReaction(ctx, whisperID, userID)
	})
}

func (s *whisperService) updateReaction(
	ctx context.Context,
	userID, whisperID string,
	apply func(repo repository.WhisperRepository) error,
) (*models.ReactionCounts, error) {
	counts := &models.ReactionCounts{WhisperID: whisperID}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txWhisperRepo := repository.NewSQLiteWhisperRepo(tx)
		txBlockRepo := repository.NewSQLiteBlockRepo(tx)

		if _, err := visibleWhisper(ctx, txWhisperRepo, txBlockRepo, userID, whisperID); err != nil {
			return err
		}
		if err := apply(txWhisperRepo); err != nil {
			return err
		}

		var err error
		counts.Likes, counts.Dislikes, err = txWhisperRepo.GetCounts(ctx, whisperID)
		if err != nil {
			return err
		}
		counts.MyReaction, err = txWhisperRepo.GetReaction(ctx, whisperID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// visibleWhisper hides whispers across a block in either direction as if
// they did not exist.
func visibleWhisper(
	ctx context.Context,
	whisperRepo repository.WhisperRepository,
	blockRepo repository.BlockRepository,
	viewerID, whisperID string,
) (*models.Whisper, error) {
	w, err := whisperRepo.GetByID(ctx, whisperID)
	if err != nil {
		return nil, err
	}
	if w.AuthorID == viewerID {
		return w, nil
	}

	blocked, err := blockRepo.IsBlockedEither(ctx, viewerID, w.AuthorID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errWhisperNotFound
	}
	return w, nil
}

var errWhisperNotFound = fmt.Errorf("%w: whisper not found", pkg.ErrNotFound)

