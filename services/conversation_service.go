package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/ratelimit"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/reveal"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/google/uuid"
)

// ConversationService owns one-to-one chats and their message counters.
type ConversationService interface {
	// Start is idempotent per pair and symmetric in its two users.
	Start(ctx context.Context, userID, peerID string) (*models.Conversation, error)
	StartFromWhisper(ctx context.Context, userID, whisperID string) (*models.Conversation, error)
	List(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
	// Messages pages backwards from beforeID (exclusive), newest first.
	Messages(ctx context.Context, userID, conversationID, beforeID string, limit int) ([]models.ConversationMessage, error)
	// Send stores the message and bumps the sender's counter atomically,
	// then re-evaluates the unlock level.
	Send(ctx context.Context, userID, conversationID string, req *models.SendMessageRequest) (*models.SendResult, error)
	NotifyTyping(ctx context.Context, userID, conversationID string)
	// PeerIDs lists everyone the user has a conversation with.
	PeerIDs(ctx context.Context, userID string) ([]string, error)
}

type conversationService struct {
	db          *sql.DB
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	whisperRepo repository.WhisperRepository
	blockRepo   repository.BlockRepository
	hub         ws.EventPublisher
	limiter     *ratelimit.MessageRateLimiter
	catalog     *i18n.Catalog
	now         func() time.Time
}

// NewConversationService accepts a nil limiter, which disables rate limiting.
func NewConversationService(
	db *sql.DB,
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	whisperRepo repository.WhisperRepository,
	blockRepo repository.BlockRepository,
	hub ws.EventPublisher,
	limiter *ratelimit.MessageRateLimiter,
	catalog *i18n.Catalog,
) ConversationService {
	return &conversationService{
		db:          db,
		convRepo:    convRepo,
		userRepo:    userRepo,
		whisperRepo: whisperRepo,
		blockRepo:   blockRepo,
		hub:         hub,
		limiter:     limiter,
		catalog:     catalog,
		now:         time.Now,
	}
}

// Start returns the existing conversation with peerID or creates it.
func (s *conversationService) Start(ctx context.Context, userID, peerID string) (*models.Conversation, error) {
	return s.getOrCreate(ctx, userID, peerID, nil)
}

// StartFromWhisper opens a chat with a whisper's author.
func (s *conversationService) StartFromWhisper(ctx context.Context, userID, whisperID string) (*models.Conversation, error) {
	w, err := visibleWhisper(ctx, s.whisperRepo, s.blockRepo, userID, whisperID)
	if err != nil {
		return nil, err
	}
	if w.AuthorID == userID {
		return nil, fmt.Errorf("%w: cannot start a chat on your own whisper", pkg.ErrBadRequest)
	}
	return s.getOrCreate(ctx, userID, w.AuthorID, &w.ID)
}

func (s *conversationService) getOrCreate(ctx context.Context, userID, peerID string, whisperID *string) (*models.Conversation, error) {
	if peerID == "" || peerID == userID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", pkg.ErrBadRequest)
	}
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", pkg.ErrNotFound)
		}
		return nil, err
	}
	if err := s.ensureNotBlocked(ctx, userID, peerID); err != nil {
		return nil, err
	}

	existing, err := s.convRepo.GetByPair(ctx, userID, peerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}

	u1, u2 := models.OrderedPair(userID, peerID)
	conv := &models.Conversation{User1ID: u1, User2ID: u2, WhisperID: whisperID, UnlockLevel: reveal.MinLevel}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		// Both users may start the chat at the same moment.
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return s.convRepo.GetByPair(ctx, userID, peerID)
		}
		return nil, err
	}

	log.Printf("[conversation] created %s between %s and %s", conv.ID, u1, u2)
	s.hub.BroadcastToUsers([]string{u1, u2}, ws.Event{Op: ws.OpConversationCreate, Data: conv})
	return conv, nil
}

func (s *conversationService) List(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	return s.convRepo.ListByUser(ctx, userID)
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return loadConversationFor(ctx, s.convRepo, userID, conversationID)
}

func (s *conversationService) Messages(ctx context.Context, userID, conversationID, beforeID string, limit int) ([]models.ConversationMessage, error) {
	if _, err := loadConversationFor(ctx, s.convRepo, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = models.DefaultMessageLimit
	}
	limit = min(limit, models.MaxMessageLimit)
	return s.convRepo.ListMessages(ctx, conversationID, beforeID, limit)
}

// Send stores the message, bumps the sender's counter and re-evaluates the
// unlock level, all in one transaction. Both participants then get
// message_create, and progress_update when the level went up.
func (s *conversationService) Send(ctx context.Context, userID, conversationID string, req *models.SendMessageRequest) (*models.SendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if s.limiter != nil && !s.limiter.Allow(userID) {
		return nil, fmt.Errorf("%w: slow down, try again in %d seconds",
			pkg.ErrTooManyRequests, s.limiter.CooldownSeconds(userID))
	}

	conv, err := loadConversationFor(ctx, s.convRepo, userID, conversationID)
	if err != nil {
		return nil, err
	}
	peerID := conv.PeerOf(userID)
	if err := s.ensureNotBlocked(ctx, userID, peerID); err != nil {
		return nil, err
	}

	msg := &models.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       userID,
		Content:        req.Content,
		CreatedAt:      s.now().UTC(),
	}
	result := &models.SendResult{Message: msg}
	var previous int

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txConvRepo := repository.NewSQLiteConversationRepo(tx)

		current, err := txConvRepo.GetByID(ctx, conv.ID)
		if err != nil {
			return err
		}
		previous = current.UnlockLevel

		if err := txConvRepo.CreateMessage(ctx, msg); err != nil {
			return err
		}

		counters, err := txConvRepo.IncrementCounter(ctx, conv.ID, userID, peerID)
		if err != nil {
			return err
		}
		result.Counters = counters

		level := reveal.EvaluateCounts(counters.Counts, conv.User1ID, conv.User2ID)
		result.UnlockLevel, err = txConvRepo.RaiseUnlockLevel(ctx, conv.ID, level)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.LevelChanged = result.UnlockLevel > previous

	participants := []string{conv.User1ID, conv.User2ID}
	s.hub.BroadcastToUsers(participants, ws.Event{Op: ws.OpMessageCreate, Data: msg})

	if result.LevelChanged {
		log.Printf("[conversation] %s reached level %d", conv.ID, result.UnlockLevel)
		for _, uid := range participants {
			s.hub.BroadcastToUser(uid, ws.Event{
				Op: ws.OpProgressUpdate,
				Data: ws.ProgressUpdateData{
					ConversationID: conv.ID,
					Level:          result.UnlockLevel,
					PreviousLevel:  previous,
					Message:        s.levelUpMessage(ctx, uid, result.UnlockLevel),
				},
			})
		}
	}

	return result, nil
}

func (s *conversationService) levelUpMessage(ctx context.Context, userID string, level int) string {
	lang := i18n.DefaultLanguage
	if u, err := s.userRepo.GetByID(ctx, userID); err == nil {
		lang = u.Language
	}
	loc := s.catalog.Localizer(lang)
	if level >= reveal.MaxLevel {
		return loc.T("progress.maxLevel")
	}
	return loc.TWithParams("progress.levelUp", map[string]string{"level": strconv.Itoa(level)})
}

// NotifyTyping relays a typing indicator to the other participant. Invalid
// requests are dropped silently; typing is best-effort.
func (s *conversationService) NotifyTyping(ctx context.Context, userID, conversationID string) {
	conv, err := loadConversationFor(ctx, s.convRepo, userID, conversationID)
	if err != nil {
		return
	}
	peerID := conv.PeerOf(userID)
	if blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, peerID); err != nil || blocked {
		return
	}
	s.hub.BroadcastToUser(peerID, ws.Event{
		Op:   ws.OpTypingStart,
		Data: ws.TypingStartData{ConversationID: conv.ID, UserID: userID},
	})
}

func (s *conversationService) PeerIDs(ctx context.Context, userID string) ([]string, error) {
	summaries, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(summaries))
	for _, c := range summaries {
		ids = append(ids, c.PeerOf(userID))
	}
	return ids, nil
}

func (s *conversationService) ensureNotBlocked(ctx context.Context, userID, peerID string) error {
	blocked, err := s.blockRepo.IsBlockedEither(ctx, userID, peerID)
	if err != nil {
		return err
	}
	if blocked {
		return fmt.Errorf("%w: this user is not available", pkg.ErrForbidden)
	}
	return nil
}

// loadConversationFor hides conversations the user is not part of.
func loadConversationFor(ctx context.Context, convRepo repository.ConversationRepository, userID, conversationID string) (*models.Conversation, error) {
	conv, err := convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: conversation", pkg.ErrNotFound)
	}
	return conv, nil
}
