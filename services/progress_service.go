package services

import (
	"context"
	"strconv"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/reveal"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
)

// ProgressService builds what a participant may see of the other side.
type ProgressService interface {
	// GetProgress renders the peer's profile at the conversation's level.
	// lang selects the block titles; empty means the viewer's own setting.
	GetProgress(ctx context.Context, userID, conversationID, lang string) (*models.ProgressView, error)
}

type progressService struct {
	convRepo    repository.ConversationRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	catalog     *i18n.Catalog
}

func NewProgressService(
	convRepo repository.ConversationRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	catalog *i18n.Catalog,
) ProgressService {
	return &progressService{
		convRepo:    convRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		catalog:     catalog,
	}
}

func (s *progressService) GetProgress(ctx context.Context, userID, conversationID, lang string) (*models.ProgressView, error) {
	conv, err := loadConversationFor(ctx, s.convRepo, userID, conversationID)
	if err != nil {
		return nil, err
	}
	peerID := conv.PeerOf(userID)

	counters, err := s.convRepo.GetCounters(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	myCount := counters.Count(userID)
	peerCount := counters.Count(peerID)

	// The stored level is authoritative since it never goes down; the
	// evaluated one covers a row written before the counters caught up.
	level := max(conv.UnlockLevel, reveal.Evaluate(myCount, peerCount))

	profile, err := s.profileRepo.GetByUserID(ctx, peerID)
	if err != nil {
		return nil, err
	}

	if lang == "" {
		if viewer, err := s.userRepo.GetByID(ctx, userID); err == nil {
			lang = viewer.Language
		}
	}
	labels := localizedLabels(s.catalog.Localizer(lang))

	effective := reveal.EffectiveCount(myCount, peerCount)
	view := &models.ProgressView{
		ConversationID: conv.ID,
		Level:          level,
		MaxLevel:       reveal.MaxLevel,
		MyCount:        myCount,
		PeerCount:      peerCount,
		EffectiveCount: effective,
		Peer: models.PeerCard{
			UserID:      peerID,
			DisplayName: profile.DisplayName,
			Avatar:      profile.Avatar,
		},
		Blocks: reveal.Render(level, reveal.ProfileBlocks(profile.RevealFields(), labels)),
	}
	if next, ok := reveal.ThresholdFor(level + 1); ok {
		view.NextThreshold = &next
	}
	return view, nil
}

func localizedLabels(loc *i18n.Localizer) reveal.Labels {
	labels := reveal.Labels{
		FavoriteSong: loc.T("reveal.favoriteSong"),
		City:         loc.T("reveal.city"),
		MysteryFact:  loc.T("reveal.mysteryFact"),
	}
	for i := range labels.Titles {
		labels.Titles[i] = loc.T("reveal.title." + strconv.Itoa(i+1))
	}
	return labels
}
