package main

import (
	"database/sql"
	"log"

	"github.com/Yash-SD99/Echoing-Hearts/config"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/email"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/ratelimit"
	"github.com/Yash-SD99/Echoing-Hearts/services"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
)

type Services struct {
	Auth          services.AuthService
	PasswordReset services.PasswordResetService
	Profile       services.ProfileService
	Location      services.LocationService
	Block         services.BlockService
	Whisper       services.WhisperService
	Conversation  services.ConversationService
	Progress      services.ProgressService
}

type RateLimiters struct {
	Auth    *ratelimit.AuthLimiter
	Message *ratelimit.MessageRateLimiter
}

// Stop releases the limiters' background sweepers.
func (l *RateLimiters) Stop() {
	l.Auth.Stop()
	l.Message.Stop()
}

// initServices builds every service plus the background cleanup worker.
// The worker is returned unstarted.
func initServices(
	db *sql.DB,
	repos *Repositories,
	hub ws.EventPublisher,
	catalog *i18n.Catalog,
	cfg *config.Config,
) (*Services, *RateLimiters, services.CleanupWorker) {
	limiters := &RateLimiters{
		Auth: ratelimit.NewAuthLimiter(cfg.Limits.LoginWindow, map[ratelimit.Scope]int{
			ratelimit.ScopeLogin:          cfg.Limits.LoginAttempts,
			ratelimit.ScopeForgotPassword: cfg.Limits.ForgotAttempts,
		}),
		Message: ratelimit.NewMessageRateLimiter(
			cfg.Limits.MessageBurst,
			cfg.Limits.MessageWindow,
			cfg.Limits.MessageCooldown,
		),
	}

	var sender email.Sender
	if cfg.Email.Enabled() {
		sender = email.NewResendSender(
			cfg.Email.ResendAPIKey,
			cfg.Email.FromAddress,
			cfg.Email.AppURL,
			int(cfg.Email.ResetTokenTTL.Minutes()),
		)
	} else {
		log.Println("[main] RESEND_API_KEY not set, password reset is disabled")
	}

	authService := services.NewAuthService(
		db,
		repos.User,
		repos.Profile,
		repos.Session,
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	resetService := services.NewPasswordResetService(db, repos.User, repos.ResetToken, sender, cfg.Email.ResetTokenTTL)
	locationService := services.NewLocationService(cfg.Limits.LocationTTL)

	svcs := &Services{
		Auth:          authService,
		PasswordReset: resetService,
		Profile:       services.NewProfileService(repos.Profile),
		Location:      locationService,
		Block:         services.NewBlockService(repos.Block, repos.User),
		Whisper: services.NewWhisperService(
			db,
			repos.Whisper,
			repos.User,
			repos.Block,
			locationService,
			hub,
			catalog,
			services.WhisperLimits{
				DefaultRadius: cfg.Limits.NearbyRadius,
				MaxRadius:     cfg.Limits.MaxNearbyRadius,
				PushRadius:    cfg.Limits.PushRadius,
			},
		),
		Conversation: services.NewConversationService(
			db,
			repos.Conversation,
			repos.User,
			repos.Whisper,
			repos.Block,
			hub,
			limiters.Message,
			catalog,
		),
		Progress: services.NewProgressService(repos.Conversation, repos.Profile, repos.User, catalog),
	}

	cleanup := services.NewCleanupWorker(authService, resetService, cfg.Database.CleanupInterval)
	return svcs, limiters, cleanup
}
