package main

import (
	"github.com/Yash-SD99/Echoing-Hearts/config"
	"github.com/Yash-SD99/Echoing-Hearts/handlers"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/static"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Block        *handlers.BlockHandler
	Whisper      *handlers.WhisperHandler
	Conversation *handlers.ConversationHandler
	Stats        *handlers.StatsHandler
	Map          *handlers.MapHandler
	WS           *ws.Handler
}

func initHandlers(
	svcs *Services,
	repos *Repositories,
	limiters *RateLimiters,
	hub *ws.Hub,
	catalog *i18n.Catalog,
	cfg *config.Config,
) (*Handlers, error) {
	mapHandler, err := handlers.NewMapHandler(static.Templates, catalog, cfg.Limits.NearbyRadius)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Auth:         handlers.NewAuthHandler(svcs.Auth, svcs.PasswordReset, limiters.Auth),
		Profile:      handlers.NewProfileHandler(svcs.Profile),
		Block:        handlers.NewBlockHandler(svcs.Block),
		Whisper:      handlers.NewWhisperHandler(svcs.Whisper),
		Conversation: handlers.NewConversationHandler(svcs.Conversation, svcs.Progress),
		Stats:        handlers.NewStatsHandler(repos.User, hub),
		Map:          mapHandler,
		WS:           ws.NewHandler(hub, svcs.Auth, cfg.Server.CORSOrigins),
	}, nil
}
