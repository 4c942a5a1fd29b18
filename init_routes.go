package main

import (
	"net/http"

	"github.com/Yash-SD99/Echoing-Hearts/middleware"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/services"
)

// initRoutes registers every endpoint on mux.
//
// Literal segments are registered before parametric ones at the same depth
// (/api/whispers/nearby before /api/whispers/{id}) so the table reads in
// match order.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(http.HandlerFunc(handler))
	}

	// ─── Health & Public ───
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"echoing-hearts"}`))
	})
	mux.HandleFunc("GET /api/stats", h.Stats.GetPublicStats)
	mux.HandleFunc("GET /map", h.Map.Page)

	// ─── Auth ───
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)

	// ─── Current User ───
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))
	mux.Handle("POST /api/users/me/password", auth(h.Auth.ChangePassword))
	mux.Handle("PATCH /api/users/me/language", auth(h.Auth.UpdateLanguage))
	mux.Handle("GET /api/users/me/profile", auth(h.Profile.Get))
	mux.Handle("PATCH /api/users/me/profile", auth(h.Profile.Update))

	// ─── Blocks ───
	mux.Handle("GET /api/users/me/blocks", auth(h.Block.List))
	mux.Handle("POST /api/users/{id}/block", auth(h.Block.Block))
	mux.Handle("DELETE /api/users/{id}/block", auth(h.Block.Unblock))

	// ─── Whispers ───
	mux.Handle("POST /api/whispers", auth(h.Whisper.Create))
	mux.Handle("GET /api/whispers/nearby", auth(h.Whisper.Nearby))
	mux.Handle("GET /api/whispers/mine", auth(h.Whisper.ListMine))
	mux.Handle("GET /api/whispers/{id}", auth(h.Whisper.Get))
	mux.Handle("DELETE /api/whispers/{id}", auth(h.Whisper.Delete))
	mux.Handle("PUT /api/whispers/{id}/reaction", auth(h.Whisper.React))
	mux.Handle("DELETE /api/whispers/{id}/reaction", auth(h.Whisper.ClearReaction))
	mux.Handle("POST /api/whispers/{id}/chat", auth(h.Conversation.StartFromWhisper))

	// ─── Conversations ───
	mux.Handle("GET /api/conversations", auth(h.Conversation.List))
	mux.Handle("POST /api/conversations", auth(h.Conversation.Start))
	mux.Handle("GET /api/conversations/{id}", auth(h.Conversation.Get))
	mux.Handle("GET /api/conversations/{id}/messages", auth(h.Conversation.Messages))
	mux.Handle("POST /api/conversations/{id}/messages", auth(h.Conversation.Send))
	mux.Handle("GET /api/conversations/{id}/progress", auth(h.Conversation.Progress))

	// ─── WebSocket ───
	// Authenticated by ?token= inside the handler.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
