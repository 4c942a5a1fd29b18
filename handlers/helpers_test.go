package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/database"
	"github.com/Yash-SD99/Echoing-Hearts/handlers"
	"github.com/Yash-SD99/Echoing-Hearts/middleware"
	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/ratelimit"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
	"github.com/Yash-SD99/Echoing-Hearts/services"
	"github.com/Yash-SD99/Echoing-Hearts/static"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret-0123456789abcdef"

// newTestMux builds the API routes on a fresh in-memory database. Password
// reset has no mail sender, so it answers 503.
func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	db, err := database.New(database.MemoryPath, database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalog, err := i18n.LoadEmbedded()
	require.NoError(t, err)

	conn := db.Conn
	userRepo := repository.NewSQLiteUserRepo(conn)
	profileRepo := repository.NewSQLiteProfileRepo(conn)
	whisperRepo := repository.NewSQLiteWhisperRepo(conn)
	convRepo := repository.NewSQLiteConversationRepo(conn)
	blockRepo := repository.NewSQLiteBlockRepo(conn)

	hub := ws.NewHub()
	locations := services.NewLocationService(time.Minute)
	t.Cleanup(locations.Close)

	limiter := ratelimit.NewAuthLimiter(time.Minute, map[ratelimit.Scope]int{
		ratelimit.ScopeLogin:          3,
		ratelimit.ScopeForgotPassword: 2,
	})
	t.Cleanup(limiter.Stop)

	authService := services.NewAuthService(conn, userRepo, profileRepo,
		repository.NewSQLiteSessionRepo(conn), testSecret, time.Minute, time.Hour)
	resetService := services.NewPasswordResetService(conn, userRepo,
		repository.NewSQLiteResetTokenRepo(conn), nil, 30*time.Minute)
	whisperService := services.NewWhisperService(conn, whisperRepo, userRepo, blockRepo, locations, hub, catalog,
		services.WhisperLimits{DefaultRadius: 2000, MaxRadius: 20000, PushRadius: 2000})
	convService := services.NewConversationService(conn, convRepo, userRepo, whisperRepo, blockRepo, hub, nil, catalog)

	authH := handlers.NewAuthHandler(authService, resetService, limiter)
	profileH := handlers.NewProfileHandler(services.NewProfileService(profileRepo))
	blockH := handlers.NewBlockHandler(services.NewBlockService(blockRepo, userRepo))
	whisperH := handlers.NewWhisperHandler(whisperService)
	convH := handlers.NewConversationHandler(convService,
		services.NewProgressService(convRepo, profileRepo, userRepo, catalog))
	statsH := handlers.NewStatsHandler(userRepo, hub)
	mapH, err := handlers.NewMapHandler(static.Templates, catalog, 2000)
	require.NoError(t, err)

	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	auth := func(h http.HandlerFunc) http.Handler { return authMw.Require(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats", statsH.GetPublicStats)
	mux.HandleFunc("GET /map", mapH.Page)
	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("POST /api/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authH.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", authH.ForgotPassword)
	mux.Handle("GET /api/users/me", auth(authH.Me))
	mux.Handle("PATCH /api/users/me/language", auth(authH.UpdateLanguage))
	mux.Handle("GET /api/users/me/profile", auth(profileH.Get))
	mux.Handle("PATCH /api/users/me/profile", auth(profileH.Update))
	mux.Handle("GET /api/users/me/blocks", auth(blockH.List))
	mux.Handle("POST /api/users/{id}/block", auth(blockH.Block))
	mux.Handle("DELETE /api/users/{id}/block", auth(blockH.Unblock))
	mux.Handle("POST /api/whispers", auth(whisperH.Create))
	mux.Handle("GET /api/whispers/nearby", auth(whisperH.Nearby))
	mux.Handle("GET /api/whispers/{id}", auth(whisperH.Get))
	mux.Handle("DELETE /api/whispers/{id}", auth(whisperH.Delete))
	mux.Handle("PUT /api/whispers/{id}/reaction", auth(whisperH.React))
	mux.Handle("POST /api/whispers/{id}/chat", auth(convH.StartFromWhisper))
	mux.Handle("GET /api/conversations", auth(convH.List))
	mux.Handle("POST /api/conversations", auth(convH.Start))
	mux.Handle("GET /api/conversations/{id}/messages", auth(convH.Messages))
	mux.Handle("POST /api/conversations/{id}/messages", auth(convH.Send))
	mux.Handle("GET /api/conversations/{id}/progress", auth(convH.Progress))
	return mux
}

type request struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func do(t *testing.T, mux http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	switch b := req.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(b))
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	r.RemoteAddr = "192.0.2.10:5555"
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}

// envelope decodes the {success, data, error} response into data.
func envelope[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, string) {
	t.Helper()

	var resp struct {
		Success bool   `json:"success"`
		Data    T      `json:"data"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	return resp.Data, resp.Error
}

func register(t *testing.T, mux http.Handler, username string) *models.AuthResponse {
	t.Helper()

	rec := do(t, mux, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp, _ := envelope[models.AuthResponse](t, rec)
	return &resp
}
