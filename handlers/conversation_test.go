package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/reveal"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, mux http.Handler, token, convID, content string) models.SendResult {
	t.Helper()

	rec := do(t, mux, request{method: http.MethodPost, path: "/api/conversations/" + convID + "/messages",
		token: token, body: map[string]string{"content": content}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result, _ := envelope[models.SendResult](t, rec)
	return result
}

func TestConversationFromWhisperUnlocksProfile(t *testing.T) {
	mux := newTestMux(t)
	luna := register(t, mux, "luna")
	sol := register(t, mux, "sol")

	rec := do(t, mux, request{method: http.MethodPatch, path: "/api/users/me/profile", token: luna.Tokens.AccessToken,
		body: map[string]any{"interests": []string{"jazz"}, "first_name": "Luna"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w := createWhisper(t, mux, luna.Tokens.AccessToken, 40.4168, -3.7038)

	rec = do(t, mux, request{method: http.MethodPost, path: "/api/whispers/" + w.ID + "/chat", token: sol.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	conv, _ := envelope[models.Conversation](t, rec)
	require.Equal(t, 1, conv.UnlockLevel)

	// Opening the same whisper again returns the same conversation.
	rec = do(t, mux, request{method: http.MethodPost, path: "/api/whispers/" + w.ID + "/chat", token: sol.Tokens.AccessToken})
	again, _ := envelope[models.Conversation](t, rec)
	require.Equal(t, conv.ID, again.ID)

	// One side alone never levels up.
	for i := 0; i < 6; i++ {
		result := send(t, mux, sol.Tokens.AccessToken, conv.ID, fmt.Sprintf("hi %d", i))
		require.Equal(t, 1, result.UnlockLevel)
	}

	var last models.SendResult
	for i := 0; i < 5; i++ {
		last = send(t, mux, luna.Tokens.AccessToken, conv.ID, fmt.Sprintf("hey %d", i))
	}
	require.Equal(t, 2, last.UnlockLevel)
	require.True(t, last.LevelChanged)
	require.Equal(t, 5, last.Counters.Count(luna.User.ID))
	require.Equal(t, 6, last.Counters.Count(sol.User.ID))

	rec = do(t, mux, request{method: http.MethodGet, path: "/api/conversations/" + conv.ID + "/progress",
		token: sol.Tokens.AccessToken, headers: map[string]string{"Accept-Language": "es-MX,es;q=0.9"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view, _ := envelope[models.ProgressView](t, rec)

	require.Equal(t, 2, view.Level)
	require.Equal(t, 6, view.MyCount)
	require.Equal(t, 5, view.PeerCount)
	require.Equal(t, 5, view.EffectiveCount)
	require.NotNil(t, view.NextThreshold)
	require.Equal(t, 20, *view.NextThreshold)
	require.Equal(t, "Nombre anónimo", view.Blocks[0].Title)
	require.Equal(t, "jazz", view.Blocks[1].Content)
	require.False(t, view.Blocks[3].Unlocked)
	require.Equal(t, reveal.LockedPlaceholder, view.Blocks[3].Content)

	rec = do(t, mux, request{method: http.MethodGet, path: "/api/conversations/" + conv.ID + "/messages?limit=3",
		token: luna.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	page, _ := envelope[[]models.ConversationMessage](t, rec)
	require.Len(t, page, 3)
	require.Equal(t, "hey 4", page[0].Content)

	rec = do(t, mux, request{method: http.MethodGet, path: "/api/conversations", token: luna.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	list, _ := envelope[[]models.ConversationSummary](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, sol.User.ID, list[0].Peer.UserID)
}

func TestConversationOutsiderAndValidation(t *testing.T) {
	mux := newTestMux(t)
	luna := register(t, mux, "luna")
	sol := register(t, mux, "sol")
	eve := register(t, mux, "eve")

	rec := do(t, mux, request{method: http.MethodPost, path: "/api/conversations", token: luna.Tokens.AccessToken,
		body: map[string]string{"user_id": sol.User.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	conv, _ := envelope[models.Conversation](t, rec)

	rec = do(t, mux, request{method: http.MethodPost, path: "/api/conversations", token: luna.Tokens.AccessToken,
		body: map[string]string{"user_id": luna.User.ID}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, request{method: http.MethodPost, path: "/api/conversations/" + conv.ID + "/messages",
		token: eve.Tokens.AccessToken, body: map[string]string{"content": "let me in"}})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, request{method: http.MethodGet, path: "/api/conversations/" + conv.ID + "/progress",
		token: eve.Tokens.AccessToken})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, request{method: http.MethodPost, path: "/api/conversations/" + conv.ID + "/messages",
		token: luna.Tokens.AccessToken, body: map[string]string{"content": "   "}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
