package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/i18n"
	"github.com/Yash-SD99/Echoing-Hearts/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
	progressService     services.ProgressService
}

func NewConversationHandler(
	conversationService services.ConversationService,
	progressService services.ProgressService,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		progressService:     progressService,
	}
}

// List godoc
// GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	conversations, err := h.conversationService.List(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conversations)
}

// Start godoc
// POST /api/conversations
// Body: { "user_id": "..." }
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.conversationService.Start(r.Context(), user.ID, req.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conv)
}

// StartFromWhisper godoc
// POST /api/whispers/{id}/chat
func (h *ConversationHandler) StartFromWhisper(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	conv, err := h.conversationService.StartFromWhisper(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conv)
}

// Get godoc
// GET /api/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	conv, err := h.conversationService.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, conv)
}

// Messages godoc
// GET /api/conversations/{id}/messages?before=<messageId>&limit=50
//
// Newest first. Pass the last id of a page as before to get the next one.
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := models.DefaultMessageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	messages, err := h.conversationService.Messages(r.Context(), user.ID, r.PathValue("id"),
		r.URL.Query().Get("before"), limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}

// Send godoc
// POST /api/conversations/{id}/messages
// Body: { "content": "..." }
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.conversationService.Send(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, result)
}

// Progress godoc
// GET /api/conversations/{id}/progress?lang=es
//
// Without lang the Accept-Language header decides, then the user's setting.
func (h *ConversationHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		if header := r.Header.Get("Accept-Language"); header != "" {
			lang = i18n.DetectLanguage(header)
		}
	}

	view, err := h.progressService.GetProgress(r.Context(), user.ID, r.PathValue("id"), lang)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, view)
}
