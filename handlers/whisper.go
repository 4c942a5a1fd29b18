package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Yash-SD99/Echoing-Hearts/models"
	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/Yash-SD99/Echoing-Hearts/services"
)

type WhisperHandler struct {
	whisperService services.WhisperService
}

func NewWhisperHandler(whisperService services.WhisperService) *WhisperHandler {
	return &WhisperHandler{whisperService: whisperService}
}

// Create godoc
// POST /api/whispers
// Body: { "title": "...", "text": "...", "latitude": 0, "longitude": 0 }
func (h *WhisperHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateWhisperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	whisper, err := h.whisperService.Create(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, whisper)
}

// Nearby godoc
// GET /api/whispers/nearby?lat=..&lng=..&radius=..&limit=..
//
// radius is in meters. radius and limit are optional.
func (h *WhisperHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	query := models.NearbyQuery{Center: geo.Point{Lat: lat, Lng: lng}}
	if raw := q.Get("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		query.Radius = radius
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}

	whispers, err := h.whisperService.Nearby(r.Context(), user.ID, query)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, whispers)
}

// ListMine godoc
// GET /api/whispers/mine
func (h *WhisperHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	whispers, err := h.whisperService.ListMine(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, whispers)
}

// Get godoc
// GET /api/whispers/{id}
func (h *WhisperHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	whisper, err := h.whisperService.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, whisper)
}

// Delete godoc
// DELETE /api/whispers/{id}
func (h *WhisperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.whisperService.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "whisper deleted"})
}

// React godoc
// PUT /api/whispers/{id}/reaction
// Body: { "kind": "like" | "dislike" }
func (h *WhisperHandler) React(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := h.whisperService.React(r.Context(), user.ID, r.PathValue("id"), req.Kind)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, counts)
}

// ClearReaction godoc
// DELETE /api/whispers/{id}/reaction
func (h *WhisperHandler) ClearReaction(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	counts, err := h.whisperService.ClearReaction(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, counts)
}
