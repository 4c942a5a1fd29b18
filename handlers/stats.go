package handlers

import (
	"net/http"

	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/repository"
)

type StatsResponse struct {
	TotalUsers  int `json:"total_users"`
	OnlineUsers int `json:"online_users"`
}

// OnlineCounter is the part of the WebSocket hub the stats endpoint reads.
type OnlineCounter interface {
	OnlineUserIDs() []string
}

// StatsHandler serves the public landing page counters. No auth.
type StatsHandler struct {
	userRepo repository.UserRepository
	online   OnlineCounter
}

func NewStatsHandler(userRepo repository.UserRepository, online OnlineCounter) *StatsHandler {
	return &StatsHandler{userRepo: userRepo, online: online}
}

// GetPublicStats godoc
// GET /api/stats
func (h *StatsHandler) GetPublicStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.userRepo.Count(r.Context())
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	pkg.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:  count,
		OnlineUsers: len(h.online.OnlineUserIDs()),
	})
}
