package handlers

import (
	"net/http"

	"github.com/Yash-SD99/Echoing-Hearts/pkg"
	"github.com/Yash-SD99/Echoing-Hearts/services"
)

type BlockHandler struct {
	blockService services.BlockService
}

func NewBlockHandler(blockService services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// List godoc
// GET /api/users/me/blocks
func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	blocks, err := h.blockService.List(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, blocks)
}

// Block godoc
// POST /api/users/{id}/block
func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.blockService.Block(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, map[string]string{"message": "user blocked"})
}

// Unblock godoc
// DELETE /api/users/{id}/block
func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.blockService.Unblock(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user unblocked"})
}
