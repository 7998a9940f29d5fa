package handler

import (
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles administrative operations: listing the full store and
// resetting it. Not part of the public meme contract.
type AdminHandler struct {
	memeService *service.MemeService
	logger      *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(memeService *service.MemeService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		memeService: memeService,
		logger:      log,
	}
}

// ListMemes handles GET /api/admin/memes/. Returns every stored meme,
// unordered; used by operator tooling.
func (h *AdminHandler) ListMemes(c *gin.Context) {
	memes, err := h.memeService.AllMemes(c.Request.Context())
	if err != nil {
		logger.CtxError(c.Request.Context(), "Failed to list memes: %v", err)
		Error(c, "Error fetching memes")
		return
	}

	Success(c, memes)
}

// ResetStore handles POST /api/admin/reset/. Deletes every stored meme.
func (h *AdminHandler) ResetStore(c *gin.Context) {
	if err := h.memeService.Reset(c.Request.Context()); err != nil {
		logger.CtxError(c.Request.Context(), "Failed to reset store: %v", err)
		Error(c, "Error resetting store")
		return
	}

	Success(c, nil)
}
