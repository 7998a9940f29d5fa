package handler

import (
	"strconv"

	"github.com/cmg/memehub/internal/domain"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/service"
	"github.com/gin-gonic/gin"
)

// MemeHandler handles the public meme endpoints.
type MemeHandler struct {
	ingestService *service.IngestService
	memeService   *service.MemeService
	logger        *logger.Logger
}

// NewMemeHandler creates a new meme handler.
func NewMemeHandler(ingestService *service.IngestService, memeService *service.MemeService, log *logger.Logger) *MemeHandler {
	return &MemeHandler{
		ingestService: ingestService,
		memeService:   memeService,
		logger:        log,
	}
}

// CreateMemeRequest is the POST /api/meme/ body. All fields are optional at
// the transport level; the ingestion pipeline decides validity.
type CreateMemeRequest struct {
	URL      string `json:"url"`
	Image    string `json:"image"`
	Caption  string `json:"caption"`
	Language string `json:"language"`
}

// VoteRequest is the POST /api/meme/:id/vote/ body.
type VoteRequest struct {
	Type string `json:"type"`
}

// CreateMeme handles POST /api/meme/.
func (h *MemeHandler) CreateMeme(c *gin.Context) {
	var req CreateMemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, "Either the url or image must be provided")
		return
	}

	_, err := h.ingestService.CreateMeme(c.Request.Context(), &service.CreateMemeInput{
		URL:      req.URL,
		Image:    req.Image,
		Caption:  req.Caption,
		Language: req.Language,
	})
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Meme creation rejected: %v", err)
		Error(c, errorMessage(err))
		return
	}

	// The creation endpoint does not echo the record.
	Success(c, nil)
}

// GetMeme handles GET /api/meme/:id.
func (h *MemeHandler) GetMeme(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		Error(c, "Meme not found")
		return
	}

	meme, err := h.memeService.GetMeme(c.Request.Context(), id)
	if err != nil {
		Error(c, errorMessage(err))
		return
	}

	Success(c, meme)
}

// VoteMeme handles POST /api/meme/:id/vote/.
func (h *MemeHandler) VoteMeme(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, "Invalid vote type")
		return
	}

	vote := domain.VoteType(req.Type)
	if !vote.Valid() {
		Error(c, "Invalid vote type")
		return
	}

	id, ok := parseID(c.Param("id"))
	if !ok {
		Error(c, "Meme not found")
		return
	}

	if err := h.memeService.Vote(c.Request.Context(), id, vote); err != nil {
		Error(c, errorMessage(err))
		return
	}

	Success(c, nil)
}

// TopMemes handles GET /api/meme/top/.
func (h *MemeHandler) TopMemes(c *gin.Context) {
	memes, err := h.memeService.TopMemes(c.Request.Context())
	if err != nil {
		logger.CtxError(c.Request.Context(), "Failed to fetch top memes: %v", err)
		Error(c, "Error fetching memes")
		return
	}

	Success(c, memes)
}

// RandomMeme handles GET /api/meme/random/.
func (h *MemeHandler) RandomMeme(c *gin.Context) {
	meme, err := h.memeService.RandomMeme(c.Request.Context())
	if err != nil {
		Error(c, "Error fetching meme")
		return
	}

	Success(c, meme)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
