package handler

import (
	"errors"
	"net/http"

	"github.com/cmg/memehub/internal/domain"
	"github.com/gin-gonic/gin"
)

// Every response uses the same envelope and HTTP 200; domain errors are
// signaled entirely in the body.

// Success writes a success envelope, with data when non-nil.
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Error writes an error envelope with the given user-facing message.
func Error(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": "error", "error": message})
}

// errorMessage maps a domain error to its user-facing message.
func errorMessage(err error) string {
	var fetchErr *domain.FetchError

	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return "Either the url or image must be provided"
	case errors.As(err, &fetchErr):
		return "Failed to fetch URL content for " + fetchErr.URL
	case errors.Is(err, domain.ErrInvalidImageEncoding):
		return "Invalid base64 image"
	case errors.Is(err, domain.ErrOCRNoText), errors.Is(err, domain.ErrOCRFailed):
		return "Failed to extract text from image. Make sure the provided image is not too large. Please choose another image or provide a caption."
	case errors.Is(err, domain.ErrMemeNotFound):
		return "Meme not found"
	case errors.Is(err, domain.ErrInvalidVoteType):
		return "Invalid vote type"
	}
	return "Internal server error"
}
