package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/cmg/memehub/internal/domain"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/ocr"
	"github.com/cmg/memehub/internal/repository"
	_ "golang.org/x/image/webp"
)

// IngestService resolves meme creation requests into persisted records.
type IngestService struct {
	memeRepo *repository.MemeRepository
	fetcher  ImageFetcher
	ocr      ocr.TextExtractor
	logger   *logger.Logger
	language string
}

// IngestConfig holds configuration for the ingest service.
type IngestConfig struct {
	// DefaultLanguage is the OCR language hint used when the request carries none.
	DefaultLanguage string
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	memeRepo *repository.MemeRepository,
	fetcher ImageFetcher,
	extractor ocr.TextExtractor,
	log *logger.Logger,
	cfg *IngestConfig,
) *IngestService {
	return &IngestService{
		memeRepo: memeRepo,
		fetcher:  fetcher,
		ocr:      extractor,
		logger:   log,
		language: cfg.DefaultLanguage,
	}
}

// log returns a logger from context if available, otherwise the service logger
func (s *IngestService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// CreateMemeInput carries the client-supplied creation fields. All fields are
// optional at the transport level; the resolution rules decide validity.
type CreateMemeInput struct {
	URL      string
	Image    string // base64
	Caption  string
	Language string // OCR language hint
}

// CreateMeme resolves the input into a stored meme.
//
// Resolution rules: at least one of URL and Image must be set; when both are
// set the URL wins and the inline image is discarded. An empty caption falls
// back to OCR over the resolved image bytes; OCR yielding no text fails the
// creation. The persisted record always has a non-empty image and caption and
// starts at zero upvotes.
func (s *IngestService) CreateMeme(ctx context.Context, in *CreateMemeInput) (*domain.Meme, error) {
	urlSet := in.URL != ""
	imageSet := in.Image != ""

	if !urlSet && !imageSet {
		return nil, domain.ErrMissingInput
	}

	var (
		imageBytes []byte
		encoded    string
		storedURL  string
	)

	if urlSet {
		// URL takes precedence; an inline image is discarded.
		content, err := s.fetcher.Fetch(ctx, in.URL)
		if err != nil {
			return nil, &domain.FetchError{URL: in.URL, Err: err}
		}
		imageBytes = content
		encoded = base64.StdEncoding.EncodeToString(content)
		storedURL = in.URL
	} else {
		decoded, err := base64.StdEncoding.DecodeString(in.Image)
		if err != nil {
			return nil, domain.ErrInvalidImageEncoding
		}
		imageBytes = decoded
		encoded = in.Image
	}

	s.sniffImage(ctx, imageBytes)

	caption := in.Caption
	if caption == "" {
		language := in.Language
		if language == "" {
			language = s.language
		}
		fragments, err := s.ocr.ExtractText(ctx, imageBytes, language)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailed, err)
		}
		caption = strings.Join(fragments, " ")
		if caption == "" {
			return nil, domain.ErrOCRNoText
		}
	}

	meme := &domain.Meme{
		URL:     storedURL,
		Caption: caption,
		Upvotes: 0,
		Image:   encoded,
	}
	if err := s.memeRepo.Create(ctx, meme); err != nil {
		return nil, fmt.Errorf("failed to persist meme: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldMemeID: meme.ID,
		logger.FieldSize:   len(imageBytes),
	}).Info("Meme created")

	return meme, nil
}

// sniffImage logs format and dimensions of the resolved bytes. Content that
// does not decode as a known image format is still stored; creation does not
// validate image content, only the encoding.
func (s *IngestService) sniffImage(ctx context.Context, data []byte) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logger.CtxDebug(ctx, "Image format not recognized: size=%d", len(data))
		return
	}
	logger.CtxDebug(ctx, "Resolved image: format=%s, width=%d, height=%d, size=%d",
		format, cfg.Width, cfg.Height, len(data))
}
