package domain

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the ingestion pipeline and vote engine. Handlers
// recover all of them at the request boundary and translate them into the
// uniform response envelope; none escape as transport failures.
var (
	// ErrMissingInput: a creation request supplied neither a url nor an image.
	ErrMissingInput = errors.New("either the url or image must be provided")

	// ErrInvalidImageEncoding: the inline image was not valid base64.
	ErrInvalidImageEncoding = errors.New("invalid base64 image")

	// ErrOCRNoText: the OCR call succeeded but recognized no text.
	ErrOCRNoText = errors.New("no text could be extracted from the image")

	// ErrOCRFailed: the OCR service could not be reached or returned an error.
	ErrOCRFailed = errors.New("ocr extraction failed")

	// ErrMemeNotFound: no meme exists with the requested id. Expected outcome,
	// not exceptional.
	ErrMemeNotFound = errors.New("meme not found")

	// ErrInvalidVoteType: vote type outside the upvote/downvote variant.
	ErrInvalidVoteType = errors.New("invalid vote type")
)

// FetchError indicates the content at the source URL could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch url content for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch url content for %s", e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
