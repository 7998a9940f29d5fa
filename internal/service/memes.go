package service

import (
	"context"

	"github.com/cmg/memehub/internal/domain"
	"github.com/cmg/memehub/internal/logger"
	"github.com/cmg/memehub/internal/repository"
)

// TopMemeCount is the fixed size of the top ranking returned by the API.
const TopMemeCount = 10

// MemeService serves reads and votes over the meme store.
type MemeService struct {
	memeRepo *repository.MemeRepository
	logger   *logger.Logger
}

// NewMemeService creates a new meme service.
func NewMemeService(memeRepo *repository.MemeRepository, log *logger.Logger) *MemeService {
	return &MemeService{
		memeRepo: memeRepo,
		logger:   log,
	}
}

// GetMeme retrieves a meme by id. Returns domain.ErrMemeNotFound when no meme
// with that id exists.
func (s *MemeService) GetMeme(ctx context.Context, id uint) (*domain.Meme, error) {
	meme, err := s.memeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meme == nil {
		return nil, domain.ErrMemeNotFound
	}
	return meme, nil
}

// TopMemes retrieves up to TopMemeCount memes ordered by upvotes descending.
// An empty store yields an empty slice, not an error.
func (s *MemeService) TopMemes(ctx context.Context) ([]domain.Meme, error) {
	return s.memeRepo.TopN(ctx, TopMemeCount)
}

// RandomMeme retrieves one uniformly chosen meme. Returns
// domain.ErrMemeNotFound when the store is empty.
func (s *MemeService) RandomMeme(ctx context.Context) (*domain.Meme, error) {
	meme, err := s.memeRepo.Random(ctx)
	if err != nil {
		return nil, err
	}
	if meme == nil {
		return nil, domain.ErrMemeNotFound
	}
	return meme, nil
}

// Vote applies an upvote or downvote to the meme with the given id. A
// downvote on a meme at zero upvotes is a no-op that still succeeds. Returns
// domain.ErrMemeNotFound when no meme with that id exists and
// domain.ErrInvalidVoteType for a vote outside the closed variant.
func (s *MemeService) Vote(ctx context.Context, id uint, vote domain.VoteType) error {
	var (
		found bool
		err   error
	)

	switch vote {
	case domain.VoteUpvote:
		found, err = s.memeRepo.Upvote(ctx, id)
	case domain.VoteDownvote:
		found, err = s.memeRepo.Downvote(ctx, id)
	default:
		return domain.ErrInvalidVoteType
	}

	if err != nil {
		return err
	}
	if !found {
		return domain.ErrMemeNotFound
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldMemeID: id,
		logger.FieldVote:   string(vote),
	}).Debug("Vote recorded")

	return nil
}

// AllMemes retrieves every stored meme, unordered. Admin tooling only.
func (s *MemeService) AllMemes(ctx context.Context) ([]domain.Meme, error) {
	return s.memeRepo.GetAll(ctx)
}

// Reset deletes every stored meme. Administrative/test operation.
func (s *MemeService) Reset(ctx context.Context) error {
	count, err := s.memeRepo.Count(ctx)
	if err != nil {
		return err
	}
	if err := s.memeRepo.Reset(ctx); err != nil {
		return err
	}
	s.logger.WithField(logger.FieldCount, count).Warn("Meme store reset")
	return nil
}
