package repository

import (
	"context"
	"errors"

	"github.com/cmg/memehub/internal/domain"
	"gorm.io/gorm"
)

// MemeRepository handles meme persistence, ranking queries, and vote updates.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create inserts a new meme record. The store assigns the next id.
func (r *MemeRepository) Create(ctx context.Context, meme *domain.Meme) error {
	return r.db.WithContext(ctx).Create(meme).Error
}

// GetByID retrieves a meme by its id. Absence is an expected outcome, not an
// error: returns (nil, nil) when no meme with that id exists.
func (r *MemeRepository) GetByID(ctx context.Context, id uint) (*domain.Meme, error) {
	var meme domain.Meme
	err := r.db.WithContext(ctx).First(&meme, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meme, nil
}

// GetAll retrieves every stored meme, unordered. Used by admin tooling only.
func (r *MemeRepository) GetAll(ctx context.Context) ([]domain.Meme, error) {
	memes := make([]domain.Meme, 0)
	if err := r.db.WithContext(ctx).Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// TopN retrieves the n highest-voted memes, upvotes descending. Ties break on
// id ascending so the ordering is stable across calls and drivers. Returns
// fewer than n rows when the store holds fewer memes; an empty store yields an
// empty slice.
func (r *MemeRepository) TopN(ctx context.Context, n int) ([]domain.Meme, error) {
	memes := make([]domain.Meme, 0, n)
	if err := r.db.WithContext(ctx).
		Order("upvotes DESC, id ASC").
		Limit(n).
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// Random retrieves one meme chosen uniformly among all stored memes.
// Returns (nil, nil) when the store is empty.
func (r *MemeRepository) Random(ctx context.Context) (*domain.Meme, error) {
	var meme domain.Meme
	err := r.db.WithContext(ctx).Order("RANDOM()").First(&meme).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meme, nil
}

// Upvote increments the vote count by one as a single UPDATE statement, so
// concurrent votes on the same id serialize inside the storage engine and no
// update is lost. Returns false when no meme with that id exists.
func (r *MemeRepository) Upvote(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Meme{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", gorm.Expr("upvotes + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Downvote decrements the vote count by one, never below zero. A meme already
// at zero stays at zero and the call still reports success. Returns false when
// no meme with that id exists.
func (r *MemeRepository) Downvote(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Meme{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", gorm.Expr("CASE WHEN upvotes > 0 THEN upvotes - 1 ELSE upvotes END"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of stored memes.
func (r *MemeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Meme{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Reset deletes every stored meme. Administrative/test operation; ids are not
// reused afterwards because the auto-increment sequence keeps advancing.
func (r *MemeRepository) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Meme{}).Error
}
