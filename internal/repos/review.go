package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/types"
)

type ReviewRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, reviewID int64) (*types.Review, error)
	Create(ctx context.Context, tx *gorm.DB, review *types.Review) (*types.Review, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, reviewID int64, content datatypes.JSON, editorVersion string) error
	ListIDs(ctx context.Context, tx *gorm.DB) ([]int64, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	repoLog := baseLog.With("repo", "ReviewRepo")
	return &reviewRepo{db: db, log: repoLog}
}

func (r *reviewRepo) GetByID(ctx context.Context, tx *gorm.DB, reviewID int64) (*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var review types.Review
	if err := transaction.WithContext(ctx).
		Where("id = ?", reviewID).
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.Review) (*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if review == nil {
		return nil, fmt.Errorf("%w: review is nil", pkgerrors.ErrInvalidArgument)
	}
	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) UpdateContent(ctx context.Context, tx *gorm.DB, reviewID int64, content datatypes.JSON, editorVersion string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]any{
			"structured_content": content,
			"editor_version":     editorVersion,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("review %d: %w", reviewID, pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *reviewRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []int64
	if err := transaction.WithContext(ctx).
		Model(&types.Review{}).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
