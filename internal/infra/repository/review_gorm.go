package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

// レビュー作成。(user, order, service) uniqueの違反はErrConflictに変換する。
func (r *ReviewGormRepository) Create(ctx context.Context, rv model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Create(&rv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Review{}, repo.ErrConflict
		}
		return model.Review{}, err
	}
	return rv, nil
}

// サービスのレビュー一覧（新しい順）
func (r *ReviewGormRepository) ListByServiceID(ctx context.Context, serviceID int64) ([]model.Review, error) {
	var reviews []model.Review

	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at desc").
		Order("id desc").
		Find(&reviews).Error; err != nil {
		return []model.Review{}, err
	}

	return reviews, nil
}

func (r *ReviewGormRepository) Exists(ctx context.Context, userID int64, orderID int64, serviceID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("user_id = ? AND order_id = ? AND service_id = ?", userID, orderID, serviceID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
