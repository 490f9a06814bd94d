package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ServiceGormRepository struct {
	db *gorm.DB
}

// DI
func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{db: db}
}

// 公開サービスのみを、検索/カテゴリ/価格帯/ページング付きで返す。
func (r *ServiceGormRepository) ListPublic(ctx context.Context, q repo.ServiceListQuery) ([]model.Service, int64, error) {
	var services []model.Service
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Service{})

	// 公開（is_active=true）のみ
	tx = tx.Where("is_active = ?", true)

	// q はname/descriptionを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	//カテゴリ絞り込み
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Service{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id asc").Offset(offset).Limit(q.Limit).Find(&services).Error; err != nil {
		return []model.Service{}, 0, err
	}

	return services, total, nil
}

// IDでサービスを取得
func (r *ServiceGormRepository) FindByID(ctx context.Context, id int64) (model.Service, error) {
	var s model.Service
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Service{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}

// サービスの作成
func (r *ServiceGormRepository) Create(ctx context.Context, s model.Service) (model.Service, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Service{}, err
	}
	return s, nil
}

// サービスの更新
func (r *ServiceGormRepository) Update(ctx context.Context, s model.Service) error {
	res := r.db.WithContext(ctx).Model(&model.Service{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"category_id":      s.CategoryID,
		"name":             s.Name,
		"description":      s.Description,
		"price":            s.Price,
		"provider_name":    s.ProviderName,
		"duration_minutes": s.DurationMinutes,
		"is_active":        s.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// サービス削除（ソフトデリート）
func (r *ServiceGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Service{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
