package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}

// 一覧検索
type ServiceListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// サービスの永続化（保存・取得）だけを約束。
type ServiceRepository interface {
	ListPublic(ctx context.Context, q ServiceListQuery) ([]model.Service, int64, error)
	FindByID(ctx context.Context, id int64) (model.Service, error)

	Create(ctx context.Context, s model.Service) (model.Service, error)
	Update(ctx context.Context, s model.Service) error
	SoftDelete(ctx context.Context, id int64) error
}
