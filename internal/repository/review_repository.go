package repository

import (
	"context"

	"app/internal/domain/model"
)

type ReviewRepository interface {
	// unique制約違反はErrConflictに変換して返す
	Create(ctx context.Context, r model.Review) (model.Review, error)
	ListByServiceID(ctx context.Context, serviceID int64) ([]model.Review, error)
	Exists(ctx context.Context, userID int64, orderID int64, serviceID int64) (bool, error)
}
