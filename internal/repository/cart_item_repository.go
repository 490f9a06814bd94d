package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一サービスは数量加算
	UpsertAdd(ctx context.Context, cartID int64, serviceID int64, addQty int64) error
	// 数量を指定値に上書き（存在しなければErrNotFound）
	SetQuantity(ctx context.Context, cartID int64, serviceID int64, qty int64) error
	// 無ければErrNotFoundを返す（no-op扱いにするかはusecase側で決める）
	DeleteByCartAndService(ctx context.Context, cartID int64, serviceID int64) error
}
