package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 行ロック付き取得。チェックアウトとカート更新の直列化に使う。
	// トランザクション内でだけ呼ぶこと。
	LockByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// updated_atを更新
	Touch(ctx context.Context, cartID int64) error
	// 明細を全削除（カート本体は残す）
	Clear(ctx context.Context, cartID int64) error
}
