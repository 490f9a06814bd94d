package repository

import (
	"context"

	"app/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (int64, error)
}

// プロフィールはユーザーにつき1件
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) (model.Profile, error)
}
