package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/permission"
	repo "app/internal/repository"
)

// ProfileUsecase は本人プロフィールの取得と更新。
type ProfileUsecase struct {
	profileRepo repo.ProfileRepository
}

func NewProfileUsecase(profileRepo repo.ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{profileRepo: profileRepo}
}

type ProfileInput struct {
	FullName    string
	PhoneNumber string
	Address     string
	Bio         string
}

func (u *ProfileUsecase) Get(ctx context.Context, actor permission.Actor) (model.Profile, error) {
	if !actor.Authenticated {
		return model.Profile{}, NewUnauthorizedError()
	}

	p, err := u.profileRepo.FindByUserID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Profile{}, NewNotFoundError("profile not found")
	}
	if err != nil {
		return model.Profile{}, NewInternalError()
	}
	return p, nil
}

func (u *ProfileUsecase) Update(ctx context.Context, actor permission.Actor, in ProfileInput) (model.Profile, error) {
	if !actor.Authenticated {
		return model.Profile{}, NewUnauthorizedError()
	}
	if strings.TrimSpace(in.FullName) == "" {
		return model.Profile{}, NewValidationError(CodeValidation, "full_name is required")
	}

	p, err := u.profileRepo.Upsert(ctx, model.Profile{
		UserID:      actor.ID,
		FullName:    strings.TrimSpace(in.FullName),
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Bio:         in.Bio,
	})
	if err != nil {
		return model.Profile{}, NewInternalError()
	}
	return p, nil
}
