package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/permission"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CatalogUsecase はカテゴリとサービスのCRUD。
// 読み取りは公開、書き込みは管理者のみ（Evaluatorルール4）。
type CatalogUsecase struct {
	categoryRepo repo.CategoryRepository
	serviceRepo  repo.ServiceRepository
}

func NewCatalogUsecase(categoryRepo repo.CategoryRepository, serviceRepo repo.ServiceRepository) *CatalogUsecase {
	return &CatalogUsecase{categoryRepo: categoryRepo, serviceRepo: serviceRepo}
}

type ListServicesInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type ServiceListOutput struct {
	Items []model.Service `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type CategoryInput struct {
	Name        string
	Description string
}

type ServiceInput struct {
	CategoryID      *int64
	Name            string
	Description     string
	Price           decimal.Decimal
	ProviderName    string
	DurationMinutes int64
	IsActive        bool
}

func (u *CatalogUsecase) authorizeWrite(actor permission.Actor, kind permission.ResourceKind) error {
	d := permission.Authorize(actor, permission.ActionWrite, permission.Resource{Kind: kind})
	if !d.Allowed {
		return NewAuthorizationError(d.Reason)
	}
	return nil
}

// ListCategories は公開の一覧。
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.categoryRepo.List(ctx)
	if err != nil {
		return []model.Category{}, NewInternalError()
	}
	return cats, nil
}

// ListServices は公開サービスの検索付き一覧。
func (u *CatalogUsecase) ListServices(ctx context.Context, in ListServicesInput) (ServiceListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	items, total, err := u.serviceRepo.ListPublic(ctx, repo.ServiceListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          in.Q,
		CategoryID: in.CategoryID,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
	})
	if err != nil {
		return ServiceListOutput{}, NewInternalError()
	}

	return ServiceListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// GetService は公開の詳細。非公開サービスは存在しない扱い。
func (u *CatalogUsecase) GetService(ctx context.Context, id int64) (model.Service, error) {
	if id <= 0 {
		return model.Service{}, NewValidationError(CodeValidation, "invalid id")
	}

	s, err := u.serviceRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Service{}, NewNotFoundError("service not found")
	}
	if err != nil {
		return model.Service{}, NewInternalError()
	}
	if !s.IsActive {
		return model.Service{}, NewNotFoundError("service not found")
	}
	return s, nil
}

// CreateCategory は管理者のみ。
func (u *CatalogUsecase) CreateCategory(ctx context.Context, actor permission.Actor, in CategoryInput) (model.Category, error) {
	if err := u.authorizeWrite(actor, permission.KindCategory); err != nil {
		return model.Category{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Category{}, NewValidationError(CodeValidation, "name is required")
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
	if err != nil {
		return model.Category{}, NewInternalError()
	}
	return c, nil
}

func (u *CatalogUsecase) UpdateCategory(ctx context.Context, actor permission.Actor, id int64, in CategoryInput) (model.Category, error) {
	if err := u.authorizeWrite(actor, permission.KindCategory); err != nil {
		return model.Category{}, err
	}
	if id <= 0 {
		return model.Category{}, NewValidationError(CodeValidation, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Category{}, NewValidationError(CodeValidation, "name is required")
	}

	err := u.categoryRepo.Update(ctx, model.Category{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, NewNotFoundError("category not found")
	}
	if err != nil {
		return model.Category{}, NewInternalError()
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, NewInternalError()
	}
	return c, nil
}

func (u *CatalogUsecase) DeleteCategory(ctx context.Context, actor permission.Actor, id int64) error {
	if err := u.authorizeWrite(actor, permission.KindCategory); err != nil {
		return err
	}
	if id <= 0 {
		return NewValidationError(CodeValidation, "invalid id")
	}

	err := u.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("category not found")
	}
	if err != nil {
		return NewInternalError()
	}
	return nil
}

// CreateService は管理者のみ。価格は0以上。
func (u *CatalogUsecase) CreateService(ctx context.Context, actor permission.Actor, in ServiceInput) (model.Service, error) {
	if err := u.authorizeWrite(actor, permission.KindService); err != nil {
		return model.Service{}, err
	}
	if err := validateServiceInput(in); err != nil {
		return model.Service{}, err
	}

	s, err := u.serviceRepo.Create(ctx, model.Service{
		CategoryID:      in.CategoryID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		ProviderName:    in.ProviderName,
		DurationMinutes: in.DurationMinutes,
		IsActive:        in.IsActive,
	})
	if err != nil {
		return model.Service{}, NewInternalError()
	}
	return s, nil
}

// UpdateService は管理者のみ。
// 価格を変えても過去の注文のスナップショットは変わらない。
func (u *CatalogUsecase) UpdateService(ctx context.Context, actor permission.Actor, id int64, in ServiceInput) (model.Service, error) {
	if err := u.authorizeWrite(actor, permission.KindService); err != nil {
		return model.Service{}, err
	}
	if id <= 0 {
		return model.Service{}, NewValidationError(CodeValidation, "invalid id")
	}
	if err := validateServiceInput(in); err != nil {
		return model.Service{}, err
	}

	err := u.serviceRepo.Update(ctx, model.Service{
		ID:              id,
		CategoryID:      in.CategoryID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		ProviderName:    in.ProviderName,
		DurationMinutes: in.DurationMinutes,
		IsActive:        in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Service{}, NewNotFoundError("service not found")
	}
	if err != nil {
		return model.Service{}, NewInternalError()
	}

	s, err := u.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return model.Service{}, NewInternalError()
	}
	return s, nil
}

func (u *CatalogUsecase) DeleteService(ctx context.Context, actor permission.Actor, id int64) error {
	if err := u.authorizeWrite(actor, permission.KindService); err != nil {
		return err
	}
	if id <= 0 {
		return NewValidationError(CodeValidation, "invalid id")
	}

	err := u.serviceRepo.SoftDelete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("service not found")
	}
	if err != nil {
		return NewInternalError()
	}
	return nil
}

func validateServiceInput(in ServiceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError(CodeValidation, "name is required")
	}
	if in.Price.IsNegative() {
		return NewValidationError(CodeValidation, "price must not be negative")
	}
	if in.DurationMinutes <= 0 {
		return NewValidationError(CodeValidation, "duration_minutes must be positive")
	}
	return nil
}
