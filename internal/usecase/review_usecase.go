package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/permission"
	repo "app/internal/repository"
)

// ReviewUsecase はレビューの入口。
// COMPLETEDの自分の注文に含まれるサービスにだけレビューを許す。
type ReviewUsecase struct {
	reviewRepo    repo.ReviewRepository
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	serviceRepo   repo.ServiceRepository
}

func NewReviewUsecase(
	reviewRepo repo.ReviewRepository,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	serviceRepo repo.ServiceRepository,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviewRepo:    reviewRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		serviceRepo:   serviceRepo,
	}
}

type CreateReviewInput struct {
	OrderID int64
	Rating  int
	Comment string
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderID   int64     `json:"order_id"`
	ServiceID int64     `json:"service_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Create はレビュー作成。
// 注文の所有チェックはEvaluator、完了チェックと重複チェックはここで行う。
func (u *ReviewUsecase) Create(ctx context.Context, actor permission.Actor, serviceID int64, in CreateReviewInput) (ReviewOutput, error) {
	if !actor.Authenticated {
		return ReviewOutput{}, NewUnauthorizedError()
	}
	if serviceID <= 0 || in.OrderID <= 0 {
		return ReviewOutput{}, NewValidationError(CodeValidation, "invalid id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewOutput{}, NewValidationError(CodeInvalidRating, "rating must be between 1 and 5")
	}

	o, err := u.orderRepo.FindByID(ctx, in.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return ReviewOutput{}, NewNotFoundError("order not found")
	}
	if err != nil {
		return ReviewOutput{}, NewInternalError()
	}

	//注文の所有者だけがレビューできる
	d := permission.Authorize(actor, permission.ActionWrite, permission.Resource{
		Kind:    permission.KindReview,
		OwnerID: o.UserID,
	})
	if !d.Allowed {
		return ReviewOutput{}, NewAuthorizationError(d.Reason)
	}

	//注文が完了していること
	if o.Status != model.OrderStatusCompleted {
		return ReviewOutput{}, NewStateError(CodeOrderNotCompleted, "order is not completed")
	}

	//そのサービスが注文に含まれていること
	items, err := u.orderItemRepo.ListByOrderID(ctx, in.OrderID)
	if err != nil {
		return ReviewOutput{}, NewInternalError()
	}
	found := false
	for _, it := range items {
		if it.ServiceID == serviceID {
			found = true
			break
		}
	}
	if !found {
		return ReviewOutput{}, NewNotFoundError("service not in order")
	}

	//重複チェック（DBのunique制約が最後の砦）
	exists, err := u.reviewRepo.Exists(ctx, actor.ID, in.OrderID, serviceID)
	if err != nil {
		return ReviewOutput{}, NewInternalError()
	}
	if exists {
		return ReviewOutput{}, NewStateError(CodeDuplicateReview, "review already exists")
	}

	created, err := u.reviewRepo.Create(ctx, model.Review{
		UserID:    actor.ID,
		OrderID:   in.OrderID,
		ServiceID: serviceID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: time.Now(),
	})
	if errors.Is(err, repo.ErrConflict) {
		return ReviewOutput{}, NewStateError(CodeDuplicateReview, "review already exists")
	}
	if err != nil {
		return ReviewOutput{}, NewInternalError()
	}

	return toReviewOutput(created), nil
}

// ListByService は公開の一覧（新しい順）。認可は不要。
func (u *ReviewUsecase) ListByService(ctx context.Context, serviceID int64) ([]ReviewOutput, error) {
	if serviceID <= 0 {
		return []ReviewOutput{}, NewValidationError(CodeValidation, "invalid id")
	}

	if _, err := u.serviceRepo.FindByID(ctx, serviceID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []ReviewOutput{}, NewNotFoundError("service not found")
		}
		return []ReviewOutput{}, NewInternalError()
	}

	reviews, err := u.reviewRepo.ListByServiceID(ctx, serviceID)
	if err != nil {
		return []ReviewOutput{}, NewInternalError()
	}

	outs := make([]ReviewOutput, 0, len(reviews))
	for _, rv := range reviews {
		outs = append(outs, toReviewOutput(rv))
	}
	return outs, nil
}

func toReviewOutput(r model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        r.ID,
		UserID:    r.UserID,
		OrderID:   r.OrderID,
		ServiceID: r.ServiceID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
