package usecase

import (
	"context"
	"errors"

	"app/internal/permission"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// カートは本人のものだけを扱い、所有チェックはPermission Evaluator経由で行う。
type CartUsecase struct {
	tx          repo.TransactionManager
	cartRepo    repo.CartRepository
	itemRepo    repo.CartItemRepository
	serviceRepo repo.ServiceRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	itemRepo repo.CartItemRepository,
	serviceRepo repo.ServiceRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:          tx,
		cartRepo:    cartRepo,
		itemRepo:    itemRepo,
		serviceRepo: serviceRepo,
	}
}

type CartItemResponse struct {
	ID        int64           `json:"id"`
	ServiceID int64           `json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// カート合計は現在価格で計算する（確定はチェックアウト時のみ）。
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddItemInput struct {
	ServiceID int64
	Quantity  int64
}

type UpdateQuantityInput struct {
	Quantity int64
}

// 本人カートへの操作をEvaluatorに通す。ここが唯一の認可経路。
func (u *CartUsecase) authorizeCartAccess(actor permission.Actor) error {
	d := permission.Authorize(actor, permission.ActionWrite, permission.Resource{
		Kind:    permission.KindCart,
		OwnerID: actor.ID,
	})
	if !d.Allowed {
		return NewAuthorizationError(d.Reason)
	}
	return nil
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, actor permission.Actor) (CartResponse, error) {
	if !actor.Authenticated {
		return CartResponse{}, NewUnauthorizedError()
	}
	if err := u.authorizeCartAccess(actor); err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, actor.ID)
	if err != nil {
		return CartResponse{}, NewInternalError()
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddItem はカートに追加（同一サービスは数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, actor permission.Actor, in AddItemInput) (CartResponse, error) {
	if !actor.Authenticated {
		return CartResponse{}, NewUnauthorizedError()
	}
	if err := u.authorizeCartAccess(actor); err != nil {
		return CartResponse{}, err
	}
	if in.ServiceID <= 0 {
		return CartResponse{}, NewValidationError(CodeValidation, "invalid service_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewValidationError(CodeInvalidQuantity, "quantity must be at least 1")
	}

	// サービスチェック（公開のみ）
	s, err := u.serviceRepo.FindByID(ctx, in.ServiceID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewNotFoundError("service not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError()
	}
	if !s.IsActive {
		return CartResponse{}, NewNotFoundError("service not found")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, actor.ID)
	if err != nil {
		return CartResponse{}, NewInternalError()
	}

	// カート行をロックして加算（同一ユーザーの操作を直列化）
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Carts().LockByUserID(ctx, actor.ID); err != nil {
			return NewInternalError()
		}
		if err := r.CartItems().UpsertAdd(ctx, cart.ID, in.ServiceID, in.Quantity); err != nil {
			return NewInternalError()
		}
		if err := r.Carts().Touch(ctx, cart.ID); err != nil {
			return NewInternalError()
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// UpdateQuantity は数量変更。0以下は削除、1以上はその値に上書き。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, actor permission.Actor, serviceID int64, in UpdateQuantityInput) (CartResponse, error) {
	if !actor.Authenticated {
		return CartResponse{}, NewUnauthorizedError()
	}
	if err := u.authorizeCartAccess(actor); err != nil {
		return CartResponse{}, err
	}
	if serviceID <= 0 {
		return CartResponse{}, NewValidationError(CodeValidation, "invalid service_id")
	}

	if in.Quantity <= 0 {
		// 0以下は削除扱い
		return u.RemoveItem(ctx, actor, serviceID)
	}

	cart, err := u.cartRepo.FindByUserID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewNotFoundError("cart item not found")
	}
	if err != nil {
		return CartResponse{}, NewInternalError()
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Carts().LockByUserID(ctx, actor.ID); err != nil {
			return NewInternalError()
		}
		if err := r.CartItems().SetQuantity(ctx, cart.ID, serviceID, in.Quantity); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("cart item not found")
			}
			return NewInternalError()
		}
		if err := r.Carts().Touch(ctx, cart.ID); err != nil {
			return NewInternalError()
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// RemoveItem は明細削除。無ければno-op（エラーにしない）。
func (u *CartUsecase) RemoveItem(ctx context.Context, actor permission.Actor, serviceID int64) (CartResponse, error) {
	if !actor.Authenticated {
		return CartResponse{}, NewUnauthorizedError()
	}
	if err := u.authorizeCartAccess(actor); err != nil {
		return CartResponse{}, err
	}
	if serviceID <= 0 {
		return CartResponse{}, NewValidationError(CodeValidation, "invalid service_id")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		// カート自体が無いなら消すものも無い
		return CartResponse{Items: []CartItemResponse{}, Total: decimal.Zero}, nil
	}
	if err != nil {
		return CartResponse{}, NewInternalError()
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Carts().LockByUserID(ctx, actor.ID); err != nil {
			return NewInternalError()
		}
		if err := r.CartItems().DeleteByCartAndService(ctx, cart.ID, serviceID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// no-op
				return nil
			}
			return NewInternalError()
		}
		if err := r.Carts().Touch(ctx, cart.ID); err != nil {
			return NewInternalError()
		}
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// cartIDの明細をまとめてCartResponseを作る。
// 価格はスナップショットではなく現在のService価格。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.itemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewInternalError()
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		s, err := u.serviceRepo.FindByID(ctx, it.ServiceID)
		if errors.Is(err, repo.ErrNotFound) {
			// 論理削除済みの明細は表示しない
			continue
		}
		if err != nil {
			return CartResponse{}, NewInternalError()
		}
		if !s.IsActive {
			continue
		}

		subtotal := s.Price.Mul(decimal.NewFromInt(it.Quantity))
		respItems = append(respItems, CartItemResponse{
			ID:        it.ID,
			ServiceID: it.ServiceID,
			Name:      s.Name,
			Price:     s.Price,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})

		total = total.Add(subtotal)
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
