package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/permission"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderUsecase は注文ライフサイクル（チェックアウト〜ステータス遷移）を担う。
type OrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderItemRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, orderRepo: orderRepo, itemRepo: itemRepo}
}

type OrderItemOutput struct {
	ServiceID int64           `json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	Reference  string            `json:"reference"`
	UserID     int64             `json:"user_id"`
	Status     string            `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

type TransitionInput struct {
	Status string
}

// Checkout はカートの中身をそのまま注文に確定する。
// 1トランザクションで、カート行ロック→明細読み→価格スナップショット→
// 注文作成→カート明細クリア まで行う。途中で失敗したら全部巻き戻る。
// 同時に2回呼ばれても、後の方は空になったカートを見てEMPTY_CARTで失敗する。
func (u *OrderUsecase) Checkout(ctx context.Context, actor permission.Actor) (OrderOutput, error) {
	if !actor.Authenticated {
		return OrderOutput{}, NewUnauthorizedError()
	}

	d := permission.Authorize(actor, permission.ActionWrite, permission.Resource{
		Kind:    permission.KindCart,
		OwnerID: actor.ID,
	})
	if !d.Allowed {
		return OrderOutput{}, NewAuthorizationError(d.Reason)
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート行ロック（同一ユーザーのチェックアウトを直列化）
		cart, err := r.Carts().LockByUserID(ctx, actor.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewValidationError(CodeEmptyCart, "cart is empty")
		}
		if err != nil {
			return NewInternalError()
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewInternalError()
		}
		if len(cartItems) == 0 {
			return NewValidationError(CodeEmptyCart, "cart is empty")
		}

		//現在価格をスナップショット
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		total := decimal.Zero
		now := time.Now()

		for _, ci := range cartItems {
			s, err := r.Services().FindByID(ctx, ci.ServiceID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !s.IsActive) {
				return NewValidationError(CodeValidation, "service no longer available")
			}
			if err != nil {
				return NewInternalError()
			}

			orderItems = append(orderItems, model.OrderItem{
				ServiceID:           ci.ServiceID,
				ServiceNameSnapshot: s.Name,
				UnitPriceSnapshot:   s.Price,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})

			total = total.Add(s.Price.Mul(decimal.NewFromInt(ci.Quantity)))
		}

		//注文作成（PENDING）
		created := model.Order{
			Reference:  uuid.NewString(),
			UserID:     actor.ID,
			Status:     model.OrderStatusPending,
			TotalPrice: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		orderID, err := r.Orders().Create(ctx, created)
		if err != nil {
			return NewInternalError()
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewInternalError()
		}

		//カートを空にする（本体は残す）
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewInternalError()
		}
		if err := r.Carts().Touch(ctx, cart.ID); err != nil {
			return NewInternalError()
		}

		created.ID = orderID
		out = toOrderOutput(created, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// Transition はステータス遷移。
// 管理者は隣接ルールに従う全遷移、クライアントは自分の注文の
// PENDING→CANCELLEDだけ（それ以外は所有者でもFORBIDDEN）。
// 同時遷移は条件付きUPDATEで決着し、負けた側はCONFLICTを受け取る。
func (u *OrderUsecase) Transition(ctx context.Context, actor permission.Actor, orderID int64, in TransitionInput) (OrderOutput, error) {
	if !actor.Authenticated {
		return OrderOutput{}, NewUnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError(CodeValidation, "invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(in.Status)
	if !ok {
		return OrderOutput{}, NewValidationError(CodeValidation, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().LockByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return NewInternalError()
		}

		//認可（所有チェックはEvaluator一本）
		d := permission.Authorize(actor, permission.ActionWrite, permission.Resource{
			Kind:    permission.KindOrder,
			OwnerID: o.UserID,
		})
		if !d.Allowed {
			return NewAuthorizationError(d.Reason)
		}

		//クライアントはPENDINGからのキャンセルだけ
		if actor.Role != model.RoleAdmin {
			if newStatus != model.OrderStatusCancelled || o.Status != model.OrderStatusPending {
				return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: "clients may only cancel pending orders"}
			}
		}

		//隣接ルール
		if !o.Status.CanTransitionTo(newStatus) {
			return NewStateError(CodeIllegalTransition, "illegal transition from "+string(o.Status)+" to "+string(newStatus))
		}

		//条件付きUPDATE。負けたらCONFLICT。
		updated, err := r.Orders().UpdateStatusFrom(ctx, orderID, o.Status, newStatus)
		if err != nil {
			return NewInternalError()
		}
		if !updated {
			return NewConflictError("order was modified concurrently")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewInternalError()
		}

		o.Status = newStatus
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// List は管理者なら全件、クライアントなら自分の注文だけ。
func (u *OrderUsecase) List(ctx context.Context, actor permission.Actor, page int, limit int) ([]OrderOutput, error) {
	if !actor.Authenticated {
		return []OrderOutput{}, NewUnauthorizedError()
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var orders []model.Order
	var err error

	if actor.Role == model.RoleAdmin {
		orders, _, err = u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{Page: page, Limit: limit})
	} else {
		orders, _, err = u.orderRepo.ListByUserID(ctx, actor.ID, page, limit)
	}
	if err != nil {
		return []OrderOutput{}, NewInternalError()
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.itemRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, NewInternalError()
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

// ListAdmin はフィルタ付きの管理者一覧。
func (u *OrderUsecase) ListAdmin(ctx context.Context, actor permission.Actor, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if !actor.Authenticated || actor.Role != model.RoleAdmin {
		return []OrderOutput{}, NewAuthorizationError(permission.ReasonInsufficientRole)
	}
	if f.Page < 1 {
		return []OrderOutput{}, NewValidationError(CodeValidation, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewValidationError(CodeValidation, "invalid limit")
	}

	orders, _, err := u.orderRepo.ListAdmin(ctx, f)
	if err != nil {
		return []OrderOutput{}, NewInternalError()
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.itemRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, NewInternalError()
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

// Get は注文詳細。他人の注文はNOT_OWNERで拒否（管理者は全件可）。
func (u *OrderUsecase) Get(ctx context.Context, actor permission.Actor, orderID int64) (OrderOutput, error) {
	if !actor.Authenticated {
		return OrderOutput{}, NewUnauthorizedError()
	}
	if orderID <= 0 {
		return OrderOutput{}, NewValidationError(CodeValidation, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewNotFoundError("order not found")
	}
	if err != nil {
		return OrderOutput{}, NewInternalError()
	}

	d := permission.Authorize(actor, permission.ActionRead, permission.Resource{
		Kind:    permission.KindOrder,
		OwnerID: o.UserID,
	})
	if !d.Allowed {
		return OrderOutput{}, NewAuthorizationError(d.Reason)
	}

	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewInternalError()
	}

	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ServiceID: it.ServiceID,
			Name:      it.ServiceNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		Reference:  o.Reference,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Items:      outItems,
	}
}
