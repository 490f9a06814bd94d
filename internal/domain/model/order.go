package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus は入力文字列を検証して返す。
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress,
		OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// IsTerminal は終端ステータス（それ以上遷移できない）かどうか。
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo はステータスの隣接関係を判定する。
// PENDING → CONFIRMED → IN_PROGRESS → COMPLETED の直列と、
// 非終端からのCANCELLEDだけを許す。飛び級は不可。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return next == OrderStatusInProgress
	case OrderStatusInProgress:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// チェックアウト時にカートから作られ、以後はstatus以外不変。
// TotalPriceは確定時のスナップショット合計で、再計算しない。
type Order struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference  string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"reference"`
	UserID     int64           `gorm:"not null;index" json:"user_id"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
