package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。名前と単価は確定時点のスナップショット。
// あとからServiceの価格を変えても過去の注文には影響しない。
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ServiceID           int64           `gorm:"not null;index" json:"service_id"`
	ServiceNameSnapshot string          `gorm:"type:varchar(255);not null" json:"service_name_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
