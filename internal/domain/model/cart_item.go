package model

import "time"

// カートの明細。
// (cart_id, service_id) はuniqueで、同じサービスの追加は数量加算になる。
// 価格はここには持たない（カート合計は常に現在価格で計算）。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_service" json:"cart_id"`
	ServiceID int64     `gorm:"not null;uniqueIndex:idx_cart_service" json:"service_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
