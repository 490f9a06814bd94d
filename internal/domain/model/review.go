package model

import "time"

// レビューはCOMPLETEDの注文に対してのみ作成できる。
// (user_id, order_id, service_id) はuniqueで、作成後は不変。
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_user_order_service" json:"user_id"`
	OrderID   int64     `gorm:"not null;uniqueIndex:idx_user_order_service" json:"order_id"`
	ServiceID int64     `gorm:"not null;uniqueIndex:idx_user_order_service;index" json:"service_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
