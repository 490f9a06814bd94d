package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カテゴリ削除時はSET NULLでサービスは残す
type Service struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID      *int64          `gorm:"index" json:"category_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ProviderName    string          `gorm:"type:varchar(255)" json:"provider_name"`
	DurationMinutes int64           `gorm:"not null;default:60" json:"duration_minutes"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}
