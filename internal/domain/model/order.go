package model

import "time"

// 注文ヘッダ。明細は order_details 側が order_id で参照する。
type Order struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber int       `gorm:"not null;uniqueIndex" json:"order_number"`
	OrderDate   time.Time `gorm:"not null;index" json:"order_date"`
	Notes       string    `gorm:"type:text" json:"notes"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
