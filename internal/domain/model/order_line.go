package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 1000
)

// 注文明細
// 単価は注文時点の商品価格を保存し、後から商品価格が変わっても再計算しない。
type OrderLine struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64           `gorm:"not null;index" json:"order_id"`
	ProductID     int64           `gorm:"not null;index" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	ExtendedPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"extended_price"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (OrderLine) TableName() string {
	return "order_details"
}

// 数量が許容範囲か
func ValidLineQuantity(q int) bool {
	return q >= MinLineQuantity && q <= MaxLineQuantity
}
