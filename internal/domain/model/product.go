package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeNewHardback   ProductType = "NEW_HARDBACK"
	ProductTypeNewPaperback  ProductType = "NEW_PAPERBACK"
	ProductTypeUsedHardback  ProductType = "USED_HARDBACK"
	ProductTypeUsedPaperback ProductType = "USED_PAPERBACK"
	ProductTypeOther         ProductType = "OTHER"
)

var productTypeLabels = map[ProductType]string{
	ProductTypeNewHardback:   "New Hardback",
	ProductTypeNewPaperback:  "New Paperback",
	ProductTypeUsedHardback:  "Used Hardback",
	ProductTypeUsedPaperback: "Used Paperback",
	ProductTypeOther:         "Other",
}

func (t ProductType) Valid() bool {
	_, ok := productTypeLabels[t]
	return ok
}

// 画面表示用のラベル
func (t ProductType) Label() string {
	return productTypeLabels[t]
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ProductType ProductType     `gorm:"type:varchar(20);not null;default:'OTHER'" json:"product_type"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
