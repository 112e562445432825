package model

// 商品と仕入先の多対多。1行で両方向を表すので、どちらから追加しても整合する。
type ProductSupplier struct {
	ProductID  int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	SupplierID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"supplier_id"`
}

func (ProductSupplier) TableName() string {
	return "product_suppliers"
}
