package repository

import (
	"context"

	"orderapp/internal/domain/model"
)

// 商品⇔仕入先の関連。1行で両方向を表す。
type ProductSupplierRepository interface {
	SupplierIDsByProduct(ctx context.Context, productID int64) ([]int64, error)
	ProductIDsBySupplier(ctx context.Context, supplierID int64) ([]int64, error)

	// 一覧表示用にまとめて引く（キーが無い＝関連なし）
	SuppliersByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]model.Supplier, error)
	ProductsBySupplierIDs(ctx context.Context, supplierIDs []int64) (map[int64][]model.Product, error)

	Add(ctx context.Context, productID, supplierID int64) error
	Remove(ctx context.Context, productID, supplierID int64) error
}
