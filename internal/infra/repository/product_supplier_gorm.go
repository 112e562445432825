package repository

import (
	"context"

	"orderapp/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSupplierGormRepository struct {
	db *gorm.DB
}

func NewProductSupplierGormRepository(db *gorm.DB) *ProductSupplierGormRepository {
	return &ProductSupplierGormRepository{db: db}
}

func (r *ProductSupplierGormRepository) SupplierIDsByProduct(ctx context.Context, productID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.WithContext(ctx).
		Model(&model.ProductSupplier{}).
		Where("product_id = ?", productID).
		Order("supplier_id asc").
		Pluck("supplier_id", &ids).Error; err != nil {
		return []int64{}, err
	}
	return ids, nil
}

func (r *ProductSupplierGormRepository) ProductIDsBySupplier(ctx context.Context, supplierID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.WithContext(ctx).
		Model(&model.ProductSupplier{}).
		Where("supplier_id = ?", supplierID).
		Order("product_id asc").
		Pluck("product_id", &ids).Error; err != nil {
		return []int64{}, err
	}
	return ids, nil
}

type productSupplierRow struct {
	model.Supplier
	LinkProductID int64
}

// 商品ごとの仕入先（名前順）
func (r *ProductSupplierGormRepository) SuppliersByProductIDs(ctx context.Context, productIDs []int64) (map[int64][]model.Supplier, error) {
	out := make(map[int64][]model.Supplier, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []productSupplierRow
	if err := r.db.WithContext(ctx).
		Table("suppliers").
		Select("suppliers.*, product_suppliers.product_id AS link_product_id").
		Joins("join product_suppliers on product_suppliers.supplier_id = suppliers.id").
		Where("product_suppliers.product_id IN ?", productIDs).
		Order("suppliers.name asc").
		Order("suppliers.id asc").
		Scan(&rows).Error; err != nil {
		return out, err
	}

	for _, row := range rows {
		out[row.LinkProductID] = append(out[row.LinkProductID], row.Supplier)
	}
	return out, nil
}

type supplierProductRow struct {
	model.Product
	LinkSupplierID int64
}

// 仕入先ごとの商品（名前順）
func (r *ProductSupplierGormRepository) ProductsBySupplierIDs(ctx context.Context, supplierIDs []int64) (map[int64][]model.Product, error) {
	out := make(map[int64][]model.Product, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return out, nil
	}

	var rows []supplierProductRow
	if err := r.db.WithContext(ctx).
		Table("products").
		Select("products.*, product_suppliers.supplier_id AS link_supplier_id").
		Joins("join product_suppliers on product_suppliers.product_id = products.id").
		Where("product_suppliers.supplier_id IN ?", supplierIDs).
		Order("products.name asc").
		Order("products.id asc").
		Scan(&rows).Error; err != nil {
		return out, err
	}

	for _, row := range rows {
		out[row.LinkSupplierID] = append(out[row.LinkSupplierID], row.Product)
	}
	return out, nil
}

// 既にあれば何もしない
func (r *ProductSupplierGormRepository) Add(ctx context.Context, productID, supplierID int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProductSupplier{ProductID: productID, SupplierID: supplierID}).Error
	return translateError(err)
}

// 無ければ何もしない
func (r *ProductSupplierGormRepository) Remove(ctx context.Context, productID, supplierID int64) error {
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		Delete(&model.ProductSupplier{}).Error
	return translateError(err)
}
