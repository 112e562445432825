package repository

import (
	"context"

	"orderapp/internal/domain/model"
)

type SupplierRepository interface {
	// 名前順
	List(ctx context.Context) ([]model.Supplier, error)
	FindByID(ctx context.Context, id int64) (model.Supplier, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Supplier, error)

	Create(ctx context.Context, s model.Supplier) (model.Supplier, error)
	Update(ctx context.Context, s model.Supplier) error
	Delete(ctx context.Context, id int64) error
}
