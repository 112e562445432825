package repository

import (
	"context"

	repo "orderapp/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders           repo.OrderRepository
	orderLines       repo.OrderLineRepository
	products         repo.ProductRepository
	suppliers        repo.SupplierRepository
	productSuppliers repo.ProductSupplierRepository
	auditLogs        repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Suppliers() repo.SupplierRepository   { return r.suppliers }
func (r *txReposGorm) ProductSuppliers() repo.ProductSupplierRepository {
	return r.productSuppliers
}
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:           NewOrderGormRepository(tx),
			orderLines:       NewOrderLineGormRepository(tx),
			products:         NewProductGormRepository(tx),
			suppliers:        NewSupplierGormRepository(tx),
			productSuppliers: NewProductSupplierGormRepository(tx),
			auditLogs:        NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}

var (
	_ repo.OrderRepository           = (*OrderGormRepository)(nil)
	_ repo.OrderLineRepository       = (*OrderLineGormRepository)(nil)
	_ repo.ProductRepository         = (*ProductGormRepository)(nil)
	_ repo.SupplierRepository        = (*SupplierGormRepository)(nil)
	_ repo.ProductSupplierRepository = (*ProductSupplierGormRepository)(nil)
	_ repo.AuditLogRepository        = (*AuditLogGormRepository)(nil)
	_ repo.TransactionManager        = (*TxManagerGorm)(nil)
)
