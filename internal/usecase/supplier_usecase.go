package usecase

import (
	"context"
	"strings"

	"orderapp/internal/domain/association"
	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
	"orderapp/internal/validator"
)

// 仕入先の管理（管理者のみ）
type SupplierUsecase struct {
	suppliers repo.SupplierRepository
	links     repo.ProductSupplierRepository
	tx        repo.TransactionManager
	clock     Clock
}

func NewSupplierUsecase(
	suppliers repo.SupplierRepository,
	links repo.ProductSupplierRepository,
	tx repo.TransactionManager,
	clock Clock,
) *SupplierUsecase {
	return &SupplierUsecase{suppliers: suppliers, links: links, tx: tx, clock: clock}
}

type SupplierInput struct {
	Name        string
	Email       string
	PhoneNumber string
	ProductIDs  []int64
}

func (in SupplierInput) toModel() (model.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.PhoneNumber)

	if name == "" {
		return model.Supplier{}, badRequest("name required")
	}
	if len(name) > 255 {
		return model.Supplier{}, badRequest("name too long")
	}
	if email == "" {
		return model.Supplier{}, badRequest("email required")
	}
	if !validator.IsEmail(email) {
		return model.Supplier{}, badRequest("email must be a valid email")
	}
	if phone == "" {
		return model.Supplier{}, badRequest("phone_number required")
	}
	if !validator.IsPhone(phone) {
		return model.Supplier{}, badRequest("phone_number must be a valid phone number")
	}
	for _, id := range in.ProductIDs {
		if id <= 0 {
			return model.Supplier{}, badRequest("invalid product id")
		}
	}
	return model.Supplier{Name: name, Email: email, PhoneNumber: phone}, nil
}

func (u *SupplierUsecase) ListSuppliers(ctx context.Context, p Principal) ([]SupplierView, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	suppliers, err := u.suppliers.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}

	ids := make([]int64, 0, len(suppliers))
	for _, s := range suppliers {
		ids = append(ids, s.ID)
	}
	bySupplier, err := u.links.ProductsBySupplierIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]SupplierView, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, toSupplierView(s, bySupplier[s.ID]))
	}
	return out, nil
}

func (u *SupplierUsecase) GetSupplier(ctx context.Context, p Principal, supplierID int64) (SupplierView, error) {
	if err := requireAdmin(p); err != nil {
		return SupplierView{}, err
	}
	if supplierID <= 0 {
		return SupplierView{}, badRequest("invalid supplier id")
	}
	s, err := u.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return SupplierView{}, mapRepoError(err, "supplier not found")
	}
	bySupplier, err := u.links.ProductsBySupplierIDs(ctx, []int64{s.ID})
	if err != nil {
		return SupplierView{}, dbError(err)
	}
	return toSupplierView(s, bySupplier[s.ID]), nil
}

func loadProducts(ctx context.Context, r repo.TxRepos, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	found, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}
	if len(found) != len(ids) {
		return nil, notFound("product not found")
	}
	return found, nil
}

func (u *SupplierUsecase) CreateSupplier(ctx context.Context, p Principal, in SupplierInput) (SupplierView, error) {
	if err := requireAdmin(p); err != nil {
		return SupplierView{}, err
	}
	m, err := in.toModel()
	if err != nil {
		return SupplierView{}, err
	}
	productIDs := association.Unique(in.ProductIDs)

	var out SupplierView
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := loadProducts(ctx, r, productIDs)
		if err != nil {
			return err
		}

		created, err := r.Suppliers().Create(ctx, m)
		if err != nil {
			return mapRepoError(err, "supplier not found")
		}
		for _, pid := range productIDs {
			if err := r.ProductSuppliers().Add(ctx, pid, created.ID); err != nil {
				return mapRepoError(err, "product not found")
			}
		}

		out = toSupplierView(created, products)
		return writeAudit(ctx, r, u.clock, p, model.AuditActionCreate, model.AuditResourceSupplier, created.ID, nil, out)
	})
	if err != nil {
		return SupplierView{}, txError(err)
	}
	return out, nil
}

func (u *SupplierUsecase) UpdateSupplier(ctx context.Context, p Principal, supplierID int64, in SupplierInput) (SupplierView, error) {
	if err := requireAdmin(p); err != nil {
		return SupplierView{}, err
	}
	if supplierID <= 0 {
		return SupplierView{}, badRequest("invalid supplier id")
	}
	m, err := in.toModel()
	if err != nil {
		return SupplierView{}, err
	}
	m.ID = supplierID
	selected := association.Unique(in.ProductIDs)

	var out SupplierView
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Suppliers().FindByID(ctx, supplierID)
		if err != nil {
			return mapRepoError(err, "supplier not found")
		}
		products, err := loadProducts(ctx, r, selected)
		if err != nil {
			return err
		}

		if err := r.Suppliers().Update(ctx, m); err != nil {
			return mapRepoError(err, "supplier not found")
		}

		current, err := r.ProductSuppliers().ProductIDsBySupplier(ctx, supplierID)
		if err != nil {
			return dbError(err)
		}
		toAdd, toRemove := association.Diff(current, selected)
		for _, pid := range toRemove {
			if err := r.ProductSuppliers().Remove(ctx, pid, supplierID); err != nil {
				return mapRepoError(err, "product not found")
			}
		}
		for _, pid := range toAdd {
			if err := r.ProductSuppliers().Add(ctx, pid, supplierID); err != nil {
				return mapRepoError(err, "product not found")
			}
		}

		m.CreatedAt = before.CreatedAt
		out = toSupplierView(m, products)
		if err := writeAudit(ctx, r, u.clock, p, model.AuditActionUpdate, model.AuditResourceSupplier, supplierID, before, m); err != nil {
			return err
		}
		if len(toAdd) == 0 && len(toRemove) == 0 {
			return nil
		}
		return writeAudit(ctx, r, u.clock, p, model.AuditActionUpdateAssociation, model.AuditResourceSupplier, supplierID,
			current, associationChange{Added: toAdd, Removed: toRemove})
	})
	if err != nil {
		return SupplierView{}, txError(err)
	}
	return out, nil
}

// 関連（product_suppliers）はカスケードで消える
func (u *SupplierUsecase) DeleteSupplier(ctx context.Context, p Principal, supplierID int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if supplierID <= 0 {
		return badRequest("invalid supplier id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Suppliers().FindByID(ctx, supplierID)
		if err != nil {
			return mapRepoError(err, "supplier not found")
		}
		if err := r.Suppliers().Delete(ctx, supplierID); err != nil {
			return mapRepoError(err, "supplier not found")
		}
		return writeAudit(ctx, r, u.clock, p, model.AuditActionDelete, model.AuditResourceSupplier, supplierID, before, nil)
	})
	return txError(err)
}
