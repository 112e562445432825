package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"orderapp/internal/domain/association"
	"orderapp/internal/domain/model"
	"orderapp/internal/domain/pricing"
	repo "orderapp/internal/repository"
)

type ProductUsecase struct {
	products  repo.ProductRepository
	suppliers repo.SupplierRepository
	links     repo.ProductSupplierRepository
	tx        repo.TransactionManager
	clock     Clock
}

// DI
func NewProductUsecase(
	products repo.ProductRepository,
	suppliers repo.SupplierRepository,
	links repo.ProductSupplierRepository,
	tx repo.TransactionManager,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		products:  products,
		suppliers: suppliers,
		links:     links,
		tx:        tx,
		clock:     clock,
	}
}

type ProductInput struct {
	Name        string
	Description string
	// nilは未入力
	Price       *decimal.Decimal
	ProductType model.ProductType
	SupplierIDs []int64
}

func (in ProductInput) toModel() (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, badRequest("name required")
	}
	if len(name) > 255 {
		return model.Product{}, badRequest("name too long")
	}
	if in.Price == nil {
		return model.Product{}, badRequest("price required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, badRequest("price must be >= 0")
	}
	if in.Price.Round(pricing.CurrencyPlaces).GreaterThan(pricing.MaxUnitPrice()) {
		return model.Product{}, badRequest("price must be <= " + pricing.FormatCurrency(pricing.MaxUnitPrice()))
	}
	pt := in.ProductType
	if pt == "" {
		pt = model.ProductTypeOther
	}
	if !pt.Valid() {
		return model.Product{}, badRequest("invalid product_type")
	}
	for _, id := range in.SupplierIDs {
		if id <= 0 {
			return model.Product{}, badRequest("invalid supplier id")
		}
	}
	return model.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       pricing.RoundCurrency(*in.Price),
		ProductType: pt,
	}, nil
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := u.products.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	byProduct, err := u.links.SuppliersByProductIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p, byProduct[p.ID]))
	}
	return out, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductView, error) {
	if productID <= 0 {
		return ProductView{}, badRequest("invalid product id")
	}
	p, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return ProductView{}, mapRepoError(err, "product not found")
	}
	byProduct, err := u.links.SuppliersByProductIDs(ctx, []int64{p.ID})
	if err != nil {
		return ProductView{}, dbError(err)
	}
	return toProductView(p, byProduct[p.ID]), nil
}

// 仕入先の選択肢（名前順）。productIDが0なら何も選択しない。
func (u *ProductUsecase) SupplierChoices(ctx context.Context, productID int64) ([]SelectOption, error) {
	if productID < 0 {
		return nil, badRequest("invalid product id")
	}
	suppliers, err := u.suppliers.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}

	selected := map[int64]bool{}
	if productID > 0 {
		if _, err := u.products.FindByID(ctx, productID); err != nil {
			return nil, mapRepoError(err, "product not found")
		}
		ids, err := u.links.SupplierIDsByProduct(ctx, productID)
		if err != nil {
			return nil, dbError(err)
		}
		for _, id := range ids {
			selected[id] = true
		}
	}

	out := make([]SelectOption, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, SelectOption{ID: s.ID, Name: s.Name, Selected: selected[s.ID]})
	}
	return out, nil
}

// 指定IDが全部存在するか
func loadSuppliers(ctx context.Context, r repo.TxRepos, ids []int64) ([]model.Supplier, error) {
	if len(ids) == 0 {
		return []model.Supplier{}, nil
	}
	found, err := r.Suppliers().FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbError(err)
	}
	if len(found) != len(ids) {
		return nil, notFound("supplier not found")
	}
	return found, nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, p Principal, in ProductInput) (ProductView, error) {
	if err := requireAdmin(p); err != nil {
		return ProductView{}, err
	}
	m, err := in.toModel()
	if err != nil {
		return ProductView{}, err
	}
	supplierIDs := association.Unique(in.SupplierIDs)

	var out ProductView
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		suppliers, err := loadSuppliers(ctx, r, supplierIDs)
		if err != nil {
			return err
		}

		created, err := r.Products().Create(ctx, m)
		if err != nil {
			return mapRepoError(err, "product not found")
		}
		for _, sid := range supplierIDs {
			if err := r.ProductSuppliers().Add(ctx, created.ID, sid); err != nil {
				return mapRepoError(err, "supplier not found")
			}
		}

		out = toProductView(created, suppliers)
		return writeAudit(ctx, r, u.clock, p, model.AuditActionCreate, model.AuditResourceProduct, created.ID, nil, out)
	})
	if err != nil {
		return ProductView{}, txError(err)
	}
	return out, nil
}

// 項目の更新と仕入先の付け外しを同じトランザクションで行う
func (u *ProductUsecase) UpdateProduct(ctx context.Context, p Principal, productID int64, in ProductInput) (ProductView, error) {
	if err := requireAdmin(p); err != nil {
		return ProductView{}, err
	}
	if productID <= 0 {
		return ProductView{}, badRequest("invalid product id")
	}
	m, err := in.toModel()
	if err != nil {
		return ProductView{}, err
	}
	m.ID = productID
	selected := association.Unique(in.SupplierIDs)

	var out ProductView
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}
		suppliers, err := loadSuppliers(ctx, r, selected)
		if err != nil {
			return err
		}

		if err := r.Products().Update(ctx, m); err != nil {
			return mapRepoError(err, "product not found")
		}

		current, err := r.ProductSuppliers().SupplierIDsByProduct(ctx, productID)
		if err != nil {
			return dbError(err)
		}
		toAdd, toRemove := association.Diff(current, selected)
		for _, sid := range toRemove {
			if err := r.ProductSuppliers().Remove(ctx, productID, sid); err != nil {
				return mapRepoError(err, "supplier not found")
			}
		}
		for _, sid := range toAdd {
			if err := r.ProductSuppliers().Add(ctx, productID, sid); err != nil {
				return mapRepoError(err, "supplier not found")
			}
		}

		m.CreatedAt = before.CreatedAt
		out = toProductView(m, suppliers)
		if err := writeAudit(ctx, r, u.clock, p, model.AuditActionUpdate, model.AuditResourceProduct, productID, before, m); err != nil {
			return err
		}
		if len(toAdd) == 0 && len(toRemove) == 0 {
			return nil
		}
		return writeAudit(ctx, r, u.clock, p, model.AuditActionUpdateAssociation, model.AuditResourceProduct, productID,
			current, associationChange{Added: toAdd, Removed: toRemove})
	})
	if err != nil {
		return ProductView{}, txError(err)
	}
	return out, nil
}

// 注文明細から参照されている商品は消せない（409）
func (u *ProductUsecase) DeleteProduct(ctx context.Context, p Principal, productID int64) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if productID <= 0 {
		return badRequest("invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}
		if err := r.Products().Delete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "product is used by order lines")
			}
			return mapRepoError(err, "product not found")
		}
		return writeAudit(ctx, r, u.clock, p, model.AuditActionDelete, model.AuditResourceProduct, productID, before, nil)
	})
	return txError(err)
}
