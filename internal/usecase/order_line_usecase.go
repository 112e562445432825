package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"orderapp/internal/domain/model"
	"orderapp/internal/domain/pricing"
	repo "orderapp/internal/repository"
)

type OrderLineUsecase struct {
	orders   repo.OrderRepository
	lines    repo.OrderLineRepository
	products repo.ProductRepository
	tx       repo.TransactionManager
}

func NewOrderLineUsecase(
	orders repo.OrderRepository,
	lines repo.OrderLineRepository,
	products repo.ProductRepository,
	tx repo.TransactionManager,
) *OrderLineUsecase {
	return &OrderLineUsecase{orders: orders, lines: lines, products: products, tx: tx}
}

type AddLineInput struct {
	ProductID int64
	Quantity  int
}

type UpdateLineQuantityInput struct {
	Quantity int
}

// 金額列に入らない明細は書き込む前に弾く
func validateExtendedPrice(ext decimal.Decimal) error {
	if !pricing.FitsAmount(ext) {
		return badRequest("extended price out of range")
	}
	return nil
}

// 数量チェックは読み書きより先に行う
func validateQuantity(q int) error {
	if !model.ValidLineQuantity(q) {
		return badRequest(fmt.Sprintf("quantity must be between %d and %d", model.MinLineQuantity, model.MaxLineQuantity))
	}
	return nil
}

func (u *OrderLineUsecase) ListLines(ctx context.Context, p Principal, orderID int64) ([]OrderLineView, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, badRequest("invalid order id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoError(err, "order not found")
	}
	if err := authorizeOrder(p, o); err != nil {
		return nil, err
	}

	details, err := u.lines.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, dbError(err)
	}
	return toOrderLineViews(details), nil
}

// 明細追加画面の商品リスト
func (u *OrderLineUsecase) ProductChoices(ctx context.Context) ([]SelectOption, error) {
	products, err := u.products.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	out := make([]SelectOption, 0, len(products))
	for _, pr := range products {
		out = append(out, SelectOption{ID: pr.ID, Name: pr.Name})
	}
	return out, nil
}

// 商品の現在価格を単価として明細に写す
func (u *OrderLineUsecase) AddLine(ctx context.Context, p Principal, orderID int64, in AddLineInput) (OrderLineView, error) {
	if err := requireAuthenticated(p); err != nil {
		return OrderLineView{}, err
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return OrderLineView{}, err
	}
	if orderID <= 0 {
		return OrderLineView{}, badRequest("invalid order id")
	}
	if in.ProductID <= 0 {
		return OrderLineView{}, badRequest("invalid product id")
	}

	var out OrderLineView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return mapRepoError(err, "order not found")
		}
		if err := authorizeOrder(p, o); err != nil {
			return err
		}

		product, err := r.Products().FindByID(ctx, in.ProductID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}

		ext := pricing.ExtendedPrice(in.Quantity, product.Price)
		if err := validateExtendedPrice(ext); err != nil {
			return err
		}

		line, err := r.OrderLines().Create(ctx, model.OrderLine{
			OrderID:       o.ID,
			ProductID:     product.ID,
			Quantity:      in.Quantity,
			UnitPrice:     product.Price,
			ExtendedPrice: ext,
		})
		if err != nil {
			return mapRepoError(err, "order line not found")
		}

		out = toOrderLineView(repo.OrderLineDetail{Line: line, Product: product})
		return nil
	})
	if err != nil {
		return OrderLineView{}, txError(err)
	}
	return out, nil
}

// 金額は明細に保存した単価から計算し直す（商品の現在価格は見ない）
func (u *OrderLineUsecase) UpdateLineQuantity(ctx context.Context, p Principal, lineID int64, in UpdateLineQuantityInput) (OrderLineView, error) {
	if err := requireAuthenticated(p); err != nil {
		return OrderLineView{}, err
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return OrderLineView{}, err
	}
	if lineID <= 0 {
		return OrderLineView{}, badRequest("invalid line id")
	}

	var out OrderLineView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.OrderLines().FindByID(ctx, lineID)
		if err != nil {
			return mapRepoError(err, "order line not found")
		}
		o, err := r.Orders().FindByID(ctx, line.OrderID)
		if err != nil {
			return mapRepoError(err, "order not found")
		}
		if err := authorizeOrder(p, o); err != nil {
			return err
		}

		ext := pricing.ExtendedPrice(in.Quantity, line.UnitPrice)
		if err := validateExtendedPrice(ext); err != nil {
			return err
		}
		if err := r.OrderLines().UpdateQuantity(ctx, lineID, in.Quantity, ext); err != nil {
			return mapRepoError(err, "order line not found")
		}
		line.Quantity = in.Quantity
		line.ExtendedPrice = ext

		product, err := r.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}
		out = toOrderLineView(repo.OrderLineDetail{Line: line, Product: product})
		return nil
	})
	if err != nil {
		return OrderLineView{}, txError(err)
	}
	return out, nil
}

// 削除した明細の注文IDを返す（画面を注文詳細へ戻すため）
func (u *OrderLineUsecase) DeleteLine(ctx context.Context, p Principal, lineID int64) (int64, error) {
	if err := requireAuthenticated(p); err != nil {
		return 0, err
	}
	if lineID <= 0 {
		return 0, badRequest("invalid line id")
	}

	var orderID int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		line, err := r.OrderLines().FindByID(ctx, lineID)
		if err != nil {
			return mapRepoError(err, "order line not found")
		}
		o, err := r.Orders().FindByID(ctx, line.OrderID)
		if err != nil {
			return mapRepoError(err, "order not found")
		}
		if err := authorizeOrder(p, o); err != nil {
			return err
		}

		if err := r.OrderLines().Delete(ctx, lineID); err != nil {
			return mapRepoError(err, "order line not found")
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return 0, txError(err)
	}
	return orderID, nil
}
