package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"orderapp/internal/domain/model"
)

type OrderLineRepository interface {
	Create(ctx context.Context, line model.OrderLine) (model.OrderLine, error)
	FindByID(ctx context.Context, lineID int64) (model.OrderLine, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]OrderLineDetail, error)
	UpdateQuantity(ctx context.Context, lineID int64, quantity int, extendedPrice decimal.Decimal) error
	Delete(ctx context.Context, lineID int64) error
}
