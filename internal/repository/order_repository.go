package repository

import (
	"context"

	"orderapp/internal/domain/model"
)

// 明細＋商品
type OrderLineDetail struct {
	Line    model.OrderLine
	Product model.Product
}

// 注文＋所有者＋明細（商品込み）。合計計算の前に必ずここまで読み込む。
type OrderDetail struct {
	Order model.Order
	Owner model.User
	Lines []OrderLineDetail
}

type OrderListFilter struct {
	// nilなら全ユーザー（管理者）
	UserID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindDetail(ctx context.Context, orderID int64) (OrderDetail, error)
	ListDetails(ctx context.Context, f OrderListFilter) ([]OrderDetail, error)

	Create(ctx context.Context, order model.Order) (model.Order, error)
	// 備考だけを更新（所有者は変えない）
	UpdateNotes(ctx context.Context, orderID int64, notes string) error

	// 採番用。注文が1件も無ければ found=false。
	MaxOrderNumber(ctx context.Context) (current int, found bool, err error)
	// 採番をトランザクション終了まで直列化する
	LockOrderNumbers(ctx context.Context) error
}
