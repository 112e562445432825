package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"orderapp/internal/domain/model"
	"orderapp/internal/domain/ordernumber"
	repo "orderapp/internal/repository"
)

const maxNotesLength = 2000

type OrderUsecase struct {
	orders repo.OrderRepository
	tx     repo.TransactionManager
	clock  Clock
}

func NewOrderUsecase(orders repo.OrderRepository, tx repo.TransactionManager, clock Clock) *OrderUsecase {
	return &OrderUsecase{orders: orders, tx: tx, clock: clock}
}

type CreateOrderInput struct {
	Notes string
}

type UpdateOrderNotesInput struct {
	Notes string
}

func validateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return badRequest("notes too long")
	}
	return nil
}

// 管理者は全件、顧客は自分の注文だけ
func (u *OrderUsecase) ListOrders(ctx context.Context, p Principal) ([]OrderView, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}

	var f repo.OrderListFilter
	if !p.IsAdmin() {
		uid := p.UserID
		f.UserID = &uid
	}

	details, err := u.orders.ListDetails(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]OrderView, 0, len(details))
	for _, d := range details {
		out = append(out, toOrderView(d))
	}
	return out, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, p Principal, orderID int64) (OrderView, error) {
	if err := requireAuthenticated(p); err != nil {
		return OrderView{}, err
	}
	if orderID <= 0 {
		return OrderView{}, badRequest("invalid order id")
	}

	d, err := u.orders.FindDetail(ctx, orderID)
	if err != nil {
		return OrderView{}, mapRepoError(err, "order not found")
	}
	if err := authorizeOrder(p, d.Order); err != nil {
		return OrderView{}, err
	}
	return toOrderView(d), nil
}

// 顧客だけが注文を作れる。番号の採番から保存までを1トランザクションで行う。
func (u *OrderUsecase) CreateOrder(ctx context.Context, p Principal, in CreateOrderInput) (OrderView, error) {
	if err := requireAuthenticated(p); err != nil {
		return OrderView{}, err
	}
	if !p.IsCustomer() {
		return OrderView{}, forbidden("only customers can create orders")
	}
	notes := strings.TrimSpace(in.Notes)
	if err := validateNotes(notes); err != nil {
		return OrderView{}, err
	}

	var out OrderView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同時作成で同じ番号を引かないように直列化
		if err := r.Orders().LockOrderNumbers(ctx); err != nil {
			return dbError(err)
		}

		current, found, err := r.Orders().MaxOrderNumber(ctx)
		if err != nil {
			return dbError(err)
		}
		var existing []int
		if found {
			existing = []int{current}
		}

		created, err := r.Orders().Create(ctx, model.Order{
			OrderNumber: ordernumber.Next(existing),
			OrderDate:   u.clock.Now(),
			Notes:       notes,
			UserID:      p.UserID,
		})
		if err != nil {
			return mapRepoError(err, "order not found")
		}

		d, err := r.Orders().FindDetail(ctx, created.ID)
		if err != nil {
			return mapRepoError(err, "order not found")
		}
		out = toOrderView(d)
		return nil
	})
	if err != nil {
		return OrderView{}, txError(err)
	}
	return out, nil
}

// 変えられるのは備考だけ。所有者は変わらない。
func (u *OrderUsecase) UpdateOrderNotes(ctx context.Context, p Principal, orderID int64, in UpdateOrderNotesInput) (OrderView, error) {
	if err := requireAuthenticated(p); err != nil {
		return OrderView{}, err
	}
	if orderID <= 0 {
		return OrderView{}, badRequest("invalid order id")
	}
	notes := strings.TrimSpace(in.Notes)
	if err := validateNotes(notes); err != nil {
		return OrderView{}, err
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderView{}, mapRepoError(err, "order not found")
	}
	if err := authorizeOrder(p, o); err != nil {
		return OrderView{}, err
	}

	if err := u.orders.UpdateNotes(ctx, orderID, notes); err != nil {
		return OrderView{}, mapRepoError(err, "order not found")
	}

	d, err := u.orders.FindDetail(ctx, orderID)
	if err != nil {
		return OrderView{}, mapRepoError(err, "order not found")
	}
	return toOrderView(d), nil
}
