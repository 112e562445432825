package repository

import (
	"context"
	"database/sql"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"

	"gorm.io/gorm"
)

// 注文番号採番用のアドバイザリロックキー（任意の固定値）
const orderNumberLockKey int64 = 7_310_001

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error; err != nil {
		return model.Order{}, translateError(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindDetail(ctx context.Context, orderID int64) (repo.OrderDetail, error) {
	o, err := r.FindByID(ctx, orderID)
	if err != nil {
		return repo.OrderDetail{}, err
	}

	details, err := r.loadDetails(ctx, []model.Order{o})
	if err != nil {
		return repo.OrderDetail{}, err
	}
	return details[0], nil
}

func (r *OrderGormRepository) ListDetails(ctx context.Context, f repo.OrderListFilter) ([]repo.OrderDetail, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	var orders []model.Order
	if err := q.Order("order_number desc").Find(&orders).Error; err != nil {
		return []repo.OrderDetail{}, err
	}
	return r.loadDetails(ctx, orders)
}

// 所有者・明細・商品をまとめて読み込んで組み立てる
func (r *OrderGormRepository) loadDetails(ctx context.Context, orders []model.Order) ([]repo.OrderDetail, error) {
	out := make([]repo.OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	userIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		userIDs = append(userIDs, o.UserID)
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return []repo.OrderDetail{}, err
	}
	usersByID := make(map[int64]model.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	lines, err := listLineDetails(ctx, r.db, orderIDs)
	if err != nil {
		return []repo.OrderDetail{}, err
	}
	linesByOrder := make(map[int64][]repo.OrderLineDetail, len(orders))
	for _, l := range lines {
		linesByOrder[l.Line.OrderID] = append(linesByOrder[l.Line.OrderID], l)
	}

	for _, o := range orders {
		ls := linesByOrder[o.ID]
		if ls == nil {
			ls = []repo.OrderLineDetail{}
		}
		out = append(out, repo.OrderDetail{
			Order: o,
			Owner: usersByID[o.UserID],
			Lines: ls,
		})
	}
	return out, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, translateError(err)
	}
	return order, nil
}

func (r *OrderGormRepository) UpdateNotes(ctx context.Context, orderID int64, notes string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("notes", notes)

	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) MaxOrderNumber(ctx context.Context) (int, bool, error) {
	var current sql.NullInt64
	row := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("MAX(order_number)").
		Row()
	if err := row.Scan(&current); err != nil {
		return 0, false, err
	}
	if !current.Valid {
		return 0, false, nil
	}
	return int(current.Int64), true, nil
}

// トランザクション内で呼ぶこと（commit/rollbackで自動解放）
func (r *OrderGormRepository) LockOrderNumbers(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", orderNumberLockKey).Error
}
