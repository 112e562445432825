package repository

import (
	"context"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderLineGormRepository struct {
	db *gorm.DB
}

func NewOrderLineGormRepository(db *gorm.DB) *OrderLineGormRepository {
	return &OrderLineGormRepository{db: db}
}

func (r *OrderLineGormRepository) Create(ctx context.Context, line model.OrderLine) (model.OrderLine, error) {
	if err := r.db.WithContext(ctx).Create(&line).Error; err != nil {
		return model.OrderLine{}, translateError(err)
	}
	return line, nil
}

func (r *OrderLineGormRepository) FindByID(ctx context.Context, lineID int64) (model.OrderLine, error) {
	var l model.OrderLine
	if err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&l).Error; err != nil {
		return model.OrderLine{}, translateError(err)
	}
	return l, nil
}

func (r *OrderLineGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]repo.OrderLineDetail, error) {
	return listLineDetails(ctx, r.db, []int64{orderID})
}

// 数量と、保存済み単価から計算した ExtendedPrice だけを書き換える
func (r *OrderLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, quantity int, extendedPrice decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.OrderLine{}).
		Where("id = ?", lineID).
		Updates(map[string]interface{}{
			"quantity":       quantity,
			"extended_price": extendedPrice,
		})

	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderLineGormRepository) Delete(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.OrderLine{}, lineID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細と商品を結合して返す（id順）
func listLineDetails(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]repo.OrderLineDetail, error) {
	out := []repo.OrderLineDetail{}
	if len(orderIDs) == 0 {
		return out, nil
	}

	var lines []model.OrderLine
	if err := db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return out, err
	}
	if len(lines) == 0 {
		return out, nil
	}

	productIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}

	var products []model.Product
	if err := db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return out, err
	}
	productsByID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	for _, l := range lines {
		out = append(out, repo.OrderLineDetail{
			Line:    l,
			Product: productsByID[l.ProductID],
		})
	}
	return out, nil
}
