package usecase

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"orderapp/internal/domain/model"
	"orderapp/internal/domain/pricing"
	repo "orderapp/internal/repository"
)

// 画面・APIに返す形。スライスは空でもnilにしない。

type UserView struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
}

type OrderLineView struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ExtendedPrice decimal.Decimal `json:"extended_price"`
}

// 金額は小数2桁の文字列で出す
func (v OrderLineView) MarshalJSON() ([]byte, error) {
	type plain OrderLineView
	return json.Marshal(struct {
		plain
		UnitPrice     string `json:"unit_price"`
		ExtendedPrice string `json:"extended_price"`
	}{
		plain:         plain(v),
		UnitPrice:     pricing.FormatCurrency(v.UnitPrice),
		ExtendedPrice: pricing.FormatCurrency(v.ExtendedPrice),
	})
}

type OrderView struct {
	ID          int64           `json:"id"`
	OrderNumber int             `json:"order_number"`
	OrderDate   time.Time       `json:"order_date"`
	Notes       string          `json:"notes"`
	UserID      int64           `json:"user_id"`
	OwnerName   string          `json:"owner_name"`
	Lines       []OrderLineView `json:"lines"`
	Summary     pricing.Summary `json:"summary"`
}

type SupplierRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductView struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Price            decimal.Decimal   `json:"price"`
	ProductType      model.ProductType `json:"product_type"`
	ProductTypeLabel string            `json:"product_type_label"`
	Suppliers        []SupplierRef     `json:"suppliers"`
}

func (v ProductView) MarshalJSON() ([]byte, error) {
	type plain ProductView
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{
		plain: plain(v),
		Price: pricing.FormatCurrency(v.Price),
	})
}

type SupplierView struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phone_number"`
	Products    []ProductRef `json:"products"`
}

// セレクトボックス用
type SelectOption struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

func toUserView(u *model.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  model.FullName(*u),
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}

func toOrderLineView(d repo.OrderLineDetail) OrderLineView {
	return OrderLineView{
		ID:            d.Line.ID,
		OrderID:       d.Line.OrderID,
		ProductID:     d.Line.ProductID,
		ProductName:   d.Product.Name,
		Quantity:      d.Line.Quantity,
		UnitPrice:     d.Line.UnitPrice,
		ExtendedPrice: d.Line.ExtendedPrice,
	}
}

func toOrderLineViews(details []repo.OrderLineDetail) []OrderLineView {
	out := make([]OrderLineView, 0, len(details))
	for _, d := range details {
		out = append(out, toOrderLineView(d))
	}
	return out
}

// 合計は明細が揃った状態からだけ計算する
func toOrderView(d repo.OrderDetail) OrderView {
	lines := make([]model.OrderLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, l.Line)
	}
	return OrderView{
		ID:          d.Order.ID,
		OrderNumber: d.Order.OrderNumber,
		OrderDate:   d.Order.OrderDate,
		Notes:       d.Order.Notes,
		UserID:      d.Order.UserID,
		OwnerName:   model.FullName(d.Owner),
		Lines:       toOrderLineViews(d.Lines),
		Summary:     pricing.Summarize(lines),
	}
}

func toProductView(p model.Product, suppliers []model.Supplier) ProductView {
	refs := make([]SupplierRef, 0, len(suppliers))
	for _, s := range suppliers {
		refs = append(refs, SupplierRef{ID: s.ID, Name: s.Name})
	}
	return ProductView{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		ProductType:      p.ProductType,
		ProductTypeLabel: p.ProductType.Label(),
		Suppliers:        refs,
	}
}

func toSupplierView(s model.Supplier, products []model.Product) SupplierView {
	refs := make([]ProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, ProductRef{ID: p.ID, Name: p.Name})
	}
	return SupplierView{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		Products:    refs,
	}
}
