package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
	"orderapp/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// Repository モック
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, id int64) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindDetail(ctx context.Context, id int64) (repo.OrderDetail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(repo.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderRepoMock) ListDetails(ctx context.Context, f repo.OrderListFilter) ([]repo.OrderDetail, error) {
	args := m.Called(ctx, f)
	d, _ := args.Get(0).([]repo.OrderDetail)
	return d, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (model.Order, error) {
	args := m.Called(ctx, o)
	created, _ := args.Get(0).(model.Order)
	return created, args.Error(1)
}

func (m *OrderRepoMock) UpdateNotes(ctx context.Context, id int64, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *OrderRepoMock) MaxOrderNumber(ctx context.Context) (int, bool, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) LockOrderNumbers(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type OrderLineRepoMock struct{ mock.Mock }

func (m *OrderLineRepoMock) Create(ctx context.Context, l model.OrderLine) (model.OrderLine, error) {
	args := m.Called(ctx, l)
	created, _ := args.Get(0).(model.OrderLine)
	return created, args.Error(1)
}

func (m *OrderLineRepoMock) FindByID(ctx context.Context, id int64) (model.OrderLine, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(model.OrderLine)
	return l, args.Error(1)
}

func (m *OrderLineRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]repo.OrderLineDetail, error) {
	args := m.Called(ctx, orderID)
	d, _ := args.Get(0).([]repo.OrderLineDetail)
	return d, args.Error(1)
}

func (m *OrderLineRepoMock) UpdateQuantity(ctx context.Context, id int64, qty int, ext decimal.Decimal) error {
	args := m.Called(ctx, id, qty, ext)
	return args.Error(0)
}

func (m *OrderLineRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type SupplierRepoMock struct{ mock.Mock }

func (m *SupplierRepoMock) List(ctx context.Context) ([]model.Supplier, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.Supplier)
	return s, args.Error(1)
}

func (m *SupplierRepoMock) FindByID(ctx context.Context, id int64) (model.Supplier, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Supplier)
	return s, args.Error(1)
}

func (m *SupplierRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Supplier, error) {
	args := m.Called(ctx, ids)
	s, _ := args.Get(0).([]model.Supplier)
	return s, args.Error(1)
}

func (m *SupplierRepoMock) Create(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.Supplier)
	return created, args.Error(1)
}

func (m *SupplierRepoMock) Update(ctx context.Context, s model.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SupplierRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type LinkRepoMock struct{ mock.Mock }

func (m *LinkRepoMock) SupplierIDsByProduct(ctx context.Context, productID int64) ([]int64, error) {
	args := m.Called(ctx, productID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *LinkRepoMock) ProductIDsBySupplier(ctx context.Context, supplierID int64) ([]int64, error) {
	args := m.Called(ctx, supplierID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *LinkRepoMock) SuppliersByProductIDs(ctx context.Context, ids []int64) (map[int64][]model.Supplier, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).(map[int64][]model.Supplier)
	return r, args.Error(1)
}

func (m *LinkRepoMock) ProductsBySupplierIDs(ctx context.Context, ids []int64) (map[int64][]model.Product, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).(map[int64][]model.Product)
	return r, args.Error(1)
}

func (m *LinkRepoMock) Add(ctx context.Context, productID, supplierID int64) error {
	args := m.Called(ctx, productID, supplierID)
	return args.Error(0)
}

func (m *LinkRepoMock) Remove(ctx context.Context, productID, supplierID int64) error {
	args := m.Called(ctx, productID, supplierID)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

var (
	_ repo.UserRepository            = (*UserRepoMock)(nil)
	_ repo.OrderRepository           = (*OrderRepoMock)(nil)
	_ repo.OrderLineRepository       = (*OrderLineRepoMock)(nil)
	_ repo.ProductRepository         = (*ProductRepoMock)(nil)
	_ repo.SupplierRepository        = (*SupplierRepoMock)(nil)
	_ repo.ProductSupplierRepository = (*LinkRepoMock)(nil)
	_ repo.AuditLogRepository        = (*AuditRepoMock)(nil)
)

// =====================
// Tx（モックをそのまま渡すだけ）
// =====================

type fakeTxRepos struct {
	orders    *OrderRepoMock
	lines     *OrderLineRepoMock
	products  *ProductRepoMock
	suppliers *SupplierRepoMock
	links     *LinkRepoMock
	audits    *AuditRepoMock
}

func newFakeTxRepos() *fakeTxRepos {
	return &fakeTxRepos{
		orders:    new(OrderRepoMock),
		lines:     new(OrderLineRepoMock),
		products:  new(ProductRepoMock),
		suppliers: new(SupplierRepoMock),
		links:     new(LinkRepoMock),
		audits:    new(AuditRepoMock),
	}
}

func (r *fakeTxRepos) Orders() repo.OrderRepository                     { return r.orders }
func (r *fakeTxRepos) OrderLines() repo.OrderLineRepository             { return r.lines }
func (r *fakeTxRepos) Products() repo.ProductRepository                 { return r.products }
func (r *fakeTxRepos) Suppliers() repo.SupplierRepository               { return r.suppliers }
func (r *fakeTxRepos) ProductSuppliers() repo.ProductSupplierRepository { return r.links }
func (r *fakeTxRepos) AuditLogs() repo.AuditLogRepository               { return r.audits }

func (r *fakeTxRepos) assertExpectations(t *testing.T) {
	t.Helper()
	r.orders.AssertExpectations(t)
	r.lines.AssertExpectations(t)
	r.products.AssertExpectations(t)
	r.suppliers.AssertExpectations(t)
	r.links.AssertExpectations(t)
	r.audits.AssertExpectations(t)
}

type fakeTxManager struct {
	repos *fakeTxRepos
	calls int

	// fnが成功した後のcommitで返すエラー
	commitErr error
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.calls++
	if err := fn(m.repos); err != nil {
		return err
	}
	return m.commitErr
}

var _ repo.TransactionManager = (*fakeTxManager)(nil)

// =====================
// 部品
// =====================

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

var (
	admin     = usecase.Principal{UserID: 1, Role: model.RoleAdmin}
	customer  = usecase.Principal{UserID: 10, Role: model.RoleCustomer}
	otherUser = usecase.Principal{UserID: 20, Role: model.RoleCustomer}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var errDB = errors.New("connection refused")

// =====================
// helper
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError(%d), got %v", status, err)
	}
	if he.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, he.Status, he.Message)
	}
}
