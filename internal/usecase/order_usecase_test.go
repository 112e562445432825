package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
	"orderapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderUsecase() (*usecase.OrderUsecase, *OrderRepoMock, *fakeTxManager) {
	orders := new(OrderRepoMock)
	txm := &fakeTxManager{repos: newFakeTxRepos()}
	return usecase.NewOrderUsecase(orders, txm, fixedClock{now: testNow}), orders, txm
}

func sampleDetail(orderID, ownerID int64) repo.OrderDetail {
	return repo.OrderDetail{
		Order: model.Order{ID: orderID, OrderNumber: 1001, OrderDate: testNow, Notes: "gift", UserID: ownerID},
		Owner: model.User{ID: ownerID, FirstName: "Ada", LastName: "Lovelace"},
		Lines: []repo.OrderLineDetail{
			{
				Line:    model.OrderLine{ID: 1, OrderID: orderID, ProductID: 7, Quantity: 2, UnitPrice: dec("10.00"), ExtendedPrice: dec("20.00")},
				Product: model.Product{ID: 7, Name: "Dune"},
			},
			{
				Line:    model.OrderLine{ID: 2, OrderID: orderID, ProductID: 8, Quantity: 1, UnitPrice: dec("5.00"), ExtendedPrice: dec("5.00")},
				Product: model.Product{ID: 8, Name: "Emma"},
			},
		},
	}
}

// =====================
// List / Get
// =====================

func TestOrderUsecase_ListOrders_AdminSeesAll(t *testing.T) {
	uc, orders, _ := newOrderUsecase()

	orders.On("ListDetails", mock.Anything, repo.OrderListFilter{}).
		Return([]repo.OrderDetail{sampleDetail(1, 10), sampleDetail(2, 20)}, nil)

	out, err := uc.ListOrders(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	orders.AssertExpectations(t)
}

func TestOrderUsecase_ListOrders_CustomerSeesOwnOnly(t *testing.T) {
	uc, orders, _ := newOrderUsecase()

	orders.On("ListDetails", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.UserID != nil && *f.UserID == customer.UserID
	})).Return([]repo.OrderDetail{sampleDetail(1, 10)}, nil)

	out, err := uc.ListOrders(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, customer.UserID, out[0].UserID)
	orders.AssertExpectations(t)
}

func TestOrderUsecase_ListOrders_EmptyIsNotNil(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("ListDetails", mock.Anything, mock.Anything).Return(nil, nil)

	out, err := uc.ListOrders(context.Background(), customer)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestOrderUsecase_ListOrders_Unauthenticated(t *testing.T) {
	uc, _, _ := newOrderUsecase()

	_, err := uc.ListOrders(context.Background(), usecase.Principal{})
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestOrderUsecase_GetOrder_ComputesSummary(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindDetail", mock.Anything, int64(5)).Return(sampleDetail(5, customer.UserID), nil)

	out, err := uc.GetOrder(context.Background(), customer, 5)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", out.OwnerName)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, "Dune", out.Lines[0].ProductName)
	assert.Equal(t, "25.00", out.Summary.Subtotal.StringFixed(2))
	assert.Equal(t, "2.06", out.Summary.Tax.StringFixed(2))
	assert.Equal(t, "27.06", out.Summary.Total.StringFixed(2))
}

func TestOrderUsecase_GetOrder_JSONMoneyHasTwoPlaces(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	d := sampleDetail(5, customer.UserID)
	d.Lines = d.Lines[:1]
	d.Lines[0].Line.UnitPrice = dec("0.8")
	d.Lines[0].Line.ExtendedPrice = dec("1.6")
	orders.On("FindDetail", mock.Anything, int64(5)).Return(d, nil)

	out, err := uc.GetOrder(context.Background(), customer, 5)
	require.NoError(t, err)

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var got struct {
		Lines []struct {
			ProductName   string `json:"product_name"`
			Quantity      int    `json:"quantity"`
			UnitPrice     string `json:"unit_price"`
			ExtendedPrice string `json:"extended_price"`
		} `json:"lines"`
		Summary map[string]string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Dune", got.Lines[0].ProductName)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, "0.80", got.Lines[0].UnitPrice)
	assert.Equal(t, "1.60", got.Lines[0].ExtendedPrice)
	assert.Equal(t, map[string]string{"subtotal": "1.60", "tax": "0.13", "total": "1.73"}, got.Summary)
}

func TestOrderUsecase_GetOrder_OtherCustomersOrderIsForbidden(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindDetail", mock.Anything, int64(5)).Return(sampleDetail(5, customer.UserID), nil)

	_, err := uc.GetOrder(context.Background(), otherUser, 5)
	assertStatus(t, err, http.StatusForbidden)
	assertErrContains(t, err, "this is not your order")
}

func TestOrderUsecase_GetOrder_AdminCanReadAnyOrder(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindDetail", mock.Anything, int64(5)).Return(sampleDetail(5, customer.UserID), nil)

	out, err := uc.GetOrder(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.ID)
}

func TestOrderUsecase_GetOrder_NotFound(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindDetail", mock.Anything, int64(99)).Return(repo.OrderDetail{}, repo.ErrNotFound)

	_, err := uc.GetOrder(context.Background(), customer, 99)
	assertStatus(t, err, http.StatusNotFound)
}

func TestOrderUsecase_GetOrder_DBErrorCarriesDetail(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindDetail", mock.Anything, int64(5)).Return(repo.OrderDetail{}, errDB)

	_, err := uc.GetOrder(context.Background(), customer, 5)
	assertStatus(t, err, http.StatusInternalServerError)
	assertErrContains(t, err, "db error: connection refused")
}

// =====================
// Create
// =====================

func TestOrderUsecase_CreateOrder_AdminIsForbidden(t *testing.T) {
	uc, _, txm := newOrderUsecase()

	_, err := uc.CreateOrder(context.Background(), admin, usecase.CreateOrderInput{})
	assertStatus(t, err, http.StatusForbidden)
	assert.Equal(t, 0, txm.calls)
}

func TestOrderUsecase_CreateOrder_AllocatesNextNumber(t *testing.T) {
	cases := []struct {
		name    string
		current int
		found   bool
		want    int
	}{
		{name: "first order", current: 0, found: false, want: 1001},
		{name: "after existing", current: 1500, found: true, want: 1501},
		{name: "legacy low numbers", current: 3, found: true, want: 1001},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _, txm := newOrderUsecase()
			r := txm.repos

			r.orders.On("LockOrderNumbers", mock.Anything).Return(nil).Once()
			r.orders.On("MaxOrderNumber", mock.Anything).Return(tc.current, tc.found, nil).Once()
			r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
				return o.OrderNumber == tc.want &&
					o.UserID == customer.UserID &&
					o.OrderDate.Equal(testNow) &&
					o.Notes == "leave at door"
			})).Return(model.Order{ID: 42, OrderNumber: tc.want, UserID: customer.UserID}, nil).Once()
			r.orders.On("FindDetail", mock.Anything, int64(42)).Return(repo.OrderDetail{
				Order: model.Order{ID: 42, OrderNumber: tc.want, OrderDate: testNow, Notes: "leave at door", UserID: customer.UserID},
				Owner: model.User{ID: customer.UserID, FirstName: "Ada", LastName: "Lovelace"},
			}, nil).Once()

			out, err := uc.CreateOrder(context.Background(), customer, usecase.CreateOrderInput{Notes: "  leave at door "})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.OrderNumber)
			assert.NotNil(t, out.Lines)
			assert.Equal(t, "0.00", out.Summary.Total.StringFixed(2))
			assert.Equal(t, 1, txm.calls)
			r.assertExpectations(t)
		})
	}
}

func TestOrderUsecase_CreateOrder_DuplicateNumberIsConflict(t *testing.T) {
	uc, _, txm := newOrderUsecase()
	r := txm.repos

	r.orders.On("LockOrderNumbers", mock.Anything).Return(nil)
	r.orders.On("MaxOrderNumber", mock.Anything).Return(1001, true, nil)
	r.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{}, repo.ErrConflict)

	_, err := uc.CreateOrder(context.Background(), customer, usecase.CreateOrderInput{})
	assertStatus(t, err, http.StatusConflict)
}

func TestOrderUsecase_CreateOrder_LockFailureStopsBeforeInsert(t *testing.T) {
	uc, _, txm := newOrderUsecase()
	r := txm.repos
	r.orders.On("LockOrderNumbers", mock.Anything).Return(errDB)

	_, err := uc.CreateOrder(context.Background(), customer, usecase.CreateOrderInput{})
	assertStatus(t, err, http.StatusInternalServerError)
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_CreateOrder_CommitFailureIsDBError(t *testing.T) {
	uc, _, txm := newOrderUsecase()
	r := txm.repos
	txm.commitErr = errDB

	r.orders.On("LockOrderNumbers", mock.Anything).Return(nil)
	r.orders.On("MaxOrderNumber", mock.Anything).Return(0, false, nil)
	r.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 42, OrderNumber: 1001}, nil)
	r.orders.On("FindDetail", mock.Anything, int64(42)).Return(repo.OrderDetail{Order: model.Order{ID: 42}}, nil)

	_, err := uc.CreateOrder(context.Background(), customer, usecase.CreateOrderInput{})
	assertStatus(t, err, http.StatusInternalServerError)
	assertErrContains(t, err, "db error: connection refused")
}

// =====================
// Update notes
// =====================

func TestOrderUsecase_UpdateOrderNotes_OwnerCanEdit(t *testing.T) {
	uc, orders, _ := newOrderUsecase()

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: customer.UserID}, nil)
	orders.On("UpdateNotes", mock.Anything, int64(5), "ring twice").Return(nil)
	d := sampleDetail(5, customer.UserID)
	d.Order.Notes = "ring twice"
	orders.On("FindDetail", mock.Anything, int64(5)).Return(d, nil)

	out, err := uc.UpdateOrderNotes(context.Background(), customer, 5, usecase.UpdateOrderNotesInput{Notes: "ring twice"})
	require.NoError(t, err)
	assert.Equal(t, "ring twice", out.Notes)
	assert.Equal(t, customer.UserID, out.UserID)
	orders.AssertExpectations(t)
}

func TestOrderUsecase_UpdateOrderNotes_OtherCustomerCannotEdit(t *testing.T) {
	uc, orders, _ := newOrderUsecase()
	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: customer.UserID}, nil)

	_, err := uc.UpdateOrderNotes(context.Background(), otherUser, 5, usecase.UpdateOrderNotesInput{Notes: "mine now"})
	assertStatus(t, err, http.StatusForbidden)
	orders.AssertNotCalled(t, "UpdateNotes", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateOrderNotes_TooLong(t *testing.T) {
	uc, _, _ := newOrderUsecase()
	long := make([]rune, 2001)
	for i := range long {
		long[i] = 'あ'
	}

	_, err := uc.UpdateOrderNotes(context.Background(), customer, 5, usecase.UpdateOrderNotesInput{Notes: string(long)})
	assertStatus(t, err, http.StatusBadRequest)
}
