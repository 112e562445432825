package handler

import (
	"net/http"

	"orderapp/internal/config"
	"orderapp/internal/domain/model"
	"orderapp/internal/middleware"
	"orderapp/internal/repository"
	"orderapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type orderNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type addLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1,max=1000"`
}

type lineQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=1,max=1000"`
}

type deleteLineResponse struct {
	OrderID int64 `json:"order_id"`
}

// /orders と /order-lines（ログイン必須）
type OrderHandler struct {
	orders *usecase.OrderUsecase
	lines  *usecase.OrderLineUsecase
}

// DI
func NewOrderHandler(orders *usecase.OrderUsecase, lines *usecase.OrderLineUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, lines: lines}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	mw := authMiddlewares(cfg, userRepo)
	customerOnly := append(authMiddlewares(cfg, userRepo), middleware.RoleGuard(model.RoleCustomer))

	e.GET("/orders", h.list, mw...)
	e.POST("/orders", h.create, customerOnly...)
	e.GET("/orders/:id", h.detail, mw...)
	e.PATCH("/orders/:id", h.updateNotes, mw...)

	e.GET("/orders/:id/lines", h.listLines, mw...)
	e.POST("/orders/:id/lines", h.addLine, mw...)
	e.GET("/order-lines/product-choices", h.productChoices, mw...)
	e.PATCH("/order-lines/:id", h.updateLine, mw...)
	e.DELETE("/order-lines/:id", h.deleteLine, mw...)
}

func (h *OrderHandler) list(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.orders.ListOrders(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req orderNotesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.orders.CreateOrder(c.Request().Context(), p, usecase.CreateOrderInput{Notes: req.Notes})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.orders.GetOrder(c.Request().Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateNotes(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req orderNotesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.orders.UpdateOrderNotes(c.Request().Context(), p, id, usecase.UpdateOrderNotesInput{Notes: req.Notes})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listLines(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.lines.ListLines(c.Request().Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) productChoices(c echo.Context) error {
	out, err := h.lines.ProductChoices(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) addLine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req addLineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.lines.AddLine(c.Request().Context(), p, orderID, usecase.AddLineInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) updateLine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	lineID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req lineQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.lines.UpdateLineQuantity(c.Request().Context(), p, lineID, usecase.UpdateLineQuantityInput{Quantity: req.Quantity})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) deleteLine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	lineID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	orderID, err := h.lines.DeleteLine(c.Request().Context(), p, lineID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, deleteLineResponse{OrderID: orderID})
}
