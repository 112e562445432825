package server

import (
	"net/http"

	"orderapp/internal/config"
	"orderapp/internal/handler"
	"orderapp/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルート登録を持つハンドラ
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository)
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Orders    *handler.OrderHandler
	Products  *handler.ProductHandler
	Suppliers *handler.SupplierHandler
	AuditLogs *handler.AuditLogHandler
}

func (h Handlers) registrars() []RouteRegistrar {
	return []RouteRegistrar{h.Auth, h.Orders, h.Products, h.Suppliers, h.AuditLogs}
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, regs ...RouteRegistrar) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	for _, r := range regs {
		r.RegisterRoutes(e, cfg, userRepo)
	}
}
