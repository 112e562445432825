package handler

import (
	"net/http"
	"strconv"

	"orderapp/internal/config"
	"orderapp/internal/middleware"
	"orderapp/internal/repository"
	"orderapp/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ログイン必須ルートの共通ミドルウェア（JWT + token_version一致）
func authMiddlewares(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
}

func adminMiddlewares(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return append(authMiddlewares(cfg, userRepo), middleware.AdminRoleGuard())
}

func principal(c echo.Context) (usecase.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return usecase.Principal{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}

// パスのIDを正の整数として取り出す
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// Bind + Validate。どちらの失敗も400。
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
