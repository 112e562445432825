package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"orderapp/internal/config"
	"orderapp/internal/handler"
	"orderapp/internal/infra/db"
	infraRepo "orderapp/internal/infra/repository"
	"orderapp/internal/server"
	"orderapp/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	//.envは無くてもよい（本番は環境変数だけ）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	lineRepo := infraRepo.NewOrderLineGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	supplierRepo := infraRepo.NewSupplierGormRepository(gormDB)
	linkRepo := infraRepo.NewProductSupplierGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	hasher := usecase.NewBcryptPasswordHasher(cfg.BcryptCost)
	issuer := usecase.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hasher, issuer, clock, logger)
	orderUC := usecase.NewOrderUsecase(orderRepo, txm, clock)
	lineUC := usecase.NewOrderLineUsecase(orderRepo, lineRepo, productRepo, txm)
	productUC := usecase.NewProductUsecase(productRepo, supplierRepo, linkRepo, txm, clock)
	supplierUC := usecase.NewSupplierUsecase(supplierRepo, linkRepo, txm, clock)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	if cfg.AdminEmail != "" {
		if err := authUC.SeedAdmin(ctx, usecase.SeedAdminInput{
			Email:     cfg.AdminEmail,
			Password:  cfg.AdminPassword,
			FirstName: cfg.AdminFirstName,
			LastName:  cfg.AdminLastName,
		}); err != nil {
			return err
		}
	}

	//Handler生成
	e := server.New(cfg, logger, userRepo, server.Handlers{
		Auth:      handler.NewAuthHandler(authUC),
		Orders:    handler.NewOrderHandler(orderUC, lineUC),
		Products:  handler.NewProductHandler(productUC),
		Suppliers: handler.NewSupplierHandler(supplierUC),
		AuditLogs: handler.NewAuditLogHandler(auditUC),
	})

	//Server起動
	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr, logger)
}

// devはテキスト、prodはJSON
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProd() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With(slog.String("service", "orderapp"))
}
