package db

import (
	"fmt"
	"log/slog"
	"time"

	"orderapp/internal/config"
	"orderapp/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。SQLログは appLogger に流す。
func Connect(cfg config.Config, appLogger *slog.Logger) (*gorm.DB, error) {
	level := logger.Info
	if cfg.IsProd() {
		level = logger.Warn
	}

	gormLogger := logger.New(
		slog.NewLogLogger(appLogger.With(slog.String("component", "gorm")).Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// 外部キー（関連フィールドを持たないので AutoMigrate では作られない）
var foreignKeys = []struct {
	name string
	ddl  string
}{
	{
		name: "fk_order_details_order",
		ddl:  "ALTER TABLE order_details ADD CONSTRAINT fk_order_details_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
	},
	{
		name: "fk_order_details_product",
		ddl:  "ALTER TABLE order_details ADD CONSTRAINT fk_order_details_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT",
	},
	{
		name: "fk_orders_user",
		ddl:  "ALTER TABLE orders ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT",
	},
	{
		name: "fk_product_suppliers_product",
		ddl:  "ALTER TABLE product_suppliers ADD CONSTRAINT fk_product_suppliers_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
	},
	{
		name: "fk_product_suppliers_supplier",
		ddl:  "ALTER TABLE product_suppliers ADD CONSTRAINT fk_product_suppliers_supplier FOREIGN KEY (supplier_id) REFERENCES suppliers(id) ON DELETE CASCADE",
	},
}

// Migrate はテーブルと制約を作成する（何度呼んでもよい）
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Supplier{},
		&model.ProductSupplier{},
		&model.Order{},
		&model.OrderLine{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, fk := range foreignKeys {
		var exists bool
		if err := db.Raw("SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", fk.name).
			Scan(&exists).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", fk.name, err)
		}
		if exists {
			continue
		}
		if err := db.Exec(fk.ddl).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", fk.name, err)
		}
	}
	return nil
}
