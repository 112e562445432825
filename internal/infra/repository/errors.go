package repository

import (
	"errors"
	"fmt"

	repo "orderapp/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// numeric_value_out_of_range（gormのTranslateErrorでは変換されない）
const pgNumericOutOfRange = "22003"

// GORM/pgxのエラーをrepositoryの約束に寄せる。
// 一意制約・外部キー違反は TranslateError: true で gorm のエラーになっている前提。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
		return fmt.Errorf("%w: %s", repo.ErrOutOfRange, pgErr.Message)
	}
	return err
}
