package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "orderapp/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("connection reset")

	cases := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "record not found", in: gorm.ErrRecordNotFound, want: repo.ErrNotFound},
		{name: "wrapped not found", in: fmt.Errorf("find: %w", gorm.ErrRecordNotFound), want: repo.ErrNotFound},
		{name: "duplicate key", in: gorm.ErrDuplicatedKey, want: repo.ErrConflict},
		{name: "foreign key", in: gorm.ErrForeignKeyViolated, want: repo.ErrConflict},
		{
			name: "numeric overflow",
			in:   &pgconn.PgError{Code: "22003", Message: "numeric field overflow"},
			want: repo.ErrOutOfRange,
		},
		{name: "other pg error", in: &pgconn.PgError{Code: "40001"}, want: nil},
		{name: "other", in: other, want: other},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.in)
			switch {
			case tc.in == nil:
				assert.NoError(t, got)
			case tc.want == nil:
				// 変換しないエラーはそのまま返る
				assert.Same(t, tc.in, got)
			default:
				assert.ErrorIs(t, got, tc.want)
			}
		})
	}
}
