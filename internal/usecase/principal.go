package usecase

import (
	"net/http"
	"time"

	"orderapp/internal/domain/model"
)

// Principal はリクエスト単位の「誰が」。グローバルには持たず、毎回引数で渡す。
type Principal struct {
	UserID int64
	Role   model.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

func (p Principal) IsCustomer() bool {
	return p.Role == model.RoleCustomer
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func requireAuthenticated(p Principal) error {
	if p.UserID <= 0 || !p.Role.Valid() {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return nil
}

func requireAdmin(p Principal) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return forbidden("admin only")
	}
	return nil
}

// 管理者は全注文、顧客は自分の注文だけ
func authorizeOrder(p Principal, o model.Order) error {
	if p.IsAdmin() {
		return nil
	}
	if o.UserID != p.UserID {
		return forbidden("this is not your order")
	}
	return nil
}
