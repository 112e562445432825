package repository

import (
	"context"
	"time"

	"orderapp/internal/domain/model"
)

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（IDが埋まる）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければ ErrNotFound。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールから1件取得する。無ければ ErrNotFound。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//last_login_at だけを書き換える（他の列は触らない）
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
