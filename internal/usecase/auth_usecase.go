package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
	"orderapp/internal/validator"
)

const (
	minPasswordLength = 8
	// bcryptは72バイトまでしか見ない
	maxPasswordBytes = 72
	maxNameLength    = 100
)

type AuthUsecase struct {
	users  repo.UserRepository
	hasher PasswordHasher
	issuer AccessTokenIssuer
	clock  Clock
	logger *slog.Logger
}

func NewAuthUsecase(
	users repo.UserRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	clock Clock,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		clock:  clock,
		logger: logger,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

// token 形（JwtAccessToken相当）
type AccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type LoginOutput struct {
	User  UserView    `json:"user"`
	Token AccessToken `json:"token"`
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

// 起動時に作る管理者
type SeedAdminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func validateAccount(email, password, first, last string) error {
	if email == "" || password == "" {
		return badRequest("email and password required")
	}
	if !validator.IsEmail(email) {
		return badRequest("invalid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return badRequest("password too short")
	}
	if len(password) > maxPasswordBytes {
		return badRequest("password too long")
	}
	if first == "" || last == "" {
		return badRequest("first_name and last_name required")
	}
	if utf8.RuneCountInString(first) > maxNameLength || utf8.RuneCountInString(last) > maxNameLength {
		return badRequest("name too long")
	}
	return nil
}

// 会員登録。登録できるのは顧客だけ。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if err := validateAccount(email, in.Password, first, last); err != nil {
		return UserView{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserView{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return UserView{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserView{}, dbError(err)
	}
	return toUserView(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, badRequest("email and password required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return LoginOutput{}, dbError(err)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, forbidden("user is inactive")
	}
	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//last_login更新（失敗してもログインは通す）
	if err := u.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		u.logger.WarnContext(ctx, "update last_login_at failed", slog.Int64("user_id", user.ID), slog.Any("err", err))
	}

	return LoginOutput{
		User: toUserView(user),
		Token: AccessToken{
			AccessToken:  token,
			ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, p Principal) (UserView, error) {
	if err := requireAuthenticated(p); err != nil {
		return UserView{}, err
	}
	user, err := u.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return UserView{}, dbError(err)
	}
	if !user.IsActive {
		return UserView{}, forbidden("user is inactive")
	}
	return toUserView(user), nil
}

// 対象ユーザーの発行済みトークンを全部無効にする（管理者）
func (u *AuthUsecase) ForceLogout(ctx context.Context, p Principal, targetUserID int64) (ForceLogoutOutput, error) {
	if err := requireAdmin(p); err != nil {
		return ForceLogoutOutput{}, err
	}
	if targetUserID <= 0 {
		return ForceLogoutOutput{}, badRequest("invalid user id")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return ForceLogoutOutput{}, mapRepoError(err, "user not found")
	}
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return ForceLogoutOutput{}, mapRepoError(err, "user not found")
	}
	return ForceLogoutOutput{UserID: user.ID, NewTokenVersion: user.TokenVersion}, nil
}

// 管理者がいなければ作る。既にいれば何もしない（パスワードも上書きしない）。
func (u *AuthUsecase) SeedAdmin(ctx context.Context, in SeedAdminInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if err := validateAccount(email, in.Password, first, last); err != nil {
		return err
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			u.logger.WarnContext(ctx, "seed admin email belongs to a non-admin user", slog.Int64("user_id", existing.ID))
		}
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return dbError(err)
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, admin); err != nil {
		// 同時起動した別プロセスが先に作った
		if errors.Is(err, repo.ErrConflict) {
			return nil
		}
		return dbError(err)
	}
	u.logger.InfoContext(ctx, "admin user created", slog.Int64("user_id", admin.ID))
	return nil
}
