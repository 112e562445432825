package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
	"orderapp/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthUsecase() (*usecase.AuthUsecase, *UserRepoMock) {
	users := new(UserRepoMock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := usecase.NewAuthUsecase(
		users,
		usecase.NewBcryptPasswordHasher(4),
		usecase.NewJWTIssuer(testSecret, 15*time.Minute),
		fixedClock{now: time.Now()},
		logger,
	)
	return uc, users
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := usecase.NewBcryptPasswordHasher(4).Hash(plain)
	require.NoError(t, err)
	return h
}

func TestAuthUsecase_Register_CreatesCustomer(t *testing.T) {
	uc, users := newAuthUsecase()

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "ada@example.com" &&
			u.Role == model.RoleCustomer &&
			u.PasswordHash != "" && u.PasswordHash != "password123" &&
			u.FirstName == "Ada" && u.LastName == "Lovelace"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: " Ada@Example.com ", Password: "password123", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, "Ada Lovelace", out.FullName)
	assert.Equal(t, model.RoleCustomer, out.Role)
	users.AssertExpectations(t)
}

func TestAuthUsecase_Register_Validation(t *testing.T) {
	uc, _ := newAuthUsecase()

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Email: "bad", Password: "password123", FirstName: "A", LastName: "B"})
	assertErrContains(t, err, "invalid email")
	_, err = uc.Register(context.Background(), usecase.RegisterInput{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"})
	assertErrContains(t, err, "password too short")
	_, err = uc.Register(context.Background(), usecase.RegisterInput{Email: "a@example.com", Password: "password123"})
	assertErrContains(t, err, "first_name and last_name required")
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrConflict)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "ada@example.com", Password: "password123", FirstName: "Ada", LastName: "Lovelace",
	})
	assertStatus(t, err, http.StatusConflict)
}

func TestAuthUsecase_Login_IssuesTokenWithClaims(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID: 10, Email: "ada@example.com", PasswordHash: hashed(t, "password123"),
		Role: model.RoleCustomer, TokenVersion: 3, IsActive: true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, int64(10), mock.AnythingOfType("time.Time")).Return(nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, 900, out.Token.ExpiresIn)
	assert.Equal(t, 3, out.Token.TokenVersion)

	tok, err := jwt.Parse(out.Token.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, strconv.Itoa(10), claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
	assert.Equal(t, float64(3), claims["tv"])
}

func TestAuthUsecase_Login_TouchesOnlyLastLogin(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID: 10, Email: "ada@example.com", PasswordHash: hashed(t, "password123"),
		Role: model.RoleCustomer, TokenVersion: 3, IsActive: true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, int64(10), mock.MatchedBy(func(at time.Time) bool {
		return !at.IsZero()
	})).Return(nil).Once()

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.User.ID)

	// 行全体を書き戻す呼び出しはない（token_version等を古い値で上書きしない）
	users.AssertExpectations(t)
	users.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Len(t, users.Calls, 2)
}

func TestAuthUsecase_Login_LastLoginFailureDoesNotBlock(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID: 10, Email: "ada@example.com", PasswordHash: hashed(t, "password123"),
		Role: model.RoleCustomer, IsActive: true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, int64(10), mock.Anything).Return(errDB)

	out, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token.AccessToken)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{
		ID: 10, PasswordHash: hashed(t, "password123"), Role: model.RoleCustomer, IsActive: true,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "wrong-password"})
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrNotFound)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&model.User{ID: 10, IsActive: false}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "ada@example.com", Password: "password123"})
	assertStatus(t, err, http.StatusForbidden)
}

func TestAuthUsecase_ForceLogout(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("IncrementTokenVersion", mock.Anything, int64(10)).Return(nil)
	users.On("FindByID", mock.Anything, int64(10)).Return(&model.User{ID: 10, TokenVersion: 4}, nil)

	out, err := uc.ForceLogout(context.Background(), admin, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, out.NewTokenVersion)

	_, err = uc.ForceLogout(context.Background(), customer, 10)
	assertStatus(t, err, http.StatusForbidden)
}

func TestAuthUsecase_SeedAdmin_CreatesOnce(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByEmail", mock.Anything, "admin@example.com").Return(nil, repo.ErrNotFound).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin && u.Email == "admin@example.com"
	})).Return(nil).Once()

	err := uc.SeedAdmin(context.Background(), usecase.SeedAdminInput{
		Email: "admin@example.com", Password: "admin-password", FirstName: "Store", LastName: "Admin",
	})
	require.NoError(t, err)

	users.On("FindByEmail", mock.Anything, "admin@example.com").Return(&model.User{ID: 1, Role: model.RoleAdmin}, nil).Once()
	err = uc.SeedAdmin(context.Background(), usecase.SeedAdminInput{
		Email: "admin@example.com", Password: "admin-password", FirstName: "Store", LastName: "Admin",
	})
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "Create", 1)
}

func TestAuthUsecase_Me(t *testing.T) {
	uc, users := newAuthUsecase()
	users.On("FindByID", mock.Anything, customer.UserID).Return(&model.User{ID: customer.UserID, FirstName: "Ada", LastName: "Lovelace", IsActive: true}, nil)

	out, err := uc.Me(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out.FullName)
}
