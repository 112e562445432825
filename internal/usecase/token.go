package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"orderapp/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid access token")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// subjectID は sub を文字列で書き、読むときは数値も受ける
type subjectID int64

func (s subjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10))
}

func (s *subjectID) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	*s = subjectID(id)
	return nil
}

// アクセストークンの中身。発行と検証で同じ形を使う
type AccessClaims struct {
	Subject      subjectID        `json:"sub"`
	Role         model.Role       `json:"role"`
	TokenVersion int              `json:"tv"`
	IssuedAt     *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt    *jwt.NumericDate `json:"exp"`
}

func (c AccessClaims) UserID() int64 { return int64(c.Subject) }

// jwt.Claims。期限切れと中身の不正をまとめて弾く
func (c AccessClaims) Valid() error {
	if c.ExpiresAt == nil || !time.Now().Before(c.ExpiresAt.Time) {
		return ErrInvalidToken
	}
	if c.Subject <= 0 || !c.Role.Valid() || c.TokenVersion < 0 {
		return ErrInvalidToken
	}
	return nil
}

type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}
}

func (i *JWTIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := AccessClaims{
		Subject:      subjectID(userID),
		Role:         role,
		TokenVersion: tokenVersion,
		IssuedAt:     jwt.NewNumericDate(now),
		ExpiresAt:    jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// HS256の署名と中身を検証する。失敗はすべて ErrInvalidToken
func ParseAccessToken(raw string, secret []byte) (AccessClaims, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return AccessClaims{}, ErrInvalidToken
	}
	return claims, nil
}
