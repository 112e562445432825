package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "orderapp/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 永続化エラー。原因のメッセージを後ろに付けて返す。
func dbError(err error) error {
	return NewHTTPError(http.StatusInternalServerError, "db error: "+err.Error())
}

// repositoryのエラーをHTTPErrorへ寄せる（既にHTTPErrorならそのまま）
func mapRepoError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	if errors.Is(err, repo.ErrConflict) {
		return NewHTTPError(http.StatusConflict, err.Error())
	}
	if errors.Is(err, repo.ErrOutOfRange) {
		return badRequest("amount out of range")
	}
	return dbError(err)
}

// トランザクション全体のエラー（commit失敗もdb errorにする）
func txError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(err)
}

func badRequest(msg string) error {
	return NewHTTPError(http.StatusBadRequest, msg)
}

func forbidden(msg string) error {
	return NewHTTPError(http.StatusForbidden, msg)
}

func notFound(msg string) error {
	return NewHTTPError(http.StatusNotFound, msg)
}
