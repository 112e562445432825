// Package validator はリクエスト入力の形式チェックをまとめる。
// echo の Validator としても、usecase からの単発チェックとしても使う。
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// 入力が不正（メッセージに項目名が入る）
type Error struct {
	Field string
	Tag   string
}

func (e *Error) Error() string {
	switch e.Tag {
	case "required":
		return e.Field + " required"
	case "email":
		return e.Field + " must be a valid email"
	case "phone":
		return e.Field + " must be a valid phone number"
	case "min", "gte":
		return e.Field + " too small"
	case "max", "lte":
		return e.Field + " too large"
	case "oneof":
		return "invalid " + e.Field
	}
	return fmt.Sprintf("invalid %s (%s)", e.Field, e.Tag)
}

// 数字・空白・ハイフン・括弧・ドット、先頭に+を許す
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]*$`)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// エラーメッセージはJSONのキー名で出す
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// 登録に失敗するのはタグ名の誤りだけ
	if err := v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// echo.Validator
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &Error{Field: fe.Field(), Tag: fe.Tag()}
	}
	return err
}

var std = New()

// IsEmail はメール形式かどうか（前後の空白は許さない）
func IsEmail(s string) bool {
	return s != "" && std.v.Var(s, "email") == nil
}

func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}
