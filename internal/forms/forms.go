// Package forms описывает входные формы сайта: типизированные структуры,
// заполняемые из запроса, и их проверку через go-playground/validator.
package forms

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/GoArmGo/BlogApp/internal/auth"
)

// Errors — ошибки по именам полей формы
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get используется шаблонами: {{ range .Form.Errors.Get "email" }}
func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// AllowedPictureExts перечисляет допустимые расширения картинки профиля
var AllowedPictureExts = []string{"jpg", "jpeg", "png"}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// в ошибках нужны имена полей формы, а не Go-поля
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("picture_ext", validPictureExt); err != nil {
			panic(fmt.Sprintf("forms: register picture_ext: %v", err))
		}
		if err := v.RegisterValidation("bcrypt_len", validBcryptLen); err != nil {
			panic(fmt.Sprintf("forms: register bcrypt_len: %v", err))
		}
		validate = v
	})
	return validate
}

func validPictureExt(fl validator.FieldLevel) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fl.Field().String())), ".")
	for _, allowed := range AllowedPictureExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

// validBcryptLen считает байты, а не символы: кириллица занимает по два
func validBcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= auth.MaxPasswordBytes
}

// check прогоняет структуру через validator и переводит ошибки в сообщения для шаблона
func check(form any) Errors {
	errs := Errors{}

	err := engine().Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("", err.Error())
		return errs
	}

	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// message повторяет привычные тексты ошибок серверных форм
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return "Field must be equal to password."
	case "bcrypt_len":
		return fmt.Sprintf("Field cannot be longer than %d bytes.", auth.MaxPasswordBytes)
	case "picture_ext":
		return "File does not have an approved extension: " + strings.Join(AllowedPictureExts, ", ")
	default:
		return "Invalid value."
	}
}
