package forms

import (
	"net/http"
	"strings"
)

type RegistrationForm struct {
	Username        string `form:"username" validate:"required,min=2,max=20"`
	Email           string `form:"email" validate:"required,email,max=120"`
	Password        string `form:"password" validate:"required,bcrypt_len"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`

	Errors Errors `form:"-" validate:"-"`
}

func (f *RegistrationForm) Bind(r *http.Request) {
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Email = strings.TrimSpace(r.PostFormValue("email"))
	f.Password = r.PostFormValue("password")
	f.ConfirmPassword = r.PostFormValue("confirm_password")
}

// Validate проверяет форму; уникальность имени и почты проверяется уровнем выше
func (f *RegistrationForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`

	Errors Errors `form:"-" validate:"-"`
}

func (f *LoginForm) Bind(r *http.Request) {
	f.Email = strings.TrimSpace(r.PostFormValue("email"))
	f.Password = r.PostFormValue("password")
	f.Remember = checkbox(r.PostFormValue("remember"))
}

func (f *LoginForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

type RequestResetForm struct {
	Email string `form:"email" validate:"required,email"`

	Errors Errors `form:"-" validate:"-"`
}

func (f *RequestResetForm) Bind(r *http.Request) {
	f.Email = strings.TrimSpace(r.PostFormValue("email"))
}

func (f *RequestResetForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

type ResetPasswordForm struct {
	Password        string `form:"password" validate:"required,bcrypt_len"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`

	Errors Errors `form:"-" validate:"-"`
}

func (f *ResetPasswordForm) Bind(r *http.Request) {
	f.Password = r.PostFormValue("password")
	f.ConfirmPassword = r.PostFormValue("confirm_password")
}

func (f *ResetPasswordForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

// checkbox трактует значения HTML-чекбокса
func checkbox(v string) bool {
	switch strings.ToLower(v) {
	case "y", "yes", "on", "true", "1":
		return true
	default:
		return false
	}
}
