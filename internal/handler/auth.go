package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/session"
)

const (
	msgUsernameTaken = "That username is taken. Please choose a different one."
	msgEmailTaken    = "That email is taken. Please choose a different one."
)

// addTakenErrors переносит ошибки уникальности в ошибки полей формы.
// Возвращает false, если err не про уникальность
func addTakenErrors(errs forms.Errors, err error) bool {
	handled := false
	if errors.Is(err, domain.ErrUsernameTaken) {
		errs.Add("username", msgUsernameTaken)
		handled = true
	}
	if errors.Is(err, domain.ErrEmailTaken) {
		errs.Add("email", msgEmailTaken)
		handled = true
	}
	return handled
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	form := &forms.RegistrationForm{Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			_, err := h.accounts.Register(r.Context(), form.Username, form.Email, form.Password)
			switch {
			case err == nil:
				rc.Flash(session.FlashSuccess, "Your account has been created. You are now able to login.")
				return h.redirect(w, r, rc, mustURL("login"))
			case !addTakenErrors(form.Errors, err):
				return err
			}
		}
	}

	return h.render(w, rc, http.StatusOK, "register", "Register", map[string]any{"Form": form})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	form := &forms.LoginForm{Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			user, err := h.accounts.Authenticate(r.Context(), form.Email, form.Password)
			switch {
			case err == nil:
				if err := h.sessions.Login(w, user.ID, form.Remember); err != nil {
					return err
				}
				h.logger.Info("user logged in", "user_id", user.ID, "remember", form.Remember)

				target := mustURL("home")
				if next, ok := safeNext(r.URL.Query().Get("next")); ok {
					target = next
				}
				return h.redirect(w, r, rc, target)
			case errors.Is(err, domain.ErrInvalidCredentials):
				rc.Flash(session.FlashDanger, "Wrong credentials. Please check your email and password.")
			default:
				return err
			}
		}
	}

	return h.render(w, rc, http.StatusOK, "login", "Login", map[string]any{"Form": form})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	h.sessions.Logout(w)
	return h.redirect(w, r, rc, mustURL("home"))
}

// ResetRequest: первая фаза сброса пароля. Ответ не зависит от того,
// есть ли такая почта
func (h *Handler) ResetRequest(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	form := &forms.RequestResetForm{Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			if err := h.accounts.RequestPasswordReset(r.Context(), form.Email); err != nil {
				return err
			}
			rc.Flash(session.FlashInfo, "An email has been sent with instructions to reset the password.")
			return h.redirect(w, r, rc, mustURL("login"))
		}
	}

	return h.render(w, rc, http.StatusOK, "reset_request", "Reset Password", map[string]any{"Form": form})
}

// ResetToken: вторая фаза, проверка токена и установка нового пароля
func (h *Handler) ResetToken(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	token := chi.URLParam(r, "token")

	invalid := func() error {
		rc.Flash(session.FlashWarning, "This is an invalid or expired token.")
		return h.redirect(w, r, rc, mustURL("reset_request"))
	}

	if _, err := h.accounts.VerifyResetToken(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return invalid()
		}
		return err
	}

	form := &forms.ResetPasswordForm{Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			err := h.accounts.ResetPassword(r.Context(), token, form.Password)
			switch {
			case err == nil:
				rc.Flash(session.FlashSuccess, "Your password has been reset. You are now able to login.")
				return h.redirect(w, r, rc, mustURL("login"))
			case errors.Is(err, domain.ErrInvalidToken):
				return invalid()
			default:
				return err
			}
		}
	}

	return h.render(w, rc, http.StatusOK, "reset_token", "Reset Password", map[string]any{
		"Form":  form,
		"Token": token,
	})
}
