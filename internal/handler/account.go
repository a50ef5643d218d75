package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/session"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// multipartMemory: сколько multipart-формы держать в памяти, остальное во временных файлах
const multipartMemory = 1 << 20

// Account показывает и изменяет профиля текущего пользователя
func (h *Handler) Account(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	form := &forms.AccountUpdateForm{
		Username: rc.User.Username,
		Email:    rc.User.Email,
		Errors:   forms.Errors{},
	}

	if r.Method == http.MethodPost {
		done, err := h.updateAccount(w, r, rc, form)
		if err != nil || done {
			return err
		}
	}

	return h.render(w, rc, http.StatusOK, "account", "Account", map[string]any{
		"Form":      form,
		"ImageFile": rc.User.ImageFile,
	})
}

// updateAccount обрабатывает POST; done == true, если ответ (редирект) уже отправлен
func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request, rc *RequestContext, form *forms.AccountUpdateForm) (bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return false, &StatusError{Status: http.StatusRequestEntityTooLarge, Err: err}
		}
		return false, &StatusError{Status: http.StatusBadRequest, Err: err}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if err := form.Bind(r); err != nil {
		return false, err
	}
	defer form.Close()

	if !form.Validate() {
		return false, nil
	}

	upd := usecase.AccountUpdate{Username: form.Username, Email: form.Email}
	if form.HasPicture() {
		release, err := h.acquireUpload(r)
		if err != nil {
			return false, err
		}
		defer release()

		upd.Picture = form.Picture
		upd.PictureExt = filepath.Ext(form.PictureHeader.Filename)
		upd.ContentType = form.PictureHeader.Header.Get("Content-Type")
	}

	if _, err := h.accounts.UpdateAccount(r.Context(), rc.User.ID, upd); err != nil {
		if addTakenErrors(form.Errors, err) {
			return false, nil
		}
		return false, err
	}

	rc.Flash(session.FlashSuccess, "Your account has been updated !")
	return true, h.redirect(w, r, rc, mustURL("account"))
}

// acquireUpload ограничивает число одновременно сохраняемых картинок
func (h *Handler) acquireUpload(r *http.Request) (func(), error) {
	if h.uploadLimiter == nil {
		return func() {}, nil
	}
	select {
	case h.uploadLimiter <- struct{}{}:
		return func() { <-h.uploadLimiter }, nil
	case <-r.Context().Done():
		return nil, r.Context().Err()
	}
}
