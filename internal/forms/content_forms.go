package forms

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// AccountUpdateForm — смена имени, почты и (необязательно) картинки профиля
type AccountUpdateForm struct {
	Username    string `form:"username" validate:"required,min=2,max=20"`
	Email       string `form:"email" validate:"required,email,max=120"`
	PictureName string `form:"picture" validate:"omitempty,picture_ext"`

	Picture       multipart.File        `form:"-" validate:"-"`
	PictureHeader *multipart.FileHeader `form:"-" validate:"-"`

	Errors Errors `form:"-" validate:"-"`
}

// Bind читает поля и файл из уже разобранной multipart-формы.
// Если файл передан, вызывающий обязан закрыть f.Picture
func (f *AccountUpdateForm) Bind(r *http.Request) error {
	f.Username = strings.TrimSpace(r.PostFormValue("username"))
	f.Email = strings.TrimSpace(r.PostFormValue("email"))

	file, header, err := r.FormFile("picture")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil
	case err != nil:
		return fmt.Errorf("ошибка чтения файла из формы: %w", err)
	}

	// пустое поле file в браузере приходит как часть без имени
	if header.Filename == "" {
		_ = file.Close()
		return nil
	}

	f.Picture = file
	f.PictureHeader = header
	f.PictureName = header.Filename
	return nil
}

func (f *AccountUpdateForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}

// HasPicture сообщает, была ли загружена картинка
func (f *AccountUpdateForm) HasPicture() bool {
	return f.Picture != nil
}

// Close освобождает загруженный файл
func (f *AccountUpdateForm) Close() error {
	if f.Picture == nil {
		return nil
	}
	return f.Picture.Close()
}

// PostForm общая для создания и редактирования поста
type PostForm struct {
	Title   string `form:"title" validate:"required,max=100"`
	Content string `form:"content" validate:"required"`

	Errors Errors `form:"-" validate:"-"`
}

func (f *PostForm) Bind(r *http.Request) {
	f.Title = strings.TrimSpace(r.PostFormValue("title"))
	f.Content = r.PostFormValue("content")
}

func (f *PostForm) Validate() bool {
	f.Errors = check(f)
	return !f.Errors.Any()
}
