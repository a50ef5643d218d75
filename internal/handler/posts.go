package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/BlogApp/internal/forms"
	"github.com/GoArmGo/BlogApp/internal/session"
)

func (h *Handler) NewPost(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	form := &forms.PostForm{Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			if _, err := h.posts.CreatePost(r.Context(), rc.User.ID, form.Title, form.Content); err != nil {
				return err
			}
			rc.Flash(session.FlashSuccess, "Your post has been successfully published !")
			return h.redirect(w, r, rc, mustURL("home"))
		}
	}

	return h.render(w, rc, http.StatusOK, "create_post", "New Post", map[string]any{
		"Form":   form,
		"Legend": "New Post",
	})
}

// UpdatePost даёт автору отредактировать пост. Чужой пост даёт 403 ещё до
// разбора формы
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	post, err := h.posts.GetPostForEdit(r.Context(), rc.User.ID, id)
	if err != nil {
		return err
	}

	form := &forms.PostForm{Title: post.Title, Content: post.Content, Errors: forms.Errors{}}
	if r.Method == http.MethodPost {
		form.Bind(r)
		if form.Validate() {
			if _, err := h.posts.UpdatePost(r.Context(), rc.User.ID, post.ID, form.Title, form.Content); err != nil {
				return err
			}
			rc.Flash(session.FlashSuccess, "Your post has been updated !")
			return h.redirect(w, r, rc, mustURL("post", "id", post.ID))
		}
	}

	return h.render(w, rc, http.StatusOK, "create_post", "Update Post", map[string]any{
		"Form":   form,
		"Legend": "Update Post",
	})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(r.Context(), rc.User.ID, id); err != nil {
		return err
	}

	rc.Flash(session.FlashSuccess, "Your post has been deleted!")
	return h.redirect(w, r, rc, mustURL("home"))
}
