package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Home отдаёт общую ленту постов с пагинацией
func (h *Handler) Home(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}

	posts, err := h.posts.ListPosts(r.Context(), page)
	if err != nil {
		return err
	}
	return h.render(w, rc, http.StatusOK, "home", "", map[string]any{"Posts": posts})
}

func (h *Handler) About(w http.ResponseWriter, _ *http.Request, rc *RequestContext) error {
	return h.render(w, rc, http.StatusOK, "about", "About", nil)
}

// ShowPost показывает один пост
func (h *Handler) ShowPost(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	id, err := idParam(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		return err
	}
	return h.render(w, rc, http.StatusOK, "post", post.Title, map[string]any{"Post": post})
}

// UserPosts отдаёт ленту одного автора
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
	page, err := pageParam(r)
	if err != nil {
		return err
	}

	user, posts, err := h.posts.ListUserPosts(r.Context(), chi.URLParam(r, "username"), page)
	if err != nil {
		return err
	}
	return h.render(w, rc, http.StatusOK, "user_posts", user.Username, map[string]any{
		"User":  user,
		"Posts": posts,
	})
}
