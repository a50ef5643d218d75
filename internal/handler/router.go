package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter регистрирует все маршруты из Routes
func NewRouter(h *Handler, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.NotFound(h.wrap(func(http.ResponseWriter, *http.Request, *RequestContext) error {
		return notFound()
	}))
	r.MethodNotAllowed(h.wrap(func(http.ResponseWriter, *http.Request, *RequestContext) error {
		return &StatusError{Status: http.StatusMethodNotAllowed}
	}))

	r.Get(Routes["home"], h.wrap(h.Home))
	r.Get(Routes["about"], h.wrap(h.About))
	r.Get(Routes["post"], h.wrap(h.ShowPost))
	r.Get(Routes["user_posts"], h.wrap(h.UserPosts))
	r.Get(Routes["logout"], h.wrap(h.Logout))

	anon := func(pattern string, fn HandlerFunc) {
		r.Get(pattern, h.wrap(h.anonymousOnly(fn)))
		r.Post(pattern, h.wrap(h.anonymousOnly(fn)))
	}
	anon(Routes["register"], h.Register)
	anon(Routes["login"], h.Login)
	anon(Routes["reset_request"], h.ResetRequest)
	anon(Routes["reset_token"], h.ResetToken)

	authed := func(pattern string, fn HandlerFunc) {
		r.Get(pattern, h.wrap(h.requireLogin(fn)))
		r.Post(pattern, h.wrap(h.requireLogin(fn)))
	}
	authed(Routes["account"], h.Account)
	authed(Routes["new_post"], h.NewPost)
	authed(Routes["update_post"], h.UpdatePost)
	r.Post(Routes["delete_post"], h.wrap(h.requireLogin(h.DeletePost)))

	r.Get(Routes["profile_pic"], h.wrap(h.ProfilePicture))
	r.Handle(Routes["static"], h.Static())
	r.Get(Routes["healthz"], h.Health)

	return r
}
