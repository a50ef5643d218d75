package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/session"
	"github.com/GoArmGo/BlogApp/internal/usecase"
)

// Pinger проверяет доступность БД для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	StaticDir      string
	MaxUploadBytes int64
}

// Handler — обработчик HTTP-запросов блога: страницы, формы и статика
type Handler struct {
	accounts      usecase.AccountUseCase
	posts         usecase.PostUseCase
	sessions      *session.Manager
	pictures      ports.FileStorage
	db            Pinger
	renderer      *Renderer
	uploadLimiter chan struct{}
	opts          Options
	logger        *slog.Logger
}

// NewHandler создаёт новый экземпляр Handler и разбирает шаблоны
func NewHandler(
	accounts usecase.AccountUseCase,
	posts usecase.PostUseCase,
	sessions *session.Manager,
	pictures ports.FileStorage,
	db Pinger,
	limiter chan struct{},
	opts Options,
	logger *slog.Logger,
) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		accounts:      accounts,
		posts:         posts,
		sessions:      sessions,
		pictures:      pictures,
		db:            db,
		renderer:      renderer,
		uploadLimiter: limiter,
		opts:          opts,
		logger:        logger,
	}, nil
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// wrap собирает RequestContext и превращает ошибку обработчика в страницу ошибки
func (h *Handler) wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := h.newRequestContext(r)
		if err := fn(w, r, rc); err != nil {
			h.handleError(w, r, rc, err)
		}
	}
}

func (h *Handler) newRequestContext(r *http.Request) *RequestContext {
	rc := &RequestContext{
		incoming: h.sessions.Flashes(r),
		hadFlash: session.HasFlashCookie(r),
	}

	userID, ok := h.sessions.UserID(r)
	if !ok {
		return rc
	}

	user, err := h.accounts.GetUserByID(r.Context(), userID)
	switch {
	case err == nil:
		rc.User = user
	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("session refers to missing user", "user_id", userID)
	default:
		h.logger.Error("failed to load session user", "user_id", userID, "error", err)
	}
	return rc
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, rc *RequestContext, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	page := pageFor(status)
	renderErr := h.render(w, rc, status, "error", strconv.Itoa(status), map[string]any{
		"Status":  status,
		"Heading": page.Heading,
		"Text":    page.Text,
	})
	if renderErr != nil {
		h.logger.Error("failed to render error page", "error", renderErr)
		http.Error(w, http.StatusText(status), status)
	}
}

// requireLogin пускает только вошедших; остальных отправляет на /login?next=...
func (h *Handler) requireLogin(fn HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
		if !rc.IsAuthenticated() {
			rc.Flash(session.FlashInfo, "Please log in to access this page.")
			return h.redirect(w, r, rc, mustURL("login", "next", r.URL.RequestURI()))
		}
		return fn(w, r, rc)
	}
}

// anonymousOnly отправляет вошедших пользователей на главную
func (h *Handler) anonymousOnly(fn HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error {
		if rc.IsAuthenticated() {
			return h.redirect(w, r, rc, mustURL("home"))
		}
		return fn(w, r, rc)
	}
}

// pageParam читает ?page=; нечисловое значение даёт первую страницу
func pageParam(r *http.Request) (int, error) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	switch {
	case errors.Is(err, strconv.ErrRange):
		// число, но за пределами любой существующей страницы
		return 0, notFound()
	case err != nil:
		return 1, nil
	}
	return page, nil
}

// idParam читает числовой id из пути; на всё остальное 404
func idParam(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, notFound()
	}
	return uint(id), nil
}
