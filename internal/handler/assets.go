package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// ProfilePicture отдаёт картинку из хранилища картинок; если там её нет
// (например, default.jpg при хранении в S3), ищет в каталоге статики
func (h *Handler) ProfilePicture(w http.ResponseWriter, r *http.Request, _ *RequestContext) error {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) {
		return notFound()
	}

	file, err := h.pictures.Open(r.Context(), name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		fallback := filepath.Join(h.opts.StaticDir, "profile_pics", name)
		if _, statErr := os.Stat(fallback); statErr != nil {
			return notFound()
		}
		http.ServeFile(w, r, fallback)
		return nil
	case err != nil:
		return err
	}
	defer file.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("failed to stream profile picture", "name", name, "error", err)
	}
	return nil
}

// Static раздаёт CSS и прочие файлы из каталога статики
func (h *Handler) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(h.opts.StaticDir)))
}

// Health проверяет БД и отвечает JSON
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "database unavailable", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}
