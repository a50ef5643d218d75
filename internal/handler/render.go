package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/forms"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer держит по набору шаблонов на страницу: layout.html + страница
type Renderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"url_for": URLFor,
	"image_url": func(file string) (string, error) {
		return URLFor("profile_pic", "name", file)
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"field": func(name, label, typ, value string, errs forms.Errors) formField {
		return formField{Name: name, Label: label, Type: typ, Value: value, Errors: errs.Get(name)}
	},
}

// formField — данные для общего шаблона text_field
type formField struct {
	Name   string
	Label  string
	Type   string
	Value  string
	Errors []string
}

func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора шаблона %s: %w", file, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render исполняет страницу в буфер: при ошибке шаблона клиент не получит
// обрезанный HTML
func (r *Renderer) Render(name string, data map[string]any) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("шаблон %q не найден", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return nil, fmt.Errorf("ошибка отрисовки шаблона %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// render отрисовывает страницу с общими данными layout: текущий пользователь,
// заголовок и flash-сообщения, которые после показа удаляются из cookie
func (h *Handler) render(w http.ResponseWriter, rc *RequestContext, status int, name, title string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = title
	data["CurrentUser"] = rc.User
	data["Flashes"] = rc.flashes()

	body, err := h.renderer.Render(name, data)
	if err != nil {
		return err
	}

	if rc.hadFlash {
		if err := h.sessions.SetFlashes(w, nil); err != nil {
			return err
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write HTTP response", "error", err)
	}
	return nil
}

// redirect переносит непоказанные flash-сообщения в cookie и делает 302
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, rc *RequestContext, to string) error {
	flashes := rc.flashes()
	if len(flashes) > 0 || rc.hadFlash {
		if err := h.sessions.SetFlashes(w, flashes); err != nil {
			return err
		}
	}
	http.Redirect(w, r, to, http.StatusFound)
	return nil
}
