package handler

import (
	"fmt"
	"net/url"
	"strings"
)

// Routes — таблица именованных маршрутов. Router регистрирует обработчики
// по этим шаблонам, а шаблоны страниц строят ссылки через url_for
var Routes = map[string]string{
	"home":          "/",
	"about":         "/about",
	"register":      "/register",
	"login":         "/login",
	"logout":        "/logout",
	"account":       "/account",
	"new_post":      "/post/new",
	"post":          "/post/{id}",
	"update_post":   "/post/{id}/update",
	"delete_post":   "/post/{id}/delete",
	"user_posts":    "/user/{username}",
	"reset_request": "/reset_password",
	"reset_token":   "/reset_password/{token}",
	"profile_pic":   "/static/profile_pics/{name}",
	"static":        "/static/*",
	"healthz":       "/healthz",
}

// URLFor строит путь по имени маршрута. args задаются парами ключ/значение:
// ключи из шаблона пути подставляются в путь, "filename" заменяет "*",
// остальные уходят в query string.
//
//	URLFor("post", "id", 3)             // /post/3
//	URLFor("home", "page", 2)           // /?page=2
//	URLFor("static", "filename", "a.css") // /static/a.css
func URLFor(name string, args ...any) (string, error) {
	pattern, ok := Routes[name]
	if !ok {
		return "", fmt.Errorf("неизвестный маршрут %q", name)
	}
	if len(args)%2 != 0 {
		return "", fmt.Errorf("url_for %q: нечётное число аргументов", name)
	}

	path := pattern
	query := url.Values{}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return "", fmt.Errorf("url_for %q: ключ %v не строка", name, args[i])
		}
		value := fmt.Sprint(args[i+1])

		placeholder := "{" + key + "}"
		switch {
		case strings.Contains(path, placeholder):
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(value))
		case key == "filename" && strings.HasSuffix(path, "*"):
			path = strings.TrimSuffix(path, "*") + strings.TrimPrefix(value, "/")
		default:
			query.Add(key, value)
		}
	}

	if strings.ContainsAny(path, "{*") {
		return "", fmt.Errorf("url_for %q: не хватает параметров для %s", name, pattern)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}

// mustURL для путей, собранных из констант в коде
func mustURL(name string, args ...any) string {
	u, err := URLFor(name, args...)
	if err != nil {
		panic(err)
	}
	return u
}

// safeNext пропускает только относительные пути этого сайта,
// чтобы ?next= нельзя было использовать для открытого редиректа
func safeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}
