package handler

import (
	"errors"
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// StatusError — ошибка с явным HTTP-статусом
type StatusError struct {
	Err    error
	Status int
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func notFound() error {
	return &StatusError{Status: http.StatusNotFound}
}

// statusOf сводит ошибку обработчика к HTTP-статусу
func statusOf(err error) int {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Status
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type errorPage struct {
	Heading string
	Text    string
}

var errorPages = map[int]errorPage{
	http.StatusNotFound: {
		Heading: "Oops. Page Not Found (404)",
		Text:    "That page does not exist. Please try a different location",
	},
	http.StatusForbidden: {
		Heading: "You don't have permission to do that (403)",
		Text:    "Please check your account and try again",
	},
	http.StatusMethodNotAllowed: {
		Heading: "Method Not Allowed (405)",
		Text:    "The method is not allowed for the requested URL.",
	},
	http.StatusRequestEntityTooLarge: {
		Heading: "Request Too Large (413)",
		Text:    "The uploaded file is too large.",
	},
	http.StatusInternalServerError: {
		Heading: "Something went wrong (500)",
		Text:    "We're experiencing some trouble on our end. Please try again in the near future",
	},
}

func pageFor(status int) errorPage {
	if p, ok := errorPages[status]; ok {
		return p
	}
	return errorPage{Heading: http.StatusText(status), Text: ""}
}
