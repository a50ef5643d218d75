package handler

import (
	"net/http"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/session"
)

// RequestContext живёт один запрос: текущий пользователь (nil для анонима)
// и flash-сообщения. Передаётся обработчикам явно
type RequestContext struct {
	User *domain.User

	incoming []session.Flash // пришли в cookie из предыдущего запроса
	pending  []session.Flash // добавлены во время этого запроса
	hadFlash bool
}

func (rc *RequestContext) IsAuthenticated() bool {
	return rc.User != nil
}

// Flash добавляет сообщение; оно будет показано на ближайшей отрисованной странице
func (rc *RequestContext) Flash(category, message string) {
	rc.pending = append(rc.pending, session.Flash{Category: category, Message: message})
}

func (rc *RequestContext) flashes() []session.Flash {
	out := make([]session.Flash, 0, len(rc.incoming)+len(rc.pending))
	out = append(out, rc.incoming...)
	return append(out, rc.pending...)
}

// HandlerFunc обрабатывает страницу; ошибку превращает в ответ wrap
type HandlerFunc func(w http.ResponseWriter, r *http.Request, rc *RequestContext) error
