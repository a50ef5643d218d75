package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Категории flash-сообщений, они же CSS-классы alert-* в шаблонах
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
	FlashWarning = "warning"
)

// flashTTL ограничивает жизнь непрочитанных сообщений
const flashTTL = 10 * time.Minute

// Flash — одноразовое сообщение, показываемое на следующей отрисованной странице
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type flashClaims struct {
	Messages []Flash `json:"msgs"`
	jwt.RegisteredClaims
}

// SetFlashes записывает сообщения в cookie; пустой список удаляет cookie
func (m *Manager) SetFlashes(w http.ResponseWriter, flashes []Flash) error {
	if len(flashes) == 0 {
		m.clear(w, FlashCookie)
		return nil
	}

	now := m.now()
	token, err := m.sign(flashClaims{
		Messages: flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{flashAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	})
	if err != nil {
		return fmt.Errorf("ошибка записи flash-сообщений: %w", err)
	}

	http.SetCookie(w, m.cookie(FlashCookie, token))
	return nil
}

// Flashes читает сообщения из cookie, не удаляя её.
// Подделанная или просроченная cookie даёт пустой список
func (m *Manager) Flashes(r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	claims := &flashClaims{}
	if err := m.parse(c.Value, claims, flashAudience); err != nil {
		return nil
	}
	return claims.Messages
}

// HasFlashCookie сообщает, пришла ли с запросом cookie сообщений
func HasFlashCookie(r *http.Request) bool {
	c, err := r.Cookie(FlashCookie)
	return err == nil && c.Value != ""
}
