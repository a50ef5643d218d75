// Package session хранит личность вошедшего пользователя и flash-сообщения
// в подписанных (HS256 JWT) HttpOnly cookie. Серверного хранилища сессий нет.
package session

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"

	sessionAudience = "session"
	flashAudience   = "flash"
)

// Options задаёт параметры cookie
type Options struct {
	Secret      string
	SessionTTL  time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// Manager выдаёт и читает cookie сессии и flash-сообщений
type Manager struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
	secure      bool
	now         func() time.Time
}

func NewManager(opts Options) *Manager {
	return &Manager{
		secret:      []byte(opts.Secret),
		sessionTTL:  opts.SessionTTL,
		rememberTTL: opts.RememberTTL,
		secure:      opts.Secure,
		now:         time.Now,
	}
}

// Login устанавливает cookie сессии. С remember cookie переживает закрытие
// браузера (Max-Age = RememberTTL), без него живёт до конца сессии браузера,
// но не дольше SessionTTL.
func (m *Manager) Login(w http.ResponseWriter, userID uint, remember bool) error {
	ttl := m.sessionTTL
	if remember {
		ttl = m.rememberTTL
	}

	now := m.now()
	token, err := m.sign(jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}

	c := m.cookie(SessionCookie, token)
	if remember {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = now.Add(ttl)
	}
	http.SetCookie(w, c)
	return nil
}

// Logout удаляет cookie сессии
func (m *Manager) Logout(w http.ResponseWriter) {
	m.clear(w, SessionCookie)
}

// UserID возвращает id пользователя из действующей cookie сессии
func (m *Manager) UserID(r *http.Request) (uint, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return 0, false
	}

	claims := &jwt.RegisteredClaims{}
	if err := m.parse(c.Value, claims, sessionAudience); err != nil {
		return 0, false
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(token string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return err
}

func (m *Manager) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) clear(w http.ResponseWriter, name string) {
	c := m.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}
