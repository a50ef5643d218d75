package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

const resetAudience = "reset_password"

// ResetClaims — содержимое токена сброса пароля.
// Fingerprint привязывает токен к хешу пароля, действовавшему на момент выдачи:
// после смены пароля токен перестаёт проходить проверку.
type ResetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ResetTokens выпускает и проверяет подписанные токены сброса пароля
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue подписывает токен для пользователя (HS256)
func (t *ResetTokens) Issue(user *domain.User) (string, error) {
	now := t.now()
	claims := ResetClaims{
		Fingerprint: PasswordFingerprint(user.Password),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Audience:  jwt.ClaimStrings{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия и возвращает id пользователя и отпечаток.
// Любая проблема с токеном возвращается как domain.ErrInvalidToken
func (t *ResetTokens) Verify(token string) (uint, string, error) {
	claims := &ResetClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, "", fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}
	return uint(id), claims.Fingerprint, nil
}

// MatchesFingerprint сообщает, выдан ли токен для текущего хеша пароля
func MatchesFingerprint(passwordHash, fingerprint string) bool {
	return subtle.ConstantTimeCompare([]byte(PasswordFingerprint(passwordHash)), []byte(fingerprint)) == 1
}

// PasswordFingerprint считает короткий отпечаток хеша пароля, сам хеш в токен не попадает
func PasswordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
