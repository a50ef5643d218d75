package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// AccountUpdate — новые данные профиля. Picture == nil означает «картинку не менять»
type AccountUpdate struct {
	Username    string
	Email       string
	Picture     io.Reader
	PictureExt  string // расширение исходного файла вместе с точкой, например ".png"
	ContentType string
}

// AccountUseCase определяет бизнес-логику учётных записей: регистрация, вход,
// профиль и двухфазный сброс пароля
type AccountUseCase interface {
	// Register создаёт пользователя с bcrypt-хешем пароля.
	// Занятые имя/почта дают domain.ErrUsernameTaken / domain.ErrEmailTaken (могут прийти обе)
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate проверяет почту и пароль. Неизвестная почта и неверный пароль
	// неразличимы: оба дают domain.ErrInvalidCredentials
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateAccount меняет имя и почту, при наличии сохраняет новую картинку профиля
	UpdateAccount(ctx context.Context, userID uint, upd AccountUpdate) (*domain.User, error)

	// RequestPasswordReset отправляет письмо со ссылкой сброса, если почта известна.
	// Для неизвестной почты ничего не делает и возвращает nil
	RequestPasswordReset(ctx context.Context, email string) error

	// VerifyResetToken возвращает владельца действующего токена или domain.ErrInvalidToken
	VerifyResetToken(ctx context.Context, token string) (*domain.User, error)

	// ResetPassword устанавливает новый пароль; после этого токен недействителен
	ResetPassword(ctx context.Context, token, newPassword string) error
}
