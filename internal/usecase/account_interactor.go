package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/BlogApp/internal/auth"
	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
)

const (
	// pictureNameAttempts: сколько случайных имён пробуем при коллизии
	pictureNameAttempts = 3

	resetMailSubject = "Password Reset Request"
)

// accountUseCase implements AccountUseCase
type accountUseCase struct {
	userStorage ports.UserStorage
	fileStorage ports.FileStorage
	mailer      ports.Mailer
	resetTokens *auth.ResetTokens
	baseURL     string
	newName     func() (string, error)
	logger      *slog.Logger
}

// NewAccountUseCase создает новый экземпляр AccountUseCase.
// baseURL нужен для абсолютной ссылки в письме сброса пароля
func NewAccountUseCase(
	userStorage ports.UserStorage,
	fileStorage ports.FileStorage,
	mailer ports.Mailer,
	resetTokens *auth.ResetTokens,
	baseURL string,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		userStorage: userStorage,
		fileStorage: fileStorage,
		mailer:      mailer,
		resetTokens: resetTokens,
		baseURL:     strings.TrimRight(baseURL, "/"),
		newName:     randomPictureName,
		logger:      logger,
	}
}

func (uc *accountUseCase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if err := uc.checkUnique(ctx, 0, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		ImageFile: domain.DefaultImageFile,
	}
	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// кто-то успел занять имя или почту между проверкой и вставкой
			if uerr := uc.checkUnique(ctx, 0, username, email); uerr != nil {
				return nil, uerr
			}
		}
		return nil, fmt.Errorf("usecase: ошибка при создании пользователя: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// checkUnique проверяет, что имя и почта свободны или принадлежат самому selfID
func (uc *accountUseCase) checkUnique(ctx context.Context, selfID uint, username, email string) error {
	var errs []error

	taken, err := uc.taken(ctx, selfID, uc.userStorage.GetUserByUsername, username)
	if err != nil {
		return err
	}
	if taken {
		errs = append(errs, domain.ErrUsernameTaken)
	}

	taken, err = uc.taken(ctx, selfID, uc.userStorage.GetUserByEmail, email)
	if err != nil {
		return err
	}
	if taken {
		errs = append(errs, domain.ErrEmailTaken)
	}

	return errors.Join(errs...)
}

func (uc *accountUseCase) taken(
	ctx context.Context,
	selfID uint,
	lookup func(context.Context, string) (*domain.User, error),
	value string,
) (bool, error) {
	existing, err := lookup(ctx, value)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("usecase: ошибка проверки уникальности: %w", err)
	}
	return existing.ID != selfID, nil
}

func (uc *accountUseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (uc *accountUseCase) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return uc.userStorage.GetUserByID(ctx, id)
}

func (uc *accountUseCase) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return uc.userStorage.GetUserByUsername(ctx, username)
}

func (uc *accountUseCase) UpdateAccount(ctx context.Context, userID uint, upd AccountUpdate) (*domain.User, error) {
	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.checkUnique(ctx, user.ID, upd.Username, upd.Email); err != nil {
		return nil, err
	}

	imageFile := user.ImageFile
	if upd.Picture != nil {
		imageFile, err = uc.savePicture(ctx, upd)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.userStorage.UpdateProfile(ctx, user.ID, upd.Username, upd.Email, imageFile); err != nil {
		if imageFile != user.ImageFile {
			// на новую картинку никто не ссылается
			if derr := uc.fileStorage.Delete(ctx, imageFile); derr != nil {
				uc.logger.Warn("failed to delete orphaned profile picture", "file", imageFile, "error", derr)
			}
		}
		if errors.Is(err, domain.ErrConflict) {
			if uerr := uc.checkUnique(ctx, user.ID, upd.Username, upd.Email); uerr != nil {
				return nil, uerr
			}
		}
		return nil, fmt.Errorf("usecase: ошибка при обновлении профиля: %w", err)
	}

	if imageFile != user.ImageFile && user.ImageFile != domain.DefaultImageFile {
		// старая картинка больше никому не нужна; ошибка не мешает обновлению
		if err := uc.fileStorage.Delete(ctx, user.ImageFile); err != nil {
			uc.logger.Warn("failed to delete old profile picture", "file", user.ImageFile, "error", err)
		}
	}

	user.Username = upd.Username
	user.Email = upd.Email
	user.ImageFile = imageFile

	uc.logger.Info("account updated", "user_id", user.ID, "image_file", imageFile)
	return user, nil
}

// savePicture сохраняет картинку под случайным именем <16 hex><расширение>.
// Хранилище отвечает domain.ErrFileExists до чтения данных, поэтому повтор безопасен
func (uc *accountUseCase) savePicture(ctx context.Context, upd AccountUpdate) (string, error) {
	ext := strings.ToLower(upd.PictureExt)

	for attempt := 1; attempt <= pictureNameAttempts; attempt++ {
		name, err := uc.newName()
		if err != nil {
			return "", fmt.Errorf("usecase: ошибка генерации имени файла: %w", err)
		}
		name += ext

		err = uc.fileStorage.Save(ctx, name, upd.Picture, upd.ContentType)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, domain.ErrFileExists) {
			return "", fmt.Errorf("usecase: ошибка сохранения картинки профиля: %w", err)
		}
		uc.logger.Warn("profile picture name collision", "file", name, "attempt", attempt)
	}

	return "", fmt.Errorf("usecase: не удалось подобрать свободное имя файла: %w", domain.ErrFileExists)
}

// randomPictureName даёт 8 случайных байт в hex (16 символов)
func randomPictureName() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (uc *accountUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := uc.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}

	token, err := uc.resetTokens.Issue(user)
	if err != nil {
		return fmt.Errorf("usecase: %w", err)
	}

	msg := domain.MailMessage{
		To:      user.Email,
		Subject: resetMailSubject,
		Body:    resetMailBody(uc.baseURL + "/reset_password/" + token),
	}
	if err := uc.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("usecase: ошибка отправки письма сброса пароля: %w", err)
	}

	uc.logger.Info("password reset mail sent", "user_id", user.ID)
	return nil
}

func resetMailBody(link string) string {
	return "To reset the password, visit the following link:\n" +
		link + "\n\n" +
		"If you did not make this request, you can simply ignore it. No changes will be made.\n"
}

func (uc *accountUseCase) VerifyResetToken(ctx context.Context, token string) (*domain.User, error) {
	userID, fp, err := uc.resetTokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := uc.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}

	// пароль уже меняли по этому или более позднему токену
	if !auth.MatchesFingerprint(user.Password, fp) {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

func (uc *accountUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := uc.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := uc.userStorage.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("usecase: ошибка при сохранении пароля: %w", err)
	}

	uc.logger.Info("password reset", "user_id", user.ID)
	return nil
}
