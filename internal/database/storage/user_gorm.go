package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// translateError приводит ошибки GORM к доменным
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	default:
		return err
	}
}

// CreateUser сохраняет нового пользователя; user.ID заполняется базой
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if err := s.db.WithContext(ctx).Omit("Posts").Create(user).Error; err != nil {
		s.logger.Error("failed to insert user", "username", user.Username, "error", err)
		return fmt.Errorf("insert user: %w", translateError(err))
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *UserStorage) getUser(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("user not found", "cond", cond)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to select user", "cond", cond, "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// UpdateProfile перезаписывает имя, почту и картинку профиля
func (s *UserStorage) UpdateProfile(ctx context.Context, id uint, username, email, imageFile string) error {
	return s.update(ctx, id, map[string]any{
		"username":   username,
		"email":      email,
		"image_file": imageFile,
	})
}

// UpdatePassword сохраняет новый хеш пароля
func (s *UserStorage) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return s.update(ctx, id, map[string]any{"password": passwordHash})
}

func (s *UserStorage) update(ctx context.Context, id uint, fields map[string]any) error {
	start := time.Now()

	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", res.Error)
		return fmt.Errorf("update user %d: %w", id, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	s.logger.Info("user updated",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
