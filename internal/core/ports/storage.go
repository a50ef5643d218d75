package ports

import (
	"context"
	"io"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей.
// Отсутствие записи возвращается как domain.ErrNotFound
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uint, username, email, imageFile string) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
}

// PostStorage определяет методы для взаимодействия с хранилищем постов
type PostStorage interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPostByID(ctx context.Context, id uint) (*domain.Post, error)
	UpdatePost(ctx context.Context, id uint, title, content string) error
	DeletePost(ctx context.Context, id uint) error
	// ListPosts возвращает страницу постов (новые сначала) и общее число;
	// authorID == 0 означает «все авторы»
	ListPosts(ctx context.Context, authorID uint, offset, limit int) ([]domain.Post, int64, error)
}

// FileStorage — хранилище бинарных данных (картинок профиля)
type FileStorage interface {
	// Save сохраняет файл под ключом key; занятый ключ даёт domain.ErrFileExists
	Save(ctx context.Context, key string, content io.Reader, contentType string) error
	// Open открывает файл на чтение; отсутствующий даёт domain.ErrNotFound
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
