package usecase

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// PostUseCase определяет бизнес-логику постов: ленты с пагинацией и CRUD
// с проверкой авторства
type PostUseCase interface {
	// ListPosts возвращает страницу общей ленты, новые сначала.
	// Номер страницы вне диапазона даёт domain.ErrNotFound
	ListPosts(ctx context.Context, page int) (domain.Page[domain.Post], error)

	// ListUserPosts делает то же для одного автора; неизвестный автор даёт domain.ErrNotFound
	ListUserPosts(ctx context.Context, username string, page int) (*domain.User, domain.Page[domain.Post], error)

	GetPost(ctx context.Context, id uint) (*domain.Post, error)
	CreatePost(ctx context.Context, authorID uint, title, content string) (*domain.Post, error)

	// GetPostForEdit возвращает пост, только если actorID его автор,
	// иначе domain.ErrForbidden
	GetPostForEdit(ctx context.Context, actorID, id uint) (*domain.Post, error)

	UpdatePost(ctx context.Context, actorID, id uint, title, content string) (*domain.Post, error)
	DeletePost(ctx context.Context, actorID, id uint) error
}
