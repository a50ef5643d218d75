package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/domain"
)

// postUseCase implements PostUseCase
type postUseCase struct {
	postStorage ports.PostStorage
	userStorage ports.UserStorage
	perPage     int
	logger      *slog.Logger
}

// NewPostUseCase создает новый экземпляр PostUseCase; perPage задаёт размер страницы ленты
func NewPostUseCase(
	postStorage ports.PostStorage,
	userStorage ports.UserStorage,
	perPage int,
	logger *slog.Logger,
) PostUseCase {
	if perPage <= 0 {
		perPage = 2
	}
	return &postUseCase{
		postStorage: postStorage,
		userStorage: userStorage,
		perPage:     perPage,
		logger:      logger,
	}
}

func (uc *postUseCase) ListPosts(ctx context.Context, page int) (domain.Page[domain.Post], error) {
	return uc.list(ctx, 0, page)
}

func (uc *postUseCase) ListUserPosts(ctx context.Context, username string, page int) (*domain.User, domain.Page[domain.Post], error) {
	user, err := uc.userStorage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.Page[domain.Post]{}, err
	}

	p, err := uc.list(ctx, user.ID, page)
	if err != nil {
		return nil, domain.Page[domain.Post]{}, err
	}
	return user, p, nil
}

// list реализует общую пагинацию: страница < 1 или пустая страница после первой дают ErrNotFound,
// первая страница пустой ленты допустима
func (uc *postUseCase) list(ctx context.Context, authorID uint, page int) (domain.Page[domain.Post], error) {
	if page < 1 {
		return domain.Page[domain.Post]{}, domain.ErrNotFound
	}
	// смещение такой страницы не помещается в int, записей там точно нет
	if page-1 > math.MaxInt/uc.perPage {
		return domain.Page[domain.Post]{}, domain.ErrNotFound
	}

	posts, total, err := uc.postStorage.ListPosts(ctx, authorID, domain.Offset(page, uc.perPage), uc.perPage)
	if err != nil {
		return domain.Page[domain.Post]{}, fmt.Errorf("usecase: ошибка при получении ленты: %w", err)
	}
	if len(posts) == 0 && page > 1 {
		return domain.Page[domain.Post]{}, domain.ErrNotFound
	}

	return domain.NewPage(posts, page, uc.perPage, total), nil
}

func (uc *postUseCase) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return uc.postStorage.GetPostByID(ctx, id)
}

func (uc *postUseCase) CreatePost(ctx context.Context, authorID uint, title, content string) (*domain.Post, error) {
	post := &domain.Post{
		Title:   title,
		Content: content,
		UserID:  authorID,
	}
	if err := uc.postStorage.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании поста: %w", err)
	}

	uc.logger.Info("post published", "post_id", post.ID, "user_id", authorID)
	return post, nil
}

func (uc *postUseCase) GetPostForEdit(ctx context.Context, actorID, id uint) (*domain.Post, error) {
	post, err := uc.postStorage.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(actorID) {
		uc.logger.Warn("post ownership check failed", "post_id", id, "actor_id", actorID, "owner_id", post.UserID)
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, actorID, id uint, title, content string) (*domain.Post, error) {
	post, err := uc.GetPostForEdit(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if err := uc.postStorage.UpdatePost(ctx, post.ID, title, content); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении поста: %w", err)
	}

	post.Title = title
	post.Content = content
	return post, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, actorID, id uint) error {
	post, err := uc.GetPostForEdit(ctx, actorID, id)
	if err != nil {
		return err
	}

	if err := uc.postStorage.DeletePost(ctx, post.ID); err != nil {
		return fmt.Errorf("usecase: ошибка при удалении поста: %w", err)
	}
	return nil
}
