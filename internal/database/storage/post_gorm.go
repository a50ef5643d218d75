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

// PostStorage реализует ports.PostStorage с помощью GORM
type PostStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPostStorage(db *gorm.DB, logger *slog.Logger) *PostStorage {
	return &PostStorage{db: db, logger: logger}
}

// CreatePost сохраняет пост; если DatePosted не задан, ставится текущее время (UTC)
func (s *PostStorage) CreatePost(ctx context.Context, post *domain.Post) error {
	start := time.Now()

	if post.DatePosted.IsZero() {
		post.DatePosted = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		s.logger.Error("failed to save post", "user_id", post.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении поста в БД: %w", translateError(err))
	}

	s.logger.Info("post saved successfully",
		"post_id", post.ID,
		"user_id", post.UserID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetPostByID получает пост вместе с автором
func (s *PostStorage) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("post not found by id", "post_id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get post by id", "post_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении поста по ID: %w", err)
	}
	return &post, nil
}

// UpdatePost перезаписывает заголовок и текст поста
func (s *PostStorage) UpdatePost(ctx context.Context, id uint, title, content string) error {
	res := s.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "content": content})
	if res.Error != nil {
		s.logger.Error("failed to update post", "post_id", id, "error", res.Error)
		return fmt.Errorf("ошибка при обновлении поста %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	s.logger.Info("post updated", "post_id", id)
	return nil
}

// DeletePost удаляет строку поста сразу (без soft delete)
func (s *PostStorage) DeletePost(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Post{}, id)
	if res.Error != nil {
		s.logger.Error("failed to delete post", "post_id", id, "error", res.Error)
		return fmt.Errorf("ошибка при удалении поста %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	s.logger.Info("post deleted", "post_id", id)
	return nil
}

// ListPosts получает страницу постов с пагинацией, новые сначала.
// при authorID == 0 берутся все посты
func (s *PostStorage) ListPosts(ctx context.Context, authorID uint, offset, limit int) ([]domain.Post, int64, error) {
	start := time.Now()

	// GORM-цепочку нельзя переиспользовать после Count, поэтому строим её заново
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&domain.Post{})
		if authorID != 0 {
			q = q.Where("user_id = ?", authorID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		s.logger.Error("failed to count posts", "author_id", authorID, "error", err)
		return nil, 0, fmt.Errorf("ошибка при подсчёте постов: %w", err)
	}

	var posts []domain.Post
	err := scoped().Preload("Author").
		Order("date_posted DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		s.logger.Error("failed to list posts",
			"author_id", authorID,
			"offset", offset,
			"limit", limit,
			"error", err,
		)
		return nil, 0, fmt.Errorf("ошибка при получении списка постов: %w", err)
	}

	s.logger.Debug("listed posts successfully",
		"author_id", authorID,
		"offset", offset,
		"count", len(posts),
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return posts, total, nil
}
