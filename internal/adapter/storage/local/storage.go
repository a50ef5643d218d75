// Package local хранит картинки профиля в каталоге на диске
// (по умолчанию static/profile_pics).
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

// Storage реализует ports.FileStorage поверх файловой системы
type Storage struct {
	dir    string
	logger *slog.Logger
}

// NewStorage создаёт каталог, если его нет
func NewStorage(dir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// path отсекает попытки выйти за пределы каталога
func (s *Storage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("недопустимое имя файла %q: %w", key, domain.ErrNotFound)
	}
	return filepath.Join(s.dir, key), nil
}

// Save создаёт файл с O_EXCL: существующий файл не перезаписывается (domain.ErrFileExists)
func (s *Storage) Save(_ context.Context, key string, content io.Reader, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.ErrFileExists
		}
		return fmt.Errorf("ошибка создания файла %s: %w", key, err)
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("ошибка записи файла %s: %w", key, err)
	}

	s.logger.Info("file saved", "key", key, "bytes", n)
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", key, err)
	}
	return f, nil
}

// Delete удаляет файл; отсутствующий файл ошибкой не считается
func (s *Storage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла %s: %w", key, err)
	}
	return nil
}
