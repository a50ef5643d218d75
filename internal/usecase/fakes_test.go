package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []domain.MailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg domain.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() domain.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type memFileStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemFileStorage() *memFileStorage {
	return &memFileStorage{files: map[string][]byte{}}
}

func (s *memFileStorage) Save(_ context.Context, key string, content io.Reader, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[key]; ok {
		return domain.ErrFileExists
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.files[key] = data
	return nil
}

func (s *memFileStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memFileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}
