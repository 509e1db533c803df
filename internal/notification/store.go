package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Store keeps notifications newest first.
type Store struct {
	mu    sync.Mutex
	kv    storage.Store
	ids   idgen.Generator
	clock clock.Clock
	log   *zap.Logger
	items []models.Notification
}

func NewStore(kv storage.Store, ids idgen.Generator, clk clock.Clock, log *zap.Logger) *Store {
	return &Store{kv: kv, ids: ids, clock: clk, log: log}
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Notification
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyNotifications, &items); err != nil {
		return err
	}
	s.items = items
	return nil
}

func (s *Store) Add(ctx context.Context, title, message string, typ models.NotificationType) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	n := models.Notification{
		ID:        s.ids.Next(),
		Title:     title,
		Message:   message,
		Type:      typ,
		Date:      now.Format(models.LongDateLayout),
		CreatedAt: now,
	}

	next := make([]models.Notification, 0, len(s.items)+1)
	next = append(next, n)
	next = append(next, s.items...)
	if err := s.save(ctx, next); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (s *Store) List() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

func (s *Store) MarkAsRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotificationNotFound
	}
	if s.items[idx].Read {
		return nil
	}

	next := append([]models.Notification(nil), s.items...)
	next[idx].Read = true
	return s.save(ctx, next)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotificationNotFound
	}

	next := make([]models.Notification, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	return s.save(ctx, next)
}

func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (s *Store) indexOf(id int64) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) save(ctx context.Context, next []models.Notification) error {
	if err := storage.PutJSON(ctx, s.kv, storage.KeyNotifications, next); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	s.items = next
	return nil
}
