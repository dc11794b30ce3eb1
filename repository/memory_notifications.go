package repository

import (
	"context"
	"sync"

	"civicfix-be/models"
)

// memoryNotifications keeps notifications in insertion order.
type memoryNotifications struct {
	mu    sync.RWMutex
	ids   *arena
	items []models.Notification
}

func newMemoryNotifications(ids *arena) *memoryNotifications {
	return &memoryNotifications{ids: ids}
}

func (r *memoryNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = r.ids.id()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryNotifications) FindForUser(_ context.Context, userID string, unreadOnly bool, skip, limit int64) ([]models.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	return page(matched, skip, limit), int64(len(matched)), nil
}

func (r *memoryNotifications) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *memoryNotifications) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
