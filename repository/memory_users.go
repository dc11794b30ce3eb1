package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"civicfix-be/models"
)

type memoryUsers struct {
	mu      sync.RWMutex
	ids     *arena
	users   map[string]*models.User
	byEmail map[string]string
}

func newMemoryUsers(ids *arena) *memoryUsers {
	return &memoryUsers{
		ids:     ids,
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(user *models.User) *models.User {
	out := *user
	if user.LastLoginAt != nil {
		t := *user.LastLoginAt
		out.LastLoginAt = &t
	}
	return &out
}

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return ErrConflict
	}
	if user.ID == "" {
		user.ID = r.ids.id()
	}
	user.Email = email
	r.users[user.ID] = cloneUser(user)
	r.byEmail[email] = user.ID
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *memoryUsers) FindByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = *cloneUser(user)
		}
	}
	return out, nil
}

func (r *memoryUsers) UpdateProfile(_ context.Context, id string, profile ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if profile.Name != nil {
		user.Name = *profile.Name
	}
	if profile.Bio != nil {
		user.Bio = *profile.Bio
	}
	if profile.Location != nil {
		user.Location = *profile.Location
	}
	if profile.Phone != nil {
		user.Phone = *profile.Phone
	}
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

func (r *memoryUsers) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastLoginAt = &at
	user.LoginCount++
	return nil
}
