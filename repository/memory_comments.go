package repository

import (
	"context"
	"sort"
	"sync"

	"civicfix-be/models"
)

type memoryComments struct {
	mu       sync.RWMutex
	ids      *arena
	comments []models.Comment
}

func newMemoryComments(ids *arena) *memoryComments {
	return &memoryComments{ids: ids}
}

func (r *memoryComments) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = r.ids.id()
	}
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memoryComments) FindByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.comments {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryComments) FindTopLevel(_ context.Context, issueID string, skip, limit int64) ([]models.Comment, int64, error) {
	r.mu.RLock()
	matched := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.IssueID == issueID && c.ParentID == "" {
			matched = append(matched, c)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, skip, limit), int64(len(matched)), nil
}

func (r *memoryComments) FindReplies(_ context.Context, parentIDs []string) ([]models.Comment, error) {
	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}

	r.mu.RLock()
	replies := make([]models.Comment, 0)
	for _, c := range r.comments {
		if _, ok := parents[c.ParentID]; ok && c.ParentID != "" {
			replies = append(replies, c)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}
