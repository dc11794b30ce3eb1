package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civicfix-be/models"
)

type memoryIssues struct {
	mu     sync.RWMutex
	ids    *arena
	issues map[string]*models.Issue
}

func newMemoryIssues(ids *arena) *memoryIssues {
	return &memoryIssues{ids: ids, issues: make(map[string]*models.Issue)}
}

func cloneIssue(issue *models.Issue) *models.Issue {
	out := *issue
	out.Tags = cloneStrings(issue.Tags)
	out.Images = cloneStrings(issue.Images)
	if issue.ResolvedAt != nil {
		t := *issue.ResolvedAt
		out.ResolvedAt = &t
	}
	if issue.DeletedAt != nil {
		t := *issue.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

func (r *memoryIssues) Create(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if issue.ID == "" {
		issue.ID = r.ids.id()
	}
	if _, exists := r.issues[issue.ID]; exists {
		return ErrConflict
	}
	r.issues[issue.ID] = cloneIssue(issue)
	return nil
}

// live returns the stored issue unless it is missing or soft-deleted. Callers hold the lock.
func (r *memoryIssues) live(id string) (*models.Issue, error) {
	issue, ok := r.issues[id]
	if !ok || issue.Deleted() {
		return nil, ErrNotFound
	}
	return issue, nil
}

func (r *memoryIssues) FindByID(_ context.Context, id string) (*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return cloneIssue(issue), nil
}

func (r *memoryIssues) Find(_ context.Context, filter IssueFilter, order IssueSort, skip, limit int64) ([]models.Issue, int64, error) {
	r.mu.RLock()
	matched := make([]models.Issue, 0)
	for _, issue := range r.issues {
		if matchesFilter(issue, filter) {
			matched = append(matched, *cloneIssue(issue))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		c := compareIssues(&matched[i], &matched[j], order.Field)
		if c == 0 {
			return matched[i].ID < matched[j].ID
		}
		if order.Descending {
			return c > 0
		}
		return c < 0
	})

	return page(matched, skip, limit), int64(len(matched)), nil
}

func matchesFilter(issue *models.Issue, filter IssueFilter) bool {
	if issue.Deleted() {
		return false
	}
	if filter.Status != "" && issue.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && issue.Priority != filter.Priority {
		return false
	}
	if filter.CategoryID != "" && issue.CategoryID != filter.CategoryID {
		return false
	}
	if filter.ReporterID != "" && issue.ReporterID != filter.ReporterID {
		return false
	}
	if len(filter.Tags) > 0 && !anyTag(issue.Tags, filter.Tags) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(issue.Title), needle) &&
			!strings.Contains(strings.ToLower(issue.Description), needle) &&
			!strings.Contains(strings.ToLower(issue.Location.Address), needle) {
			return false
		}
	}
	return true
}

func anyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func compareIssues(a, b *models.Issue, field SortField) int {
	switch field {
	case SortUpvotes:
		return compareInt(a.UpvotesCount, b.UpvotesCount)
	case SortViews:
		return compareInt(a.ViewsCount, b.ViewsCount)
	case SortComments:
		return compareInt(a.CommentsCount, b.CommentsCount)
	case SortLocation:
		return strings.Compare(a.Location.Address, b.Location.Address)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *memoryIssues) Update(_ context.Context, id string, update IssueUpdate) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, err := r.live(id)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		issue.Title = *update.Title
	}
	if update.Description != nil {
		issue.Description = *update.Description
	}
	if update.Priority != nil {
		issue.Priority = *update.Priority
	}
	if update.Tags != nil {
		issue.Tags = cloneStrings(*update.Tags)
	}
	if update.Images != nil {
		issue.Images = cloneStrings(*update.Images)
	}
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (r *memoryIssues) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, err := r.live(id)
	if err != nil {
		return err
	}
	issue.DeletedAt = &at
	issue.UpdatedAt = at
	return nil
}

func (r *memoryIssues) UpdateStatus(_ context.Context, id string, from, to models.IssueStatus, resolvedAt *time.Time) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, err := r.live(id)
	if err != nil {
		return nil, err
	}
	if issue.Status != from {
		return nil, ErrNotFound
	}
	issue.Status = to
	if resolvedAt != nil {
		t := *resolvedAt
		issue.ResolvedAt = &t
	}
	issue.UpdatedAt = time.Now()
	return cloneIssue(issue), nil
}

func (r *memoryIssues) IncrementCounters(_ context.Context, id string, delta CounterDelta) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, err := r.live(id)
	if err != nil {
		return nil, err
	}
	issue.UpvotesCount += delta.Upvotes
	issue.DownvotesCount += delta.Downvotes
	issue.CommentsCount += delta.Comments
	issue.ViewsCount += delta.Views
	return cloneIssue(issue), nil
}

func (r *memoryIssues) SetVoteCounts(_ context.Context, id string, upvotes, downvotes int64) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, err := r.live(id)
	if err != nil {
		return nil, err
	}
	issue.UpvotesCount = upvotes
	issue.DownvotesCount = downvotes
	return cloneIssue(issue), nil
}

func (r *memoryIssues) CountByStatus(_ context.Context) (map[models.IssueStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.IssueStatus]int64)
	for _, issue := range r.issues {
		if !issue.Deleted() {
			counts[issue.Status]++
		}
	}
	return counts, nil
}
