// Package repository holds the persistence interfaces of the service and their
// MongoDB and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"civicfix-be/models"
)

var (
	// ErrNotFound is returned when a document does not exist or a conditional
	// write matched nothing.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("document already exists")
)

// SortField is a sortable issue attribute.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpvotes   SortField = "upvotesCount"
	SortViews     SortField = "viewsCount"
	SortComments  SortField = "commentsCount"
	SortLocation  SortField = "location"
)

// IssueFilter selects issues. Zero values do not constrain. Soft-deleted issues never match.
type IssueFilter struct {
	Search     string
	Status     models.IssueStatus
	Priority   models.IssuePriority
	CategoryID string
	ReporterID string
	Tags       []string
}

// IssueSort orders a result set. Ties always fall back to ascending id.
type IssueSort struct {
	Field      SortField
	Descending bool
}

// CounterDelta is a set of increments applied atomically to one issue.
type CounterDelta struct {
	Upvotes   int64
	Downvotes int64
	Comments  int64
	Views     int64
}

// IssueUpdate carries owner-editable fields. Nil means unchanged.
type IssueUpdate struct {
	Title       *string
	Description *string
	Priority    *models.IssuePriority
	Tags        *[]string
	Images      *[]string
}

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	Find(ctx context.Context, filter IssueFilter, sort IssueSort, skip, limit int64) ([]models.Issue, int64, error)
	Update(ctx context.Context, id string, update IssueUpdate) (*models.Issue, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// UpdateStatus moves an issue from one status to another. It fails with
	// ErrNotFound if the stored status is no longer from. resolvedAt is only
	// written when non-nil.
	UpdateStatus(ctx context.Context, id string, from, to models.IssueStatus, resolvedAt *time.Time) (*models.Issue, error)
	IncrementCounters(ctx context.Context, id string, delta CounterDelta) (*models.Issue, error)
	SetVoteCounts(ctx context.Context, id string, upvotes, downvotes int64) (*models.Issue, error)
	CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error)
}

type VoteRepository interface {
	FindOne(ctx context.Context, userID, issueID string) (*models.Vote, error)
	// Create fails with ErrConflict if the user already voted on the issue.
	Create(ctx context.Context, vote *models.Vote) error
	// UpdateDirection sets vote.Type if the stored direction is still from.
	UpdateDirection(ctx context.Context, vote *models.Vote, from models.VoteType) error
	// Delete removes the vote if its stored direction is still vote.Type.
	Delete(ctx context.Context, vote *models.Vote) error
	CountByIssue(ctx context.Context, issueID string) (upvotes, downvotes int64, err error)
	FindForIssues(ctx context.Context, userID string, issueIDs []string) (map[string]models.VoteType, error)
	Count(ctx context.Context) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	// FindTopLevel returns top-level comments of an issue, newest first.
	FindTopLevel(ctx context.Context, issueID string, skip, limit int64) ([]models.Comment, int64, error)
	// FindReplies returns replies to the given parents, oldest first.
	FindReplies(ctx context.Context, parentIDs []string) ([]models.Comment, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	UpdateProfile(ctx context.Context, id string, profile ProfileUpdate) (*models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// ProfileUpdate carries user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	Location *string
	Phone    *string
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	FindForUser(ctx context.Context, userID string, unreadOnly bool, skip, limit int64) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// Store bundles every repository behind one backend.
type Store struct {
	Issues        IssueRepository
	Votes         VoteRepository
	Comments      CommentRepository
	Users         UserRepository
	Notifications NotificationRepository
}
