package models

import (
	"time"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusPending     IssueStatus = "pending"
	StatusUnderReview IssueStatus = "under_review"
	StatusApproved    IssueStatus = "approved"
	StatusInProgress  IssueStatus = "in_progress"
	StatusResolved    IssueStatus = "resolved"
	StatusRejected    IssueStatus = "rejected"
	StatusDuplicate   IssueStatus = "duplicate"
)

// IssueStatuses lists every status in workflow order.
var IssueStatuses = []IssueStatus{
	StatusPending, StatusUnderReview, StatusApproved, StatusInProgress,
	StatusResolved, StatusRejected, StatusDuplicate,
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	for _, known := range IssueStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s IssueStatus) Terminal() bool {
	return s == StatusResolved || s == StatusRejected || s == StatusDuplicate
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Location is the free-text address of a report. Coordinates are stored
// as given and never queried.
type Location struct {
	Address   string   `bson:"address" json:"address"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID             string        `bson:"_id,omitempty" json:"id"`
	Title          string        `bson:"title" json:"title"`
	Description    string        `bson:"description" json:"description"`
	Location       Location      `bson:"location" json:"location"`
	Status         IssueStatus   `bson:"status" json:"status"`
	Priority       IssuePriority `bson:"priority" json:"priority"`
	Tags           []string      `bson:"tags" json:"tags"`
	Images         []string      `bson:"images" json:"images"`
	ReporterID     string        `bson:"reportedBy" json:"reportedBy"`
	CategoryID     string        `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	IsAnonymous    bool          `bson:"isAnonymous" json:"isAnonymous"`
	UpvotesCount   int64         `bson:"upvotesCount" json:"upvotesCount"`
	DownvotesCount int64         `bson:"downvotesCount" json:"downvotesCount"`
	CommentsCount  int64         `bson:"commentsCount" json:"commentsCount"`
	ViewsCount     int64         `bson:"viewsCount" json:"viewsCount"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt     *time.Time    `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	DeletedAt      *time.Time    `bson:"deletedAt,omitempty" json:"-"`
}

// Deleted reports whether the issue was soft-deleted.
func (i *Issue) Deleted() bool {
	return i.DeletedAt != nil
}

// ReporterSummary is the public profile shown next to a report.
type ReporterSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// IssueWithVote is an issue annotated with the caller's vote and its
// reporter. ReportedBy shadows Issue.ReporterID in JSON so anonymous reports
// can leave it out.
type IssueWithVote struct {
	Issue
	ReportedBy      string           `json:"reportedBy,omitempty"`
	Reporter        *ReporterSummary `json:"reporter,omitempty"`
	CurrentUserVote VoteState        `json:"currentUserVote"`
}
