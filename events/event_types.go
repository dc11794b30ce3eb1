package events

import (
	"time"

	"civicfix-be/models"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueVoted         EventType = "issue.voted"
	EventIssueStatusChanged EventType = "issue.status_changed"
	EventCommentAdded       EventType = "comment.added"
)

// Event is a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issueId"`
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, issueID, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issueID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// IssueVotedPayload carries the counters as they stood after the vote committed.
type IssueVotedPayload struct {
	IssueTitle     string          `json:"issueTitle"`
	ReporterID     string          `json:"reporterId"`
	VoteType       models.VoteType `json:"voteType"`
	UpvotesCount   int64           `json:"upvotesCount"`
	DownvotesCount int64           `json:"downvotesCount"`
}

type IssueStatusChangedPayload struct {
	IssueTitle string             `json:"issueTitle"`
	ReporterID string             `json:"reporterId"`
	OldStatus  models.IssueStatus `json:"oldStatus"`
	NewStatus  models.IssueStatus `json:"newStatus"`
}

type CommentAddedPayload struct {
	IssueTitle  string `json:"issueTitle"`
	ReporterID  string `json:"reporterId"`
	CommentID   string `json:"commentId"`
	BodyPreview string `json:"bodyPreview"`
}
