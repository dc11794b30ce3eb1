package models

import "time"

type NotificationType string

const (
	NotifyStatusUpdate NotificationType = "status_update"
	NotifyComment      NotificationType = "comment"
	NotifyUpvote       NotificationType = "upvote"
	NotifyDownvote     NotificationType = "downvote"
	NotifySystem       NotificationType = "system"
)

type NotificationMetadata struct {
	IssueTitle     string `bson:"issueTitle,omitempty" json:"issueTitle,omitempty"`
	CommentContent string `bson:"commentContent,omitempty" json:"commentContent,omitempty"`
	UpvoteCount    *int64 `bson:"upvoteCount,omitempty" json:"upvoteCount,omitempty"`
	DownvoteCount  *int64 `bson:"downvoteCount,omitempty" json:"downvoteCount,omitempty"`
}

// Notification is addressed to a single user.
type Notification struct {
	ID            string               `bson:"_id,omitempty" json:"id"`
	UserID        string               `bson:"userId" json:"userId"`
	Type          NotificationType     `bson:"type" json:"type"`
	Title         string               `bson:"title" json:"title"`
	Message       string               `bson:"message" json:"message"`
	IssueID       string               `bson:"issueId,omitempty" json:"issueId,omitempty"`
	RelatedUserID string               `bson:"relatedUserId,omitempty" json:"relatedUserId,omitempty"`
	Read          bool                 `bson:"read" json:"read"`
	Metadata      NotificationMetadata `bson:"metadata" json:"metadata"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
}
