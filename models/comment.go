package models

import "time"

// Comment is text attached to an issue. ParentID allows one level of replies.
type Comment struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	IssueID    string    `bson:"issueId" json:"issueId"`
	UserID     string    `bson:"userId" json:"userId"`
	ParentID   string    `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Content    string    `bson:"content" json:"content"`
	IsOfficial bool      `bson:"isOfficial" json:"isOfficial"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CommentThread is a top-level comment with its replies.
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies"`
}
