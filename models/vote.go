package models

import (
	"time"
)

// VoteType is the direction of a recorded vote.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

// VoteState is a caller's vote on an issue, including the absence of one.
type VoteState string

const (
	VoteStateUpvote   VoteState = "upvote"
	VoteStateDownvote VoteState = "downvote"
	VoteStateNone     VoteState = "none"
)

// StateOf maps a ledger entry to the caller-facing vote state.
func StateOf(v *Vote) VoteState {
	if v == nil {
		return VoteStateNone
	}
	return VoteState(v.Type)
}

// Vote represents a user's vote on an issue. At most one exists per (user, issue).
type Vote struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	IssueID   string    `bson:"issueId" json:"issueId"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      VoteType  `bson:"voteType" json:"voteType"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// VoteTally is the outcome of a vote cast.
type VoteTally struct {
	UpvotesCount    int64     `json:"upvotesCount"`
	DownvotesCount  int64     `json:"downvotesCount"`
	CurrentUserVote VoteState `json:"currentUserVote"`
}
