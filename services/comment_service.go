package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"civicfix-be/events"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"go.uber.org/zap"
)

const (
	maxCommentLength = 2000
	previewLength    = 100
)

// CommentService manages comments and their single level of replies.
type CommentService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewCommentService(store *repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		issues:     store.Issues,
		comments:   store.Comments,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type CommentPage struct {
	Comments   []models.CommentThread `json:"comments"`
	Pagination Pagination             `json:"pagination"`
}

// List returns top-level comments newest first, each with its replies oldest first.
func (s *CommentService) List(ctx context.Context, issueID string, page, limit int64) (*CommentPage, error) {
	if _, err := s.issues.FindByID(ctx, issueID); err != nil {
		return nil, storeError(err, "Issue")
	}

	top, total, err := s.comments.FindTopLevel(ctx, issueID, pageOffset(page, limit), limit)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	parentIDs := make([]string, len(top))
	for i := range top {
		parentIDs[i] = top[i].ID
	}
	replies, err := s.comments.FindReplies(ctx, parentIDs)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	byParent := make(map[string][]models.Comment, len(top))
	for _, reply := range replies {
		byParent[reply.ParentID] = append(byParent[reply.ParentID], reply)
	}

	threads := make([]models.CommentThread, len(top))
	for i := range top {
		children := byParent[top[i].ID]
		if children == nil {
			children = []models.Comment{}
		}
		threads[i] = models.CommentThread{Comment: top[i], Replies: children}
	}
	return &CommentPage{Comments: threads, Pagination: newPagination(page, limit, total)}, nil
}

// Create adds a comment. parentID, when set, must name a top-level comment
// of the same issue.
func (s *CommentService) Create(ctx context.Context, author *models.User, issueID, content, parentID string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewValidationError("Comment content is required", map[string]any{"field": "content"})
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, utils.NewValidationError("Comment is too long", map[string]any{"field": "content", "max": maxCommentLength})
	}

	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}

	parentID = strings.TrimSpace(parentID)
	if parentID != "" {
		parent, err := s.comments.FindByID(ctx, parentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewInternalError(err)
		}
		if parent == nil || parent.IssueID != issueID || parent.ParentID != "" {
			return nil, utils.NewValidationError("Invalid parent comment", map[string]any{"parentId": parentID})
		}
	}

	now := time.Now()
	comment := &models.Comment{
		IssueID:    issueID,
		UserID:     author.ID,
		ParentID:   parentID,
		Content:    content,
		IsOfficial: author.Role.Staff(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, utils.NewInternalError(err)
	}
	if _, err := s.issues.IncrementCounters(ctx, issueID, repository.CounterDelta{Comments: 1}); err != nil {
		s.logger.Error("comment counter update failed", zap.String("issue_id", issueID), zap.Error(err))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventCommentAdded, issueID, author.ID, events.CommentAddedPayload{
			IssueTitle:  issue.Title,
			ReporterID:  issue.ReporterID,
			CommentID:   comment.ID,
			BodyPreview: preview(content),
		}))
	}
	return comment, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	return string([]rune(s)[:previewLength]) + "..."
}
