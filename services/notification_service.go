package services

import (
	"context"
	"fmt"
	"time"

	"civicfix-be/events"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"go.uber.org/zap"
)

// NotificationService turns domain events into notifications for issue
// reporters and serves each user's inbox.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueVoted, n.handleIssueVoted)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleIssueVoted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueVotedPayload)
	if !ok || payload.ReporterID == "" || payload.ReporterID == event.ActorID {
		return nil
	}

	up, down := payload.UpvotesCount, payload.DownvotesCount
	notification := &models.Notification{
		UserID:        payload.ReporterID,
		IssueID:       event.IssueID,
		RelatedUserID: event.ActorID,
		Metadata: models.NotificationMetadata{
			IssueTitle:    payload.IssueTitle,
			UpvoteCount:   &up,
			DownvoteCount: &down,
		},
	}
	if payload.VoteType == models.Upvote {
		notification.Type = models.NotifyUpvote
		notification.Title = "Your Report Got Upvoted"
		notification.Message = fmt.Sprintf("%q now has %d upvotes", payload.IssueTitle, up)
	} else {
		notification.Type = models.NotifyDownvote
		notification.Title = "Your Report Got Downvoted"
		notification.Message = fmt.Sprintf("%q now has %d downvotes", payload.IssueTitle, down)
	}
	return n.store(ctx, event, notification)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueStatusChangedPayload)
	if !ok || payload.ReporterID == "" {
		return nil
	}
	return n.store(ctx, event, &models.Notification{
		UserID:        payload.ReporterID,
		Type:          models.NotifyStatusUpdate,
		Title:         "Issue Status Updated",
		Message:       fmt.Sprintf("%q moved from %s to %s", payload.IssueTitle, payload.OldStatus, payload.NewStatus),
		IssueID:       event.IssueID,
		RelatedUserID: event.ActorID,
		Metadata:      models.NotificationMetadata{IssueTitle: payload.IssueTitle},
	})
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok || payload.ReporterID == "" || payload.ReporterID == event.ActorID {
		return nil
	}
	return n.store(ctx, event, &models.Notification{
		UserID:        payload.ReporterID,
		Type:          models.NotifyComment,
		Title:         "New Comment",
		Message:       fmt.Sprintf("Someone commented on %q", payload.IssueTitle),
		IssueID:       event.IssueID,
		RelatedUserID: event.ActorID,
		Metadata: models.NotificationMetadata{
			IssueTitle:     payload.IssueTitle,
			CommentContent: payload.BodyPreview,
		},
	})
}

func (n *NotificationService) store(ctx context.Context, event events.Event, notification *models.Notification) error {
	notification.CreatedAt = time.Now()
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.logger.Debug("notification stored",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", notification.UserID))
	return nil
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    Pagination            `json:"pagination"`
}

func (n *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int64) (*NotificationPage, error) {
	items, total, err := n.notifications.FindForUser(ctx, userID, unreadOnly, pageOffset(page, limit), limit)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return &NotificationPage{Notifications: items, Pagination: newPagination(page, limit, total)}, nil
}

func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return storeError(n.notifications.MarkRead(ctx, id, userID), "Notification")
}

func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	changed, err := n.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError(err)
	}
	return changed, nil
}

func (n *NotificationService) Delete(ctx context.Context, userID, id string) error {
	return storeError(n.notifications.Delete(ctx, id, userID), "Notification")
}
