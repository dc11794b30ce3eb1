package services

import (
	"civicfix-be/config"
	"civicfix-be/events"
	"civicfix-be/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services is the application layer wired over one store.
type Services struct {
	Auth          *AuthService
	Issues        *IssueService
	Query         *IssueQuery
	Ledger        *VoteLedger
	Workflow      *Workflow
	Comments      *CommentService
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
}

// New builds every service and subscribes the notification handlers. A nil
// Redis client disables view de-duplication and token revocation.
func New(cfg *config.Config, store *repository.Store, redisClient *redis.Client, logger *zap.Logger) *Services {
	dispatcher := events.NewInMemoryDispatcher(logger)

	ledger := NewVoteLedger(store, dispatcher, logger, cfg.Limits.VoteRetryAttempts)
	notifications := NewNotificationService(store.Notifications, dispatcher, logger)
	notifications.RegisterHandlers()

	return &Services{
		Auth: NewAuthService(cfg.Auth, store.Users, NewTokenRevoker(redisClient), logger),
		Issues: NewIssueService(IssueDependencies{
			Store:  store,
			Ledger: ledger,
			Views:  NewViewTracker(redisClient, cfg.Limits.ViewDedupeWindow, logger),
			Logger: logger,
		}),
		Query:         NewIssueQuery(store.Issues, store.Users, ledger),
		Ledger:        ledger,
		Workflow:      NewWorkflow(store.Issues, dispatcher),
		Comments:      NewCommentService(store, dispatcher, logger),
		Notifications: notifications,
		Dispatcher:    dispatcher,
	}
}
