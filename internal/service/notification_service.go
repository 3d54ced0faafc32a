package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// EventPublisher mirrors the Redis publish surface the service fans
// events out to.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans lifecycle events out to the people involved
// with an issue: the reporter, the current assignee and the handlers
// bound to the issue's tier. Each recipient gets a persisted inbox row;
// the raw event is also published on a Redis channel for external
// consumers.
type NotificationService struct {
	notifications repository.NotificationRepository
	issues        repository.IssueRepository
	hierarchy     *HierarchyService
	dispatcher    events.Dispatcher
	publisher     EventPublisher
	cfg           config.NotificationConfig
	logger        *zap.Logger
}

// NewNotificationService instantiates service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	issues repository.IssueRepository,
	hierarchy *HierarchyService,
	dispatcher events.Dispatcher,
	publisher EventPublisher,
	cfg config.NotificationConfig,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		issues:        issues,
		hierarchy:     hierarchy,
		dispatcher:    dispatcher,
		publisher:     publisher,
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterHandlers subscribes the service to every lifecycle event
// type.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	types := []events.EventType{
		events.EventIssueCreated,
		events.EventIssueAccepted,
		events.EventIssueAssigned,
		events.EventIssueEscalated,
		events.EventIssueResolved,
		events.EventIssueConfirmed,
		events.EventIssueReRaised,
		events.EventIssueRejected,
		events.EventAssignmentRemoved,
	}
	for _, eventType := range types {
		s.dispatcher.Subscribe(eventType, s.handleEvent)
	}
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	issue, err := s.issues.GetByID(ctx, event.IssueID)
	if err != nil {
		s.logger.Warn("notification: issue lookup failed",
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
		return err
	}

	message := messageFor(event, issue)
	for _, recipientID := range s.recipients(ctx, issue, event.ActorID) {
		notification := &domain.Notification{
			RecipientID: recipientID,
			IssueID:     issue.ID,
			EventType:   string(event.Type),
			Message:     message,
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			s.logger.Warn("notification: persist failed",
				zap.String("recipient_id", recipientID),
				zap.Error(err))
			continue
		}
		s.deliver(recipientID, message)
	}

	s.publishRedis(ctx, event)
	return nil
}

// recipients collects everyone who should hear about the event, minus
// the actor who caused it. Order is stable so delivery is predictable
// in tests.
func (s *NotificationService) recipients(ctx context.Context, issue *domain.Issue, actorID string) []string {
	seen := map[string]struct{}{actorID: {}}
	var result []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	add(issue.ReporterID)
	if issue.AssigneeID != nil {
		add(*issue.AssigneeID)
	}
	if issue.NodeID != nil {
		ids, err := s.hierarchy.MemberIDs(ctx, *issue.NodeID)
		if err != nil {
			s.logger.Warn("notification: member lookup failed",
				zap.String("node_id", *issue.NodeID),
				zap.Error(err))
		}
		for _, id := range ids {
			add(id)
		}
	}
	return result
}

func (s *NotificationService) publishRedis(ctx context.Context, event events.Event) {
	if s.publisher == nil || s.cfg.RedisChannel == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("notification: event marshal failed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.cfg.RedisChannel, payload); err != nil {
		s.logger.Warn("notification: redis publish failed",
			zap.String("channel", s.cfg.RedisChannel),
			zap.Error(err))
	}
}

// deliver is the outbound channel stub. Real email/webhook transports
// plug in here; for now delivery is logged.
func (s *NotificationService) deliver(recipientID, message string) {
	s.logger.Info("notification delivered",
		zap.String("recipient_id", recipientID),
		zap.String("from", s.cfg.EmailFrom),
		zap.String("message", message))
}

func messageFor(event events.Event, issue *domain.Issue) string {
	switch event.Type {
	case events.EventIssueCreated:
		return fmt.Sprintf("Issue %s was reported: %s", issue.TicketNumber, issue.Title)
	case events.EventIssueAccepted:
		return fmt.Sprintf("Issue %s was accepted for handling", issue.TicketNumber)
	case events.EventIssueAssigned:
		return fmt.Sprintf("Issue %s was assigned", issue.TicketNumber)
	case events.EventIssueEscalated:
		return fmt.Sprintf("Issue %s was escalated", issue.TicketNumber)
	case events.EventIssueResolved:
		return fmt.Sprintf("Issue %s was resolved and awaits confirmation", issue.TicketNumber)
	case events.EventIssueConfirmed:
		return fmt.Sprintf("Issue %s was confirmed and closed", issue.TicketNumber)
	case events.EventIssueReRaised:
		return fmt.Sprintf("Issue %s was re-raised by its reporter", issue.TicketNumber)
	case events.EventIssueRejected:
		return fmt.Sprintf("A rejection was recorded on issue %s", issue.TicketNumber)
	case events.EventAssignmentRemoved:
		return fmt.Sprintf("An assignment on issue %s was removed", issue.TicketNumber)
	default:
		return fmt.Sprintf("Issue %s was updated", issue.TicketNumber)
	}
}

// ListForRecipient returns a user's notification inbox, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	return s.notifications.ListByRecipient(ctx, recipientID, limit, offset)
}

// MarkRead flags a notification as read. Only the recipient can mark
// their own rows.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID, recipientID); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": notificationID})
	}
	return nil
}
