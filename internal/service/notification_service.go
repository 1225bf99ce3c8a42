package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/strategy-hub/internal/config"
	"github.com/spec-kit/strategy-hub/internal/events"
)

// NotificationEvents lists the event types NotificationService handles.
var NotificationEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventUserLoggedIn,
	events.EventGuestEntered,
	events.EventTokenRevoked,
}

// NotificationService reacts to account events. Email delivery is stubbed.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle processes one event. Unknown types are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		return n.handleUserRegistered(ctx, event)
	case events.EventTokenRevoked:
		return n.handleTokenRevoked(ctx, event)
	case events.EventUserLoggedIn, events.EventGuestEntered:
		return n.handleAudit(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.Int64("subject_id", event.SubjectID))
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return nil
	}
	n.sendWelcomeEmailStub(ctx, payload.Email)
	return nil
}

func (n *NotificationService) handleTokenRevoked(_ context.Context, event events.Event) error {
	fields := []zap.Field{zap.Int64("subject_id", event.SubjectID), zap.String("event_id", event.ID)}
	if payload, ok := event.Payload.(events.TokenRevokedPayload); ok {
		fields = append(fields,
			zap.String("reason", payload.Reason),
			zap.String("kind", payload.Kind),
			zap.Duration("remaining", payload.Remaining),
			zap.Int64("actor_id", payload.ActorID))
	}
	n.logger.Info("TokenRevoked", fields...)
	return nil
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.logger.Info("AuthEvent", zap.String("event_type", string(event.Type)), zap.Int64("subject_id", event.SubjectID))
	return nil
}

func (n *NotificationService) sendWelcomeEmailStub(_ context.Context, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendWelcomeEmailStub", zap.String("from", n.cfg.EmailFrom), zap.String("to", to))
}
