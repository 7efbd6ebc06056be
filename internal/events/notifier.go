package events

import (
	"context"

	"go.uber.org/zap"
)

// Notifier logs every state change and forwards it to the optional bridge.
type Notifier struct {
	dispatcher Dispatcher
	logger     *zap.Logger
	bridge     *AMQPBridge
}

// NewNotifier creates the notifier. bridge may be nil.
func NewNotifier(dispatcher Dispatcher, logger *zap.Logger, bridge *AMQPBridge) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{dispatcher: dispatcher, logger: logger, bridge: bridge}
}

// RegisterHandlers subscribes to every event type.
func (n *Notifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range AllTypes {
		n.dispatcher.Subscribe(t, n.handle)
	}
}

func (n *Notifier) handle(ctx context.Context, event Event) error {
	n.logger.Debug("state changed",
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))
	if n.bridge == nil {
		return nil
	}
	return n.bridge.Handle(ctx, event)
}
