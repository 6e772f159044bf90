package cmd

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpilot/chainpilot/pkg/eventbus"
	"github.com/chainpilot/chainpilot/pkg/events"
)

type recordingSubscriber struct {
	handlers  map[events.EventType]eventbus.EventHandler
	handleErr error
}

func (s *recordingSubscriber) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	if s.handleErr != nil {
		return s.handleErr
	}

	s.handlers[eventType] = handler

	return nil
}

func (s *recordingSubscriber) Subscribe(context.Context) error { return nil }

func TestRegisterLifecycleAuditCoversEveryEventType(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{handlers: make(map[events.EventType]eventbus.EventHandler)}

	require.NoError(t, RegisterLifecycleAudit(sub, slog.Default()))

	for _, eventType := range lifecycleEventTypes {
		handler, ok := sub.handlers[eventType]
		require.True(t, ok, "no handler for %s", eventType)

		assert.NoError(t, handler(context.Background(), &events.WorkflowCreated{
			BaseEvent: events.NewBaseEvent(eventType, "conv-1", "user-1"),
		}))
	}

	assert.Len(t, sub.handlers, len(lifecycleEventTypes))
}

func TestRegisterLifecycleAuditPropagatesHandleError(t *testing.T) {
	t.Parallel()

	sub := &recordingSubscriber{
		handlers:  make(map[events.EventType]eventbus.EventHandler),
		handleErr: errors.New("bus closed"),
	}

	require.Error(t, RegisterLifecycleAudit(sub, slog.Default()))
}
