package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/link-shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type publishTestEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes event successfully", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[publishTestEvent](mock, "test.topic")

		event := &publishTestEvent{ID: "123", Name: "test"}

		err := publish(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, "test.topic", mock.topic)
		assert.Len(t, mock.messages, 1)
		assert.Contains(t, string(mock.messages[0].Payload), `"id":"123"`)
		assert.Equal(t, "test.topic", mock.messages[0].Metadata.Get(messaging.EventTypeKey))
	})

	t.Run("returns error when publish fails", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[publishTestEvent](mock, "test.topic")

		event := &publishTestEvent{ID: "123"}

		err := publish(context.Background(), event)

		assert.Error(t, err)
	})
}

func TestNewLocalPublishFunc(t *testing.T) {
	t.Run("delivers to handler", func(t *testing.T) {
		var got *publishTestEvent

		publish := messaging.NewLocalPublishFunc(func(_ context.Context, event *publishTestEvent) error {
			got = event

			return nil
		})

		err := publish(context.Background(), &publishTestEvent{ID: "42"})

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "42", got.ID)
	})

	t.Run("handler outlives request cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		publish := messaging.NewLocalPublishFunc(func(ctx context.Context, _ *publishTestEvent) error {
			return ctx.Err()
		})

		assert.NoError(t, publish(ctx, &publishTestEvent{}))
	})

	t.Run("returns handler error", func(t *testing.T) {
		publish := messaging.NewLocalPublishFunc(func(_ context.Context, _ *publishTestEvent) error {
			return errors.New("handler failed")
		})

		assert.Error(t, publish(context.Background(), &publishTestEvent{}))
	})
}

func TestNopPublish(t *testing.T) {
	publish := messaging.NopPublish[publishTestEvent]()

	assert.NoError(t, publish(context.Background(), &publishTestEvent{ID: "x"}))
}

func TestPublisherGroup(t *testing.T) {
	t.Run("returns underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("shuts down successfully", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		err := group.Shutdown()

		require.NoError(t, err)
	})

	t.Run("returns error when close fails", func(t *testing.T) {
		mock := &mockPublisher{closeErr: errors.New("close error")}
		group := messaging.NewPublisherGroup(mock)

		err := group.Shutdown()

		assert.Error(t, err)
	})
}
