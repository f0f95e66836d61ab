package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// ErrDuplicateTopic is returned when a topic already has a consumer in the group.
var ErrDuplicateTopic = errors.New("topic already has a consumer")

// TopicConsumer is a consumer bound to a single topic.
type TopicConsumer interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs one consumer per topic on a shared subscriber.
type ConsumerGroup struct {
	consumers  []TopicConsumer
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Subscribe adds a typed consumer for topic that reads from the group's subscriber.
func Subscribe[T any](g *ConsumerGroup, topic string, handler Handler[T]) error {
	return g.Add(NewConsumer(g.subscriber, topic, handler, g.logger))
}

// Add registers a consumer. Consumers start in the order they were added.
func (g *ConsumerGroup) Add(consumer TopicConsumer) error {
	for _, existing := range g.consumers {
		if existing.Topic() == consumer.Topic() {
			return fmt.Errorf("%w: %q", ErrDuplicateTopic, consumer.Topic())
		}
	}

	g.consumers = append(g.consumers, consumer)

	return nil
}

// Topics lists the consumed topics in start order.
func (g *ConsumerGroup) Topics() []string {
	topics := make([]string, len(g.consumers))
	for i, consumer := range g.consumers {
		topics[i] = consumer.Topic()
	}

	return topics
}

// Start starts every consumer. If one fails, those already started are shut down.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = g.consumers[j].Shutdown()
			}

			return fmt.Errorf("start consumer for topic %q: %w", consumer.Topic(), err)
		}
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.Topics()))

	return nil
}

// Shutdown stops every consumer, then closes the subscriber. The first error is returned.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group", zap.Strings("topics", g.Topics()))

	var firstErr error

	for _, consumer := range g.consumers {
		if err := consumer.Shutdown(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shut down consumer for topic %q: %w", consumer.Topic(), err)
		}
	}

	if err := g.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close subscriber: %w", err)
	}

	return firstErr
}
