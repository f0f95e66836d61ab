package container

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/link-shortener/internal/analytics"
	analyticsstore "github.com/serroba/link-shortener/internal/analytics/store"
	"github.com/serroba/link-shortener/internal/links"
	"github.com/serroba/link-shortener/internal/messaging"
	"go.uber.org/zap"
)

const consumerGroupName = "link-shortener-analytics"

// ConsumerGroupPackage provides the consumers that turn link events into visit counts.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		svc, err := do.Invoke[*links.Service](i)
		if err != nil {
			return nil, err
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: consumerGroupName,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		sink := analyticsstore.NewVisits(svc, logger)

		group := messaging.NewConsumerGroup(subscriber, logger)

		err = messaging.Subscribe[analytics.LinkCreatedEvent](group, analytics.TopicLinkCreated, sink.SaveLinkCreated)
		if err != nil {
			return nil, err
		}

		err = messaging.Subscribe[analytics.LinkAccessedEvent](group, analytics.TopicLinkAccessed, sink.SaveLinkAccessed)
		if err != nil {
			return nil, err
		}

		return group, nil
	})
}
