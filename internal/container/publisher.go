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

// PublisherGroupPackage provides the typed event publishers. With events enabled they write
// to Redis streams; otherwise visits are recorded in-process and creations are dropped.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     rdb.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i)))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.NopPublish[analytics.LinkCreatedEvent](), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[analytics.LinkAccessedEvent], error) {
		if !do.MustInvoke[*Options](i).Events {
			svc, err := do.Invoke[*links.Service](i)
			if err != nil {
				return nil, err
			}

			visits := analyticsstore.NewVisits(svc, do.MustInvoke[*zap.Logger](i))

			return messaging.NewLocalPublishFunc[analytics.LinkAccessedEvent](visits.SaveLinkAccessed), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[analytics.LinkAccessedEvent](group.Publisher(), analytics.TopicLinkAccessed), nil
	})
}
