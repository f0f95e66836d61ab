package store

import (
	"context"
	"errors"

	"github.com/serroba/link-shortener/internal/analytics"
	"github.com/serroba/link-shortener/internal/links"
	"go.uber.org/zap"
)

// VisitRecorder counts link accesses.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, id string) error
}

// Visits is an analytics.Store that turns access events into visit counts.
type Visits struct {
	*Noop
	recorder VisitRecorder
}

// NewVisits creates a store that records visits through recorder and logs created events.
func NewVisits(recorder VisitRecorder, logger *zap.Logger) *Visits {
	return &Visits{
		Noop:     NewNoop(logger),
		recorder: recorder,
	}
}

// SaveLinkAccessed increments the visit count. Links deleted since the access are skipped
// so the event is not redelivered forever.
func (v *Visits) SaveLinkAccessed(ctx context.Context, event *analytics.LinkAccessedEvent) error {
	err := v.recorder.RecordVisit(ctx, event.LinkID)
	if errors.Is(err, links.ErrNotFound) {
		v.logger.Debug("visit for deleted link skipped", zap.String("linkId", event.LinkID))

		return nil
	}

	return err
}

var (
	_ analytics.Store = (*Noop)(nil)
	_ analytics.Store = (*Visits)(nil)
)
