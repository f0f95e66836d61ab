package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/link-shortener/internal/analytics"
	"github.com/serroba/link-shortener/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop_SaveLinkCreated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	event := &analytics.LinkCreatedEvent{
		LinkID:    "abc123",
		Target:    "https://example.com",
		CreatedAt: time.Now(),
	}

	err := noop.SaveLinkCreated(context.Background(), event)

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc123", logs.All()[0].ContextMap()["linkId"])
}

func TestNoop_SaveLinkAccessed(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	event := &analytics.LinkAccessedEvent{
		LinkID:     "abc123",
		AccessedAt: time.Now(),
		ClientIP:   "127.0.0.1",
		UserAgent:  "TestAgent/1.0",
		Referrer:   "https://referrer.com",
	}

	err := noop.SaveLinkAccessed(context.Background(), event)

	require.NoError(t, err)
}
