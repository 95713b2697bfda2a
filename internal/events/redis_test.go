package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/straye-as/crm-core/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisPublisher_PublishLeadStageChanged(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sub := rdb.Subscribe(ctx, "crm.events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	messages := sub.Channel()

	event := events.LeadStageChanged{
		LeadID:       uuid.New(),
		PipelineID:   uuid.New(),
		StageID:      uuid.New(),
		StageName:    "Won",
		StageIsFinal: true,
		OccurredAt:   time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	publisher := events.NewRedisPublisher(rdb, "crm.events", zap.NewNop())
	require.NoError(t, publisher.PublishLeadStageChanged(ctx, event))

	select {
	case msg := <-messages:
		var envelope struct {
			Type       string                  `json:"type"`
			OccurredAt time.Time               `json:"occurredAt"`
			Data       events.LeadStageChanged `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &envelope))
		assert.Equal(t, events.TypeLeadStageChanged, envelope.Type)
		assert.True(t, event.OccurredAt.Equal(envelope.OccurredAt))
		assert.Equal(t, event.LeadID, envelope.Data.LeadID)
		assert.Equal(t, "Won", envelope.Data.StageName)
		assert.Nil(t, envelope.Data.FromStageID)
		assert.NotContains(t, msg.Payload, "fromStageId")
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	assert.NoError(t, publisher.Close())
}

func TestRedisPublisher_PublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	publisher := events.NewRedisPublisher(rdb, "crm.events", zap.NewNop())
	err := publisher.PublishLeadStageChanged(context.Background(), events.LeadStageChanged{LeadID: uuid.New()})
	assert.ErrorContains(t, err, "publish lead.stage_changed event")
}
