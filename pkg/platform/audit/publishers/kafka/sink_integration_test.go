//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/publishers/kafka"
	"roster/pkg/testutil/containers"
)

func TestSinkProducesEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	topic := "audit-" + uuid.NewString()

	sink, err := kafka.New([]string{broker.SeedBroker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := audit.Event{
		ID:        uuid.New(),
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now(),
		UserID:    12,
		Action:    string(audit.EventUserCreated),
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, "user_created", got["action"])
	require.Equal(t, "12", string(records[0].Key))
}
