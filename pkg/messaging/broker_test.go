package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/pkg/messaging"
)

func TestMemoryBrokerDelivers(t *testing.T) {
	b := messaging.NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := b.Subscribe(ctx, messaging.ChannelAppointmentsInvalidated)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, messaging.ChannelAppointmentsInvalidated, messaging.Invalidation{Origin: "a", Reason: "cancel"}))

	select {
	case raw := <-ch:
		var got messaging.Invalidation
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "cancel", got.Reason)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestMemoryBrokerUnsubscribeOnCancel(t *testing.T) {
	b := messaging.NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	require.NoError(t, b.Close())
}
