package redisadapter_test

import (
	"context"
	"testing"
	"time"

	redisadapter "voteflow/contexts/voting/vote-worker/adapters/redis"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/internal/platform/messaging"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestQueuePopsInArrivalOrder(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	connector := redisadapter.Connector{Options: messaging.RedisOptions{Addr: server.Addr()}, Key: "votes"}
	queue, err := connector.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	_, err = server.Push("votes", `{"vote":"a","voter_id":"v1"}`, `{"vote":"b","voter_id":"v2"}`)
	require.NoError(t, err)

	payload, ok, err := queue.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"vote":"a","voter_id":"v1"}`, string(payload))

	payload, ok, err = queue.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"vote":"b","voter_id":"v2"}`, string(payload))

	_, ok, err = queue.Pop(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueueReportsUnavailableWhenServerGoesAway(t *testing.T) {
	server := miniredis.RunT(t)
	ctx := context.Background()

	connector := redisadapter.Connector{Options: messaging.RedisOptions{Addr: server.Addr(), DialTimeout: 200 * time.Millisecond}}
	queue, err := connector.Connect(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	server.Close()

	_, _, err = queue.Pop(ctx)
	require.ErrorIs(t, err, domainerrors.ErrQueueUnavailable)
	require.ErrorIs(t, queue.Ping(ctx), domainerrors.ErrQueueUnavailable)

	_, err = connector.Connect(ctx)
	require.ErrorIs(t, err, domainerrors.ErrQueueUnavailable)
}
