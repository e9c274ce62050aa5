package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
	"voteflow/internal/platform/messaging"

	votesv1 "voteflow/contracts/gen/votes/v1"

	"github.com/redis/go-redis/v9"
)

// Connector hands out a fresh redis client per connection so a broken one
// can be discarded without affecting anything else.
type Connector struct {
	Options messaging.RedisOptions
	Key     string
}

func (c Connector) Connect(ctx context.Context) (ports.VoteQueue, error) {
	client, err := messaging.ConnectRedis(ctx, c.Options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrQueueUnavailable, err)
	}
	return NewQueue(client, c.Key), nil
}

// Queue pops votes from the head of a redis list.
type Queue struct {
	client *redis.Client
	key    string
}

func NewQueue(client *redis.Client, key string) *Queue {
	if strings.TrimSpace(key) == "" {
		key = votesv1.DefaultQueueKey
	}
	return &Queue{client: client, key: key}
}

func (q *Queue) Pop(ctx context.Context) ([]byte, bool, error) {
	payload, err := q.client.LPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: lpop %s: %v", domainerrors.ErrQueueUnavailable, q.key, err)
	}
	return payload, true, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrQueueUnavailable, err)
	}
	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

var _ ports.QueueConnector = Connector{}
var _ ports.VoteQueue = (*Queue)(nil)
