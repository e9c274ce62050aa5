package redisadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "voteflow/contexts/voting/vote-intake/domain/errors"
	"voteflow/contexts/voting/vote-intake/ports"

	votesv1 "voteflow/contracts/gen/votes/v1"

	"github.com/redis/go-redis/v9"
)

// Queue pushes ballots onto the tail of the redis list. The client pool
// redials on its own, so one client serves the whole process.
type Queue struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewQueue(client *redis.Client, key string, logger *slog.Logger) *Queue {
	if strings.TrimSpace(key) == "" {
		key = votesv1.DefaultQueueKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{client: client, key: key, logger: logger}
}

func (q *Queue) Enqueue(ctx context.Context, payload []byte) error {
	length, err := q.client.RPush(ctx, q.key, payload).Result()
	if err != nil {
		return fmt.Errorf("%w: rpush %s: %v", domainerrors.ErrQueueUnavailable, q.key, err)
	}
	q.logger.Debug("vote pushed",
		"event", "vote_queue_pushed",
		"module", "voting/vote-intake",
		"layer", "adapter",
		"queue", q.key,
		"length", length,
	)
	return nil
}

var _ ports.VoteQueue = (*Queue)(nil)
