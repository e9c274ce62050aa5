package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "voteflow/contexts/voting/vote-worker/application"
	"voteflow/contexts/voting/vote-worker/application/commands"
	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
)

const (
	defaultPollInterval   = 100 * time.Millisecond
	defaultReconnectDelay = time.Second

	targetQueue = "queue"
	targetStore = "store"
)

// QueueConsumer drains the vote queue into the vote store. It owns one queue
// handle and one store handle; a handle that reports a connectivity failure is
// closed and replaced through its connector. Only one consumer may run against
// a given queue and store pair.
type QueueConsumer struct {
	Queues         ports.QueueConnector
	Stores         ports.StoreConnector
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	Metrics        ports.ConsumerMetrics
	Logger         *slog.Logger

	queue   ports.VoteQueue
	store   ports.VoteStore
	pending *entities.QueueItem
}

// Run bootstraps both connections and then executes RunOnce on every tick
// until ctx is cancelled. It returns a non-nil error only for a persistence
// failure that retrying cannot fix.
func (c *QueueConsumer) Run(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	defer c.closeHandles()

	if err := c.ensureStore(ctx); err != nil {
		return bootstrapResult(ctx, err)
	}
	if err := c.ensureQueue(ctx); err != nil {
		return bootstrapResult(ctx, err)
	}

	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()

	logger.Info("vote consumer started",
		"event", "vote_consumer_started",
		"module", "voting/vote-worker",
		"layer", "worker",
		"poll_interval", c.pollInterval().String(),
		"reconnect_delay", c.reconnectDelay().String(),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info("vote consumer stopped",
				"event", "vote_consumer_stopped",
				"module", "voting/vote-worker",
				"layer", "worker",
			)
			return nil
		case <-ticker.C:
		}
		if err := c.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// RunOnce executes a single poll: it finishes an in-flight vote if one is
// waiting for the store, otherwise pops at most one item, or issues a
// keep-alive on both connections when the queue is empty.
func (c *QueueConsumer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.pending != nil {
		return c.persistPending(ctx)
	}
	if err := c.ensureQueue(ctx); err != nil {
		return err
	}

	payload, ok, err := c.queue.Pop(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("vote queue pop failed",
			"event", "vote_consumer_pop_failed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"error", err.Error(),
		)
		c.dropQueue()
		return nil
	}
	if !ok {
		return c.keepAlive(ctx)
	}
	c.observe(func(m ports.ConsumerMetrics) { m.ItemDequeued() })

	item, err := DecodeQueueItem(payload)
	if err != nil {
		logger.Error("vote queue item dropped",
			"event", "vote_consumer_item_malformed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"payload", string(payload),
			"error", err.Error(),
		)
		c.observe(func(m ports.ConsumerMetrics) { m.MalformedItem() })
		return nil
	}
	logger.Debug("processing vote",
		"event", "vote_consumer_item_decoded",
		"module", "voting/vote-worker",
		"layer", "worker",
		"voter_id", item.VoterID,
		"vote", string(item.Choice),
	)
	c.pending = &item
	return c.persistPending(ctx)
}

// Pending reports the vote that was popped but not yet persisted.
func (c *QueueConsumer) Pending() (entities.QueueItem, bool) {
	if c.pending == nil {
		return entities.QueueItem{}, false
	}
	return *c.pending, true
}

func (c *QueueConsumer) persistPending(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if err := c.ensureStore(ctx); err != nil {
		return err
	}

	item := *c.pending
	started := time.Now()
	outcome, err := commands.UpsertVote(ctx, c.store, item.Record())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, domainerrors.ErrStoreUnavailable) {
			logger.Warn("vote store unavailable, vote kept in flight",
				"event", "vote_consumer_store_unavailable",
				"module", "voting/vote-worker",
				"layer", "worker",
				"voter_id", item.VoterID,
				"vote", string(item.Choice),
				"error", err.Error(),
			)
			c.dropStore()
			return nil
		}
		logger.Error("vote persistence failed",
			"event", "vote_consumer_persist_failed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"voter_id", item.VoterID,
			"vote", string(item.Choice),
			"error", err.Error(),
		)
		return fmt.Errorf("%w: voter %s: %v", domainerrors.ErrPersistenceFailed, item.VoterID, err)
	}

	c.pending = nil
	c.observe(func(m ports.ConsumerMetrics) { m.VotePersisted(string(outcome)) })
	logger.Info("vote stored",
		"event", "vote_consumer_vote_stored",
		"module", "voting/vote-worker",
		"layer", "worker",
		"voter_id", item.VoterID,
		"vote", string(item.Choice),
		"outcome", string(outcome),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (c *QueueConsumer) keepAlive(ctx context.Context) error {
	if err := c.queue.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		application.ResolveLogger(c.Logger).Warn("vote queue keep-alive failed",
			"event", "vote_consumer_queue_keepalive_failed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"error", err.Error(),
		)
		c.dropQueue()
		return nil
	}
	if err := c.ensureStore(ctx); err != nil {
		return err
	}
	if err := c.store.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		application.ResolveLogger(c.Logger).Warn("vote store keep-alive failed",
			"event", "vote_consumer_keepalive_failed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"error", err.Error(),
		)
		c.dropStore()
		return nil
	}
	c.observe(func(m ports.ConsumerMetrics) { m.KeepAlive() })
	return nil
}

func (c *QueueConsumer) ensureQueue(ctx context.Context) error {
	if c.queue != nil {
		return nil
	}
	queue, err := dialWithRetry(ctx, targetQueue, c.Queues.Connect, c.reconnectDelay(), c.Logger)
	if err != nil {
		return err
	}
	c.queue = queue
	c.observe(func(m ports.ConsumerMetrics) { m.Connected(targetQueue) })
	return nil
}

func (c *QueueConsumer) ensureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	store, err := dialWithRetry(ctx, targetStore, c.Stores.Connect, c.reconnectDelay(), c.Logger)
	if err != nil {
		return err
	}
	c.store = store
	c.observe(func(m ports.ConsumerMetrics) { m.Connected(targetStore) })
	return nil
}

func (c *QueueConsumer) dropQueue() {
	if c.queue != nil {
		_ = c.queue.Close()
		c.queue = nil
	}
}

func (c *QueueConsumer) dropStore() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func (c *QueueConsumer) closeHandles() {
	c.dropQueue()
	c.dropStore()
}

func (c *QueueConsumer) observe(fn func(ports.ConsumerMetrics)) {
	if c.Metrics != nil {
		fn(c.Metrics)
	}
}

func (c *QueueConsumer) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return defaultPollInterval
	}
	return c.PollInterval
}

func (c *QueueConsumer) reconnectDelay() time.Duration {
	if c.ReconnectDelay <= 0 {
		return defaultReconnectDelay
	}
	return c.ReconnectDelay
}

// bootstrapResult turns a startup failure into Run's return value:
// cancellation is a clean stop, anything else is fatal.
func bootstrapResult(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func isTransient(err error) bool {
	return errors.Is(err, domainerrors.ErrStoreUnavailable) || errors.Is(err, domainerrors.ErrQueueUnavailable)
}

// dialWithRetry calls connect until it succeeds, sleeping delay between
// attempts. Connectivity failures are retried without bound; any other
// failure, such as a schema that cannot be created, is returned wrapped in
// ErrPersistenceFailed.
func dialWithRetry[T any](
	ctx context.Context,
	target string,
	connect func(context.Context) (T, error),
	delay time.Duration,
	logger *slog.Logger,
) (T, error) {
	logger = application.ResolveLogger(logger)
	var zero T
	for attempt := 1; ; attempt++ {
		conn, err := connect(ctx)
		if err == nil {
			logger.Info("connection established",
				"event", "vote_consumer_connected",
				"module", "voting/vote-worker",
				"layer", "worker",
				"target", target,
				"attempts", attempt,
			)
			return conn, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !isTransient(err) {
			logger.Error("connection bootstrap failed",
				"event", "vote_consumer_bootstrap_failed",
				"module", "voting/vote-worker",
				"layer", "worker",
				"target", target,
				"attempt", attempt,
				"error", err.Error(),
			)
			return zero, fmt.Errorf("%w: %s bootstrap: %v", domainerrors.ErrPersistenceFailed, target, err)
		}
		logger.Warn("connection attempt failed",
			"event", "vote_consumer_connect_failed",
			"module", "voting/vote-worker",
			"layer", "worker",
			"target", target,
			"attempt", attempt,
			"error", err.Error(),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
