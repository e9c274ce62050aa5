package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "voteflow/contexts/voting/results-service/application"
	"voteflow/contexts/voting/results-service/application/queries"
	"voteflow/contexts/voting/results-service/domain/entities"
	domainerrors "voteflow/contexts/voting/results-service/domain/errors"
	"voteflow/contexts/voting/results-service/ports"

	votesv1 "voteflow/contracts/gen/votes/v1"
)

const defaultTallyInterval = time.Second

// TallyAggregator periodically counts the votes table and publishes the tally
// on the scores topic. Failed ticks are logged and the loop keeps going.
type TallyAggregator struct {
	Tallies     queries.TallyUseCase
	Broadcaster ports.Broadcaster
	Topic       string
	Interval    time.Duration
	Metrics     ports.TallyMetrics
	Logger      *slog.Logger
}

func (a TallyAggregator) Run(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	interval := a.Interval
	if interval <= 0 {
		interval = defaultTallyInterval
	}
	logger.Info("tally aggregator started",
		"event", "tally_aggregator_started",
		"module", "voting/results-service",
		"layer", "worker",
		"topic", a.topic(),
		"interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		_ = a.RunOnce(ctx)
		select {
		case <-ctx.Done():
			logger.Info("tally aggregator stopped",
				"event", "tally_aggregator_stopped",
				"module", "voting/results-service",
				"layer", "worker",
			)
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs one query and publish. The returned error is informational;
// Run never stops on it.
func (a TallyAggregator) RunOnce(ctx context.Context) error {
	_, err := a.publishCurrent(ctx, "tick")
	return err
}

// Refresh runs the same query and publish out of band and returns the tally
// to the caller. A publish failure is logged but does not fail the refresh.
func (a TallyAggregator) Refresh(ctx context.Context) (entities.Tally, error) {
	tally, err := a.publishCurrent(ctx, "refresh")
	if err != nil && !errors.Is(err, domainerrors.ErrPublishFailed) {
		return entities.Tally{}, err
	}
	return tally, nil
}

func (a TallyAggregator) publishCurrent(ctx context.Context, trigger string) (entities.Tally, error) {
	logger := application.ResolveLogger(a.Logger)
	started := time.Now()

	tally, err := a.Tallies.CurrentTally(ctx)
	if err != nil {
		a.observe(func(m ports.TallyMetrics) { m.TallyFailed() })
		logger.Error("tally query failed",
			"event", "tally_query_failed",
			"module", "voting/results-service",
			"layer", "worker",
			"trigger", trigger,
			"error", err.Error(),
		)
		return entities.Tally{}, err
	}

	payload, err := json.Marshal(votesv1.Scores{A: tally.A, B: tally.B})
	if err != nil {
		return tally, fmt.Errorf("%w: %v", domainerrors.ErrPublishFailed, err)
	}
	if a.Broadcaster == nil {
		return tally, nil
	}
	delivered, err := a.Broadcaster.Publish(ctx, a.topic(), votesv1.ScoresTopic, payload)
	if err != nil {
		a.observe(func(m ports.TallyMetrics) { m.TallyFailed() })
		logger.Warn("tally publish failed",
			"event", "tally_publish_failed",
			"module", "voting/results-service",
			"layer", "worker",
			"trigger", trigger,
			"topic", a.topic(),
			"error", err.Error(),
		)
		return tally, fmt.Errorf("%w: %v", domainerrors.ErrPublishFailed, err)
	}

	a.observe(func(m ports.TallyMetrics) { m.TallyPublished(delivered) })
	logger.Debug("tally published",
		"event", "tally_published",
		"module", "voting/results-service",
		"layer", "worker",
		"trigger", trigger,
		"topic", a.topic(),
		"votes_a", tally.A,
		"votes_b", tally.B,
		"subscribers", delivered,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return tally, nil
}

func (a TallyAggregator) topic() string {
	if topic := strings.TrimSpace(a.Topic); topic != "" {
		return topic
	}
	return votesv1.ScoresTopic
}

func (a TallyAggregator) observe(fn func(ports.TallyMetrics)) {
	if a.Metrics != nil {
		fn(a.Metrics)
	}
}
