package ports

import (
	"context"
	"time"

	"voteflow/contexts/voting/results-service/domain/entities"
)

// VoteCounter runs the grouped count over the votes table.
type VoteCounter interface {
	CountByChoice(ctx context.Context) ([]entities.ChoiceCount, error)
}

// Broadcaster fans a frame out to every subscriber of topic and reports how
// many subscribers it was queued for.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, event string, data []byte) (int, error)
}

type Clock interface {
	Now() time.Time
}

type TallyMetrics interface {
	TallyPublished(delivered int)
	TallyFailed()
}
