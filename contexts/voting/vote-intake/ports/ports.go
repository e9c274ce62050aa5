package ports

import "context"

// VoteQueue appends an encoded ballot to the tail of the vote queue.
type VoteQueue interface {
	Enqueue(ctx context.Context, payload []byte) error
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IntakeMetrics interface {
	VoteEnqueued(choice string)
}
