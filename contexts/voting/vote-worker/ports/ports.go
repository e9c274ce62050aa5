package ports

import (
	"context"

	"voteflow/contexts/voting/vote-worker/domain/entities"
)

// VoteQueue is one live connection to the vote queue. Pop never blocks
// waiting for data: an empty queue returns ok=false and a nil error.
type VoteQueue interface {
	Pop(ctx context.Context) (payload []byte, ok bool, err error)
	Ping(ctx context.Context) error
	Close() error
}

type QueueConnector interface {
	Connect(ctx context.Context) (VoteQueue, error)
}

// VoteStore is one live connection to the votes table. InsertVote reports an
// existing voter with domainerrors.ErrDuplicateVoter; connectivity failures
// wrap domainerrors.ErrStoreUnavailable.
type VoteStore interface {
	InsertVote(ctx context.Context, record entities.VoteRecord) error
	UpdateVote(ctx context.Context, record entities.VoteRecord) error
	Ping(ctx context.Context) error
	Close() error
}

// StoreConnector opens a store connection and makes sure the schema exists.
type StoreConnector interface {
	Connect(ctx context.Context) (VoteStore, error)
}

type ConsumerMetrics interface {
	ItemDequeued()
	VotePersisted(outcome string)
	MalformedItem()
	KeepAlive()
	Connected(target string)
}
