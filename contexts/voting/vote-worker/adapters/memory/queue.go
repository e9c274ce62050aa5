package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"

	votesv1 "voteflow/contracts/gen/votes/v1"
)

// Queue is an in-process FIFO that doubles as its own connector. SetDown
// simulates an unreachable broker for both dialing and live handles.
type Queue struct {
	mu       sync.Mutex
	items    [][]byte
	down     bool
	connects int
	closes   int
	pings    int
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Connect(_ context.Context) (ports.VoteQueue, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return nil, fmt.Errorf("%w: dial refused", domainerrors.ErrQueueUnavailable)
	}
	q.connects++
	return q, nil
}

func (q *Queue) Push(payload []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, append([]byte(nil), payload...))
}

// PushVote enqueues the wire form of a vote.
func (q *Queue) PushVote(voterID string, vote string) {
	payload, _ := json.Marshal(votesv1.QueueItem{Vote: vote, VoterID: voterID})
	q.Push(payload)
}

func (q *Queue) Pop(_ context.Context) ([]byte, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return nil, false, fmt.Errorf("%w: connection reset", domainerrors.ErrQueueUnavailable)
	}
	if len(q.items) == 0 {
		return nil, false, nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true, nil
}

func (q *Queue) Ping(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return fmt.Errorf("%w: connection reset", domainerrors.ErrQueueUnavailable)
	}
	q.pings++
	return nil
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closes++
	return nil
}

func (q *Queue) SetDown(down bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.down = down
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Pings() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pings
}

func (q *Queue) Connects() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.connects
}

var _ ports.QueueConnector = (*Queue)(nil)
var _ ports.VoteQueue = (*Queue)(nil)
