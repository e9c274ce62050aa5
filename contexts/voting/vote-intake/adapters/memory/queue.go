package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	domainerrors "voteflow/contexts/voting/vote-intake/domain/errors"
	"voteflow/contexts/voting/vote-intake/ports"
)

// Queue collects enqueued payloads in order.
type Queue struct {
	mu       sync.Mutex
	payloads [][]byte
	down     bool
	nextID   int
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(_ context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return fmt.Errorf("%w: connection refused", domainerrors.ErrQueueUnavailable)
	}
	q.payloads = append(q.payloads, append([]byte(nil), payload...))
	return nil
}

// NewID hands out voter-1, voter-2, ... so tests can predict ids.
func (q *Queue) NewID(_ context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	return "voter-" + strconv.Itoa(q.nextID), nil
}

func (q *Queue) SetDown(down bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.down = down
}

func (q *Queue) Payloads() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]byte, len(q.payloads))
	copy(out, q.payloads)
	return out
}

var _ ports.VoteQueue = (*Queue)(nil)
var _ ports.IDGenerator = (*Queue)(nil)
