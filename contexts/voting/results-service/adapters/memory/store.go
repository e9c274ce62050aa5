package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"voteflow/contexts/voting/results-service/domain/entities"
	domainerrors "voteflow/contexts/voting/results-service/domain/errors"
	"voteflow/contexts/voting/results-service/ports"
)

// Store mirrors the votes table as voter id to choice.
type Store struct {
	mu    sync.Mutex
	votes map[string]string
	down  bool
	now   time.Time
	reads int
}

func NewStore(seed map[string]string) *Store {
	votes := make(map[string]string, len(seed))
	for voterID, choice := range seed {
		votes[voterID] = choice
	}
	return &Store{votes: votes}
}

func (s *Store) CountByChoice(_ context.Context) ([]entities.ChoiceCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.down {
		return nil, fmt.Errorf("%w: connection refused", domainerrors.ErrStoreUnavailable)
	}
	counts := make(map[string]int64)
	for _, choice := range s.votes {
		counts[choice]++
	}
	rows := make([]entities.ChoiceCount, 0, len(counts))
	for choice, count := range counts {
		rows = append(rows, entities.ChoiceCount{Choice: choice, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Choice < rows[j].Choice })
	return rows, nil
}

func (s *Store) SetVote(voterID string, choice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voterID] = choice
}

func (s *Store) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// SetNow pins the clock; the zero time falls back to the wall clock.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

var _ ports.VoteCounter = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
