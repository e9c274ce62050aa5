package memory

import (
	"context"
	"fmt"
	"sync"

	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
)

// Store keeps vote records in a map keyed by voter id and enforces the same
// uniqueness rule as the votes table.
type Store struct {
	mu sync.Mutex

	votes    map[string]entities.Choice
	down        bool
	failNext    error
	connectFail error

	connects int
	pings    int
	inserts  int
	updates  int
}

func NewStore() *Store {
	return &Store{votes: make(map[string]entities.Choice)}
}

func (s *Store) Connect(_ context.Context) (ports.VoteStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, fmt.Errorf("%w: dial refused", domainerrors.ErrStoreUnavailable)
	}
	if s.connectFail != nil {
		return nil, s.connectFail
	}
	s.connects++
	return s, nil
}

func (s *Store) InsertVote(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failureLocked(); err != nil {
		return err
	}
	if _, exists := s.votes[record.VoterID]; exists {
		return domainerrors.ErrDuplicateVoter
	}
	s.votes[record.VoterID] = record.Choice
	s.inserts++
	return nil
}

func (s *Store) UpdateVote(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failureLocked(); err != nil {
		return err
	}
	if _, exists := s.votes[record.VoterID]; !exists {
		return domainerrors.ErrVoteNotFound
	}
	s.votes[record.VoterID] = record.Choice
	s.updates++
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return fmt.Errorf("%w: connection reset", domainerrors.ErrStoreUnavailable)
	}
	s.pings++
	return nil
}

func (s *Store) Close() error { return nil }

// SetDown makes every call fail as a lost connection until cleared.
func (s *Store) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// FailConnect makes every Connect return err, as a schema bootstrap that can
// never succeed would. A nil err clears it.
func (s *Store) FailConnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectFail = err
}

// FailNextWrite makes the next insert or update return err.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) Vote(voterID string) (entities.Choice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	choice, ok := s.votes[voterID]
	return choice, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.votes)
}

// Counts returns the number of voters per choice.
func (s *Store) Counts() map[entities.Choice]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[entities.Choice]int)
	for _, choice := range s.votes {
		counts[choice]++
	}
	return counts
}

func (s *Store) Pings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pings
}

func (s *Store) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

func (s *Store) failureLocked() error {
	if s.down {
		return fmt.Errorf("%w: connection reset", domainerrors.ErrStoreUnavailable)
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	return nil
}

var _ ports.StoreConnector = (*Store)(nil)
var _ ports.VoteStore = (*Store)(nil)
