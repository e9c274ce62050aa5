package workers

import (
	"encoding/json"
	"fmt"
	"strings"

	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"

	votesv1 "voteflow/contracts/gen/votes/v1"
)

// DecodeQueueItem turns a raw queue payload into a vote. Every failure wraps
// ErrMalformedQueueItem because the payload can never be reprocessed.
func DecodeQueueItem(payload []byte) (entities.QueueItem, error) {
	var wire votesv1.QueueItem
	if err := json.Unmarshal(payload, &wire); err != nil {
		return entities.QueueItem{}, fmt.Errorf("%w: %v", domainerrors.ErrMalformedQueueItem, err)
	}
	voterID := strings.TrimSpace(wire.VoterID)
	if voterID == "" {
		return entities.QueueItem{}, fmt.Errorf("%w: voter_id is required", domainerrors.ErrMalformedQueueItem)
	}
	choice, ok := entities.ParseChoice(wire.Vote)
	if !ok {
		return entities.QueueItem{}, fmt.Errorf("%w: unknown vote %q", domainerrors.ErrMalformedQueueItem, wire.Vote)
	}
	return entities.QueueItem{VoterID: voterID, Choice: choice}, nil
}
