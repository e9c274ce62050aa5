package commands

import (
	"context"
	"errors"

	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
)

// UpsertVote inserts the record and falls back to an update when the voter
// already exists. The two statements are not wrapped in a transaction, which
// is only safe while a single consumer writes to the store.
func UpsertVote(ctx context.Context, store ports.VoteStore, record entities.VoteRecord) (entities.UpsertOutcome, error) {
	err := store.InsertVote(ctx, record)
	if err == nil {
		return entities.UpsertInserted, nil
	}
	if !errors.Is(err, domainerrors.ErrDuplicateVoter) {
		return "", err
	}
	if err := store.UpdateVote(ctx, record); err != nil {
		return "", err
	}
	return entities.UpsertUpdated, nil
}
