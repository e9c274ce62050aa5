package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	application "voteflow/contexts/voting/vote-intake/application"
	"voteflow/contexts/voting/vote-intake/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-intake/domain/errors"
	"voteflow/contexts/voting/vote-intake/ports"

	votesv1 "voteflow/contracts/gen/votes/v1"
)

type CastVoteCommand struct {
	VoterID string
	Choice  string
}

type CastVoteResult struct {
	Ballot   entities.Ballot
	NewVoter bool
}

type CastVoteUseCase struct {
	Queue   ports.VoteQueue
	IDGen   ports.IDGenerator
	Metrics ports.IntakeMetrics
	Logger  *slog.Logger
}

func (uc CastVoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	choice, ok := entities.ParseChoice(cmd.Choice)
	if !ok {
		return CastVoteResult{}, fmt.Errorf("%w: got %q", domainerrors.ErrInvalidChoice, cmd.Choice)
	}

	voterID, created, err := ResolveVoterID(ctx, uc.IDGen, cmd.VoterID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if created {
		logger.Info("generated voter id",
			"event", "vote_intake_voter_created",
			"module", "voting/vote-intake",
			"layer", "application",
			"voter_id", voterID,
		)
	}

	ballot := entities.Ballot{VoterID: voterID, Choice: choice}
	payload, err := json.Marshal(votesv1.QueueItem{VoterID: ballot.VoterID, Vote: string(ballot.Choice)})
	if err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.Queue.Enqueue(ctx, payload); err != nil {
		logger.Error("vote enqueue failed",
			"event", "vote_intake_enqueue_failed",
			"module", "voting/vote-intake",
			"layer", "application",
			"voter_id", ballot.VoterID,
			"vote", string(ballot.Choice),
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	if uc.Metrics != nil {
		uc.Metrics.VoteEnqueued(string(ballot.Choice))
	}
	logger.Info("vote queued",
		"event", "vote_intake_vote_queued",
		"module", "voting/vote-intake",
		"layer", "application",
		"voter_id", ballot.VoterID,
		"vote", string(ballot.Choice),
	)
	return CastVoteResult{Ballot: ballot, NewVoter: created}, nil
}

// ResolveVoterID keeps a caller supplied id and mints one otherwise.
func ResolveVoterID(ctx context.Context, idGen ports.IDGenerator, voterID string) (string, bool, error) {
	if trimmed := strings.TrimSpace(voterID); trimmed != "" {
		return trimmed, false, nil
	}
	id, err := idGen.NewID(ctx)
	if err != nil {
		return "", false, fmt.Errorf("generate voter id: %w", err)
	}
	return id, true, nil
}
