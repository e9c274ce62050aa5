package httpadapter

import (
	"context"
	"log/slog"

	"voteflow/contexts/voting/vote-intake/application/commands"
	"voteflow/contexts/voting/vote-intake/application/queries"
	httptransport "voteflow/contexts/voting/vote-intake/transport/http"
)

// VoterCookie carries the voter id between requests.
const VoterCookie = "voter_id"

type Handler struct {
	Votes   commands.CastVoteUseCase
	Options queries.OptionsUseCase
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		VoterID: voterID,
		Choice:  req.Vote,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		VoterID: result.Ballot.VoterID,
		Vote:    string(result.Ballot.Choice),
		Queued:  true,
	}, nil
}

func (h Handler) OptionsHandler(ctx context.Context, voterID string) (httptransport.OptionsResponse, error) {
	view, err := h.Options.BallotOptions(ctx, voterID)
	if err != nil {
		return httptransport.OptionsResponse{}, err
	}
	return httptransport.OptionsResponse{
		OptionA:  view.Options.OptionA,
		OptionB:  view.Options.OptionB,
		Hostname: view.Options.Hostname,
		VoterID:  view.VoterID,
	}, nil
}
