package queries

import (
	"context"

	"voteflow/contexts/voting/vote-intake/application/commands"
	"voteflow/contexts/voting/vote-intake/domain/entities"
	"voteflow/contexts/voting/vote-intake/ports"
)

type OptionsView struct {
	Options  entities.Options
	VoterID  string
	NewVoter bool
}

type OptionsUseCase struct {
	Options entities.Options
	IDGen   ports.IDGenerator
}

// BallotOptions returns the labels to render together with the voter id the
// caller should keep using.
func (uc OptionsUseCase) BallotOptions(ctx context.Context, voterID string) (OptionsView, error) {
	resolved, created, err := commands.ResolveVoterID(ctx, uc.IDGen, voterID)
	if err != nil {
		return OptionsView{}, err
	}
	return OptionsView{
		Options:  uc.Options,
		VoterID:  resolved,
		NewVoter: created,
	}, nil
}
