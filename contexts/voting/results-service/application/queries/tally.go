package queries

import (
	"context"
	"time"

	"voteflow/contexts/voting/results-service/domain/entities"
	"voteflow/contexts/voting/results-service/ports"
)

type TallyUseCase struct {
	Votes ports.VoteCounter
	Clock ports.Clock
}

func (uc TallyUseCase) CurrentTally(ctx context.Context) (entities.Tally, error) {
	rows, err := uc.Votes.CountByChoice(ctx)
	if err != nil {
		return entities.Tally{}, err
	}
	return entities.CollectTally(rows), nil
}

func (uc TallyUseCase) Stats(ctx context.Context) (entities.Stats, error) {
	tally, err := uc.CurrentTally(ctx)
	if err != nil {
		return entities.Stats{}, err
	}
	return entities.NewStats(tally, uc.now()), nil
}

func (uc TallyUseCase) Export(ctx context.Context) (entities.Export, error) {
	tally, err := uc.CurrentTally(ctx)
	if err != nil {
		return entities.Export{}, err
	}
	return entities.NewExport(tally, uc.now()), nil
}

func (uc TallyUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
