package voteintake

import (
	"log/slog"

	httpadapter "voteflow/contexts/voting/vote-intake/adapters/http"
	"voteflow/contexts/voting/vote-intake/adapters/memory"
	"voteflow/contexts/voting/vote-intake/application/commands"
	"voteflow/contexts/voting/vote-intake/application/queries"
	"voteflow/contexts/voting/vote-intake/domain/entities"
	"voteflow/contexts/voting/vote-intake/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Queue   *memory.Queue
}

type Dependencies struct {
	Queue   ports.VoteQueue
	IDGen   ports.IDGenerator
	Metrics ports.IntakeMetrics
	Options entities.Options
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Votes: commands.CastVoteUseCase{
				Queue:   deps.Queue,
				IDGen:   deps.IDGen,
				Metrics: deps.Metrics,
				Logger:  deps.Logger,
			},
			Options: queries.OptionsUseCase{
				Options: deps.Options,
				IDGen:   deps.IDGen,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(options entities.Options, logger *slog.Logger) Module {
	queue := memory.NewQueue()
	module := NewModule(Dependencies{
		Queue:   queue,
		IDGen:   queue,
		Options: options,
		Logger:  logger,
	})
	module.Queue = queue
	return module
}
