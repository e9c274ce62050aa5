package resultsservice

import (
	"log/slog"
	"time"

	httpadapter "voteflow/contexts/voting/results-service/adapters/http"
	"voteflow/contexts/voting/results-service/adapters/memory"
	"voteflow/contexts/voting/results-service/application/queries"
	"voteflow/contexts/voting/results-service/application/workers"
	"voteflow/contexts/voting/results-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Aggregator workers.TallyAggregator
	Store      *memory.Store
}

type Dependencies struct {
	Votes         ports.VoteCounter
	Broadcaster   ports.Broadcaster
	Clock         ports.Clock
	Metrics       ports.TallyMetrics
	Topic         string
	TallyInterval time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	tallies := queries.TallyUseCase{
		Votes: deps.Votes,
		Clock: deps.Clock,
	}
	aggregator := workers.TallyAggregator{
		Tallies:     tallies,
		Broadcaster: deps.Broadcaster,
		Topic:       deps.Topic,
		Interval:    deps.TallyInterval,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Tallies:    tallies,
			Aggregator: aggregator,
			Logger:     deps.Logger,
		},
		Aggregator: aggregator,
	}
}

func NewInMemoryModule(seed map[string]string, broadcaster ports.Broadcaster, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Votes:         store,
		Broadcaster:   broadcaster,
		Clock:         store,
		TallyInterval: 10 * time.Millisecond,
		Logger:        logger,
	})
	module.Store = store
	return module
}
