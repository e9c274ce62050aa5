package voteworker

import (
	"log/slog"
	"time"

	"voteflow/contexts/voting/vote-worker/adapters/memory"
	"voteflow/contexts/voting/vote-worker/application/workers"
	"voteflow/contexts/voting/vote-worker/ports"
)

type Module struct {
	Consumer *workers.QueueConsumer
	Queue    *memory.Queue
	Store    *memory.Store
}

type Dependencies struct {
	Queues         ports.QueueConnector
	Stores         ports.StoreConnector
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	Metrics        ports.ConsumerMetrics
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Consumer: &workers.QueueConsumer{
			Queues:         deps.Queues,
			Stores:         deps.Stores,
			PollInterval:   deps.PollInterval,
			ReconnectDelay: deps.ReconnectDelay,
			Metrics:        deps.Metrics,
			Logger:         deps.Logger,
		},
	}
}

// NewInMemoryModule wires the consumer to in-process queue and store fakes.
func NewInMemoryModule(logger *slog.Logger) Module {
	queue := memory.NewQueue()
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Queues:         queue,
		Stores:         store,
		PollInterval:   time.Millisecond,
		ReconnectDelay: time.Millisecond,
		Logger:         logger,
	})
	module.Queue = queue
	module.Store = store
	return module
}
