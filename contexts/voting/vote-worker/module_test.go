package voteworker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	voteworker "voteflow/contexts/voting/vote-worker"
	"voteflow/contexts/voting/vote-worker/domain/entities"
)

func TestInMemoryModuleDrainsQueueIntoStore(t *testing.T) {
	module := voteworker.NewInMemoryModule(slog.New(slog.NewTextHandler(io.Discard, nil)))
	module.Queue.PushVote("v1", "a")
	module.Queue.PushVote("v1", "b")
	module.Queue.PushVote("v2", "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- module.Consumer.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for module.Queue.Len() > 0 || module.Store.Len() < 2 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("queue not drained: %d queued, %d stored", module.Queue.Len(), module.Store.Len())
		}
		time.Sleep(2 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}

	counts := module.Store.Counts()
	if counts[entities.ChoiceA] != 1 || counts[entities.ChoiceB] != 1 {
		t.Fatalf("expected a:1 b:1, got %v", counts)
	}
}
