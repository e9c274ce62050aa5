package workers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"voteflow/contexts/voting/vote-worker/adapters/memory"
	"voteflow/contexts/voting/vote-worker/application/workers"
	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
)

type recordingMetrics struct {
	mu         sync.Mutex
	dequeued   int
	persisted  map[string]int
	malformed  int
	keepAlives int
	connected  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{persisted: map[string]int{}, connected: map[string]int{}}
}

func (m *recordingMetrics) ItemDequeued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dequeued++
}

func (m *recordingMetrics) VotePersisted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted[outcome]++
}

func (m *recordingMetrics) MalformedItem() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed++
}

func (m *recordingMetrics) KeepAlive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keepAlives++
}

func (m *recordingMetrics) Connected(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected[target]++
}

func newConsumer(queue *memory.Queue, store *memory.Store, metrics *recordingMetrics) *workers.QueueConsumer {
	consumer := &workers.QueueConsumer{
		Queues:         queue,
		Stores:         store,
		PollInterval:   time.Millisecond,
		ReconnectDelay: 5 * time.Millisecond,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if metrics != nil {
		consumer.Metrics = metrics
	}
	return consumer
}

func TestQueueConsumerAppliesLastVotePerVoter(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	metrics := newRecordingMetrics()
	consumer := newConsumer(queue, store, metrics)

	queue.PushVote("v1", "a")
	queue.PushVote("v1", "b")
	queue.PushVote("v2", "a")

	for i := 0; i < 3; i++ {
		if err := consumer.RunOnce(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	if choice, _ := store.Vote("v1"); choice != entities.ChoiceB {
		t.Fatalf("expected v1 to hold b, got %q", choice)
	}
	if choice, _ := store.Vote("v2"); choice != entities.ChoiceA {
		t.Fatalf("expected v2 to hold a, got %q", choice)
	}
	counts := store.Counts()
	if counts[entities.ChoiceA] != 1 || counts[entities.ChoiceB] != 1 {
		t.Fatalf("expected a:1 b:1, got %v", counts)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected drained queue, got %d items", queue.Len())
	}
	if metrics.dequeued != 3 {
		t.Fatalf("expected 3 dequeued items, got %d", metrics.dequeued)
	}
	if metrics.persisted[string(entities.UpsertInserted)] != 2 || metrics.persisted[string(entities.UpsertUpdated)] != 1 {
		t.Fatalf("unexpected persist outcomes: %v", metrics.persisted)
	}
}

func TestQueueConsumerKeepsStoreAliveWhileQueueIsEmpty(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	metrics := newRecordingMetrics()
	consumer := newConsumer(queue, store, metrics)

	for i := 0; i < 10; i++ {
		if err := consumer.RunOnce(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	if store.Pings() != 10 {
		t.Fatalf("expected 10 keep-alive pings, got %d", store.Pings())
	}
	if metrics.keepAlives != 10 {
		t.Fatalf("expected 10 keep-alive metrics, got %d", metrics.keepAlives)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no writes, got %d records", store.Len())
	}
	if store.Connects() != 1 {
		t.Fatalf("expected a single store connection, got %d", store.Connects())
	}
	if queue.Pings() != 10 {
		t.Fatalf("expected 10 queue pings, got %d", queue.Pings())
	}
	if queue.Connects() != 1 {
		t.Fatalf("expected a single queue connection, got %d", queue.Connects())
	}
}

func TestQueueConsumerKeepsInFlightVoteAcrossStoreOutage(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("bootstrap tick failed: %v", err)
	}

	queue.PushVote("v1", "a")
	store.SetDown(true)
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("outage tick should not be fatal: %v", err)
	}
	pending, ok := consumer.Pending()
	if !ok || pending.VoterID != "v1" {
		t.Fatalf("expected v1 to stay in flight, got %+v (present=%v)", pending, ok)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected item to have left the queue, got %d", queue.Len())
	}

	queue.PushVote("v2", "b")
	done := make(chan error, 1)
	go func() { done <- consumer.RunOnce(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("expected tick to wait for the store, returned %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	store.SetDown(false)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("recovery tick failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not reconnect to the store")
	}

	if choice, ok := store.Vote("v1"); !ok || choice != entities.ChoiceA {
		t.Fatalf("expected in-flight vote to be persisted, got %q (present=%v)", choice, ok)
	}
	if _, ok := consumer.Pending(); ok {
		t.Fatal("expected no vote in flight after recovery")
	}
	if queue.Len() != 1 {
		t.Fatalf("expected v2 to wait in the queue until the next tick, got %d", queue.Len())
	}
	if store.Connects() != 2 {
		t.Fatalf("expected a reconnect, got %d connections", store.Connects())
	}
}

func TestQueueConsumerDropsMalformedItems(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	metrics := newRecordingMetrics()
	consumer := newConsumer(queue, store, metrics)

	queue.Push([]byte("not json"))
	queue.Push([]byte(`{"vote":"c","voter_id":"v1"}`))
	queue.Push([]byte(`{"vote":"a","voter_id":""}`))
	queue.PushVote("v2", "B")

	for i := 0; i < 4; i++ {
		if err := consumer.RunOnce(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}

	if metrics.malformed != 3 {
		t.Fatalf("expected 3 malformed items, got %d", metrics.malformed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the valid vote to be stored, got %d", store.Len())
	}
	if choice, _ := store.Vote("v2"); choice != entities.ChoiceB {
		t.Fatalf("expected v2 to hold b, got %q", choice)
	}
}

func TestQueueConsumerFailsOnNonTransientPersistenceError(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)

	queue.PushVote("v1", "a")
	store.FailNextWrite(errors.New("relation votes has no column vote"))

	err := consumer.RunOnce(context.Background())
	if !errors.Is(err, domainerrors.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
}

func TestQueueConsumerReconnectsQueueAfterPopFailure(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)
	ctx := context.Background()

	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("bootstrap tick failed: %v", err)
	}

	queue.SetDown(true)
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("pop failure should not be fatal: %v", err)
	}

	queue.SetDown(false)
	queue.PushVote("v1", "b")
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("reconnect tick failed: %v", err)
	}

	if queue.Connects() != 2 {
		t.Fatalf("expected queue reconnect, got %d connections", queue.Connects())
	}
	if choice, _ := store.Vote("v1"); choice != entities.ChoiceB {
		t.Fatalf("expected v1 to hold b, got %q", choice)
	}
}

func TestQueueConsumerRunDrainsQueueUntilCancelled(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)

	queue.PushVote("v1", "a")
	queue.PushVote("v2", "b")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() < 2 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("expected 2 stored votes, got %d", store.Len())
		}
		time.Sleep(2 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}

func TestQueueConsumerRunWaitsForStoreAtStartup(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	store.SetDown(true)
	consumer := newConsumer(queue, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := consumer.Run(ctx); err != nil {
		t.Fatalf("expected nil on cancellation, got %v", err)
	}
	if store.Connects() != 0 {
		t.Fatalf("expected no successful connection, got %d", store.Connects())
	}
}

func TestQueueConsumerFinishesInFlightVoteWhileQueueIsDown(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("bootstrap tick failed: %v", err)
	}
	queue.PushVote("v1", "b")
	store.SetDown(true)
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("outage tick should not be fatal: %v", err)
	}

	queue.SetDown(true)
	store.SetDown(false)
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("in-flight tick failed: %v", err)
	}

	if choice, ok := store.Vote("v1"); !ok || choice != entities.ChoiceB {
		t.Fatalf("expected in-flight vote to be persisted, got %q (present=%v)", choice, ok)
	}
	if _, ok := consumer.Pending(); ok {
		t.Fatal("expected no vote in flight")
	}
	if queue.Connects() != 1 {
		t.Fatalf("expected the queue to be left alone, got %d connections", queue.Connects())
	}
}

func TestQueueConsumerRunFailsWhenStoreBootstrapIsRejected(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	store.FailConnect(errors.New("votes is a view, cannot create table"))
	consumer := newConsumer(queue, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := consumer.Run(ctx)
	if !errors.Is(err, domainerrors.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("expected Run to stop before the deadline")
	}
}

func TestQueueConsumerRunFailsWhenStoreReconnectIsRejected(t *testing.T) {
	queue := memory.NewQueue()
	store := memory.NewStore()
	consumer := newConsumer(queue, store, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("bootstrap tick failed: %v", err)
	}
	queue.PushVote("v1", "a")
	store.SetDown(true)
	if err := consumer.RunOnce(ctx); err != nil {
		t.Fatalf("outage tick should not be fatal: %v", err)
	}

	store.SetDown(false)
	store.FailConnect(errors.New("permission denied for schema public"))
	err := consumer.RunOnce(ctx)
	if !errors.Is(err, domainerrors.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
}
