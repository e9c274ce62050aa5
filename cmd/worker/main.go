package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Drain the vote queue into the store until stopped. A persistence error
//    that retrying cannot fix exits non-zero so the supervisor restarts us.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("voteflow worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}

	err = app.Run(ctx)
	if closeErr := app.Close(); closeErr != nil {
		log.Printf("worker shutdown close failed: %v", closeErr)
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrPersistenceFailed) {
			log.Printf("voteflow worker stopped on persistence failure: %v", err)
		} else {
			log.Printf("voteflow worker stopped with error: %v", err)
		}
		os.Exit(1)
	}
}
