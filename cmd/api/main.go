package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"voteflow/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config and wait for the vote store.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP and the live channel, run the tally loop.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("voteflow api starting")
	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}

	err = app.Run(ctx)
	if closeErr := app.Close(); closeErr != nil {
		log.Printf("api shutdown close failed: %v", closeErr)
	}
	if err != nil {
		log.Printf("voteflow api stopped with error: %v", err)
		os.Exit(1)
	}
}
