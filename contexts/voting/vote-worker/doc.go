// Package voteworker implements the queue consumer of the voting context.
//
// The module drains the redis vote queue into the votes table. It owns its
// queue and store handles, replaces a handle that reports a connectivity
// failure with a fresh one, and keeps an already-popped vote in flight until
// the store accepts it. Persistence is an insert that falls back to an update
// when the voter already exists, so the table holds the latest choice per voter.
package voteworker
