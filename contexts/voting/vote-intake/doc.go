// Package voteintake implements the producer side of the voting context: it
// validates a ballot, assigns the voter a stable id and appends the vote to
// the redis queue that the worker drains.
package voteintake
