package errors

import "errors"

var (
	ErrMalformedQueueItem = errors.New("malformed queue item")
	ErrDuplicateVoter     = errors.New("voter already has a vote")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrStoreUnavailable   = errors.New("vote store unavailable")
	ErrQueueUnavailable   = errors.New("vote queue unavailable")
	ErrPersistenceFailed  = errors.New("vote persistence failed")
)
