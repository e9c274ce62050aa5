package errors

import "errors"

var (
	ErrInvalidChoice    = errors.New("vote must be a or b")
	ErrQueueUnavailable = errors.New("vote queue unavailable")
)
