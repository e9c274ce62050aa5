package errors

import "errors"

var (
	ErrStoreUnavailable = errors.New("vote store unavailable")
	ErrPublishFailed    = errors.New("tally publish failed")
)
