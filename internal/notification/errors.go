package notification

import "errors"

var (
	// ErrParse means the decoded queue message is not a usable event.
	ErrParse = errors.New("invalid event payload")
	// ErrDispatch wraps failures raised by a channel sender.
	ErrDispatch = errors.New("notification dispatch failed")
)
