package domain

import "errors"

var (
	// ErrRequestFailed collapses every facade failure mode (transport error,
	// timeout, provider error envelope, unparsable payload) into the single
	// "no data" condition callers degrade on. Callers cannot distinguish a
	// network failure from a remote-service rejection through this sentinel.
	ErrRequestFailed = errors.New("request failed")
	// ErrEmptyCompletion signals a completion response with no usable content.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrMissingName signals an input record without a usable business name.
	ErrMissingName = errors.New("missing business name")
)
