package domain

import "errors"

// ErrEmptyResponse is returned when the model answers without any usable content.
var ErrEmptyResponse = errors.New("empty model response")

// ErrRecordNotFound is returned when a record ID cannot be found in the store.
var ErrRecordNotFound = errors.New("record not found")

// ErrToolchainUnavailable is returned when a compiler or analyzer binary cannot be started.
var ErrToolchainUnavailable = errors.New("toolchain unavailable")

// ErrInvalidDocument is returned when an FSM payload does not have the expected shape.
var ErrInvalidDocument = errors.New("invalid FSM document")
