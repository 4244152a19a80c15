package status

import (
	"errors"
	"fmt"
)

// PollErrorKind classifies a failed status poll.
type PollErrorKind int

const (
	// Transient polls failed in a retryable way (undecodable output, poll
	// timeout). The caller retries on the next tick without state change.
	Transient PollErrorKind = iota

	// SourceUnavailable means the status source itself could not be invoked
	// or reported an error. Fatal to the affected watcher only.
	SourceUnavailable
)

func (k PollErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case SourceUnavailable:
		return "source_unavailable"
	default:
		return "unknown"
	}
}

// PollError wraps a status poll failure with its classification.
type PollError struct {
	Kind PollErrorKind
	Err  error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll failed (%s): %v", e.Kind, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}

// NewTransient wraps err as a retryable poll failure.
func NewTransient(err error) *PollError {
	return &PollError{Kind: Transient, Err: err}
}

// NewSourceUnavailable wraps err as a fatal status-source failure.
func NewSourceUnavailable(err error) *PollError {
	return &PollError{Kind: SourceUnavailable, Err: err}
}

// IsTransient reports whether err is a retryable poll failure.
func IsTransient(err error) bool {
	var pe *PollError
	return errors.As(err, &pe) && pe.Kind == Transient
}

// IsSourceUnavailable reports whether err is a fatal status-source failure.
func IsSourceUnavailable(err error) bool {
	var pe *PollError
	return errors.As(err, &pe) && pe.Kind == SourceUnavailable
}
