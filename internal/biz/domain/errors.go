package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTargetIdentity means no resolution strategy produced a user ID
	ErrNoTargetIdentity = errors.New("no target identity")

	// ErrCooldownSuppressed means the same target was poked within the cooldown window
	ErrCooldownSuppressed = errors.New("cooldown suppressed")

	// ErrDispatchFailed is matched by every per-candidate dispatch error
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrPluginDisabled means the poke plugin is switched off in config
	ErrPluginDisabled = errors.New("plugin disabled")
)

// TransportError is a failed round trip to the adapter: timeout, non-2xx, or unreadable body
type TransportError struct {
	Path       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("POST %s: HTTP %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("POST %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrDispatchFailed
}

// AdapterRejectedError is a reachable adapter answering with a non-success status
type AdapterRejectedError struct {
	Path    string
	Status  string
	RetCode int
	Msg     string
}

func (e *AdapterRejectedError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("POST %s: adapter rejected (status=%q retcode=%d): %s", e.Path, e.Status, e.RetCode, msg)
}

func (e *AdapterRejectedError) Is(target error) bool {
	return target == ErrDispatchFailed
}
