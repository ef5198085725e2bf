// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package manager

import "errors"

// State is the lifecycle position of a Manager.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

var (
	// ErrNotRunning is returned by every operation invoked on a manager that is
	// stopping or stopped.
	ErrNotRunning = errors.New("cache manager is not running")

	// ErrReadOnly is returned by Save on a manager started WithReadOnly.
	ErrReadOnly = errors.New("cache manager is read-only")
)
