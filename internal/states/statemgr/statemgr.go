// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package statemgr defines the interfaces for managing state, and provides
// the filesystem implementation used for local state snapshots.
package statemgr

import (
	"github.com/public-datasets/infractl/internal/states"
)

// Full is the set of capabilities that the rest of infractl expects from a
// state manager.
type Full interface {
	Transient
	Persistent
	Locker
}

// Transient is the interface for reading and writing the in-memory
// snapshot held by a state manager.
type Transient interface {
	// State returns a snapshot of the current in-memory state. The caller
	// receives its own copy, so modifying the result does not affect the
	// state manager until a subsequent WriteState.
	State() *states.State

	// WriteState replaces the in-memory snapshot. It does not persist; call
	// PersistState for that.
	WriteState(*states.State) error
}

// Persistent is the interface for state managers that can load from and
// commit to some durable storage.
type Persistent interface {
	// RefreshState reads the latest snapshot from durable storage into
	// memory. If no snapshot exists yet, the in-memory state becomes nil.
	RefreshState() error

	// PersistState commits the in-memory snapshot to durable storage,
	// incrementing the snapshot serial if the content has changed.
	PersistState() error
}

// Locker is the interface for state managers that are able to manage
// mutual-exclusion for state access.
type Locker interface {
	// Lock acquires the lock, returning an id that must be passed to
	// Unlock. If the lock is already held, the error includes the
	// information recorded by the current holder.
	Lock(info *LockInfo) (string, error)

	// Unlock releases the lock with the given id.
	Unlock(id string) error
}

// LockDisabled implements Full but disables state locking. This is useful
// for tests, or for wrapping a manager when the user has requested
// -lock=false.
type LockDisabled struct {
	// We can't embed State directly since Go dislikes that a field is
	// State and State interface has a method State
	Inner Full
}

var _ Full = (*LockDisabled)(nil)

func (s *LockDisabled) State() *states.State {
	return s.Inner.State()
}

func (s *LockDisabled) WriteState(v *states.State) error {
	return s.Inner.WriteState(v)
}

func (s *LockDisabled) RefreshState() error {
	return s.Inner.RefreshState()
}

func (s *LockDisabled) PersistState() error {
	return s.Inner.PersistState()
}

func (s *LockDisabled) Lock(info *LockInfo) (string, error) {
	return "", nil
}

func (s *LockDisabled) Unlock(id string) error {
	return nil
}
