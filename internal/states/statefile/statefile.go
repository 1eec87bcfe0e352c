// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package statefile deals with the file format used to serialize states
// for persistent storage and then deserialize them into memory again later.
package statefile

import (
	"github.com/public-datasets/infractl/internal/states"
)

// File is the in-memory representation of a state file. It includes the
// state itself as well as the snapshot metadata that the state manager
// uses to decide whether one snapshot supersedes another.
type File struct {
	// Lineage is set when a new state file is first created and then
	// preserved through all subsequent snapshots, allowing two snapshots to
	// be recognized as descending from the same original empty state.
	Lineage string

	// Serial is incremented each time a new snapshot with different
	// content is written.
	Serial uint64

	// InfractlVersion is the version of infractl that wrote the snapshot.
	InfractlVersion string

	// State is the state the snapshot captures.
	State *states.State
}

// New creates a new state file object, with the given state, lineage and
// serial.
func New(state *states.State, lineage string, serial uint64) *File {
	if state == nil {
		state = states.NewState()
	}

	return &File{
		Lineage: lineage,
		Serial:  serial,
		State:   state,
	}
}

// DeepCopy is a convenience method to create a new File object whose state
// is a deep copy of the receiver's, as implemented by states.State.DeepCopy.
func (f *File) DeepCopy() *File {
	if f == nil {
		return nil
	}
	return &File{
		Lineage:         f.Lineage,
		Serial:          f.Serial,
		InfractlVersion: f.InfractlVersion,
		State:           f.State.DeepCopy(),
	}
}
