// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package plans contains the types that represent a set of planned changes
// to move remote objects into the desired state, as produced by the
// reconciliation engine's plan phase.
package plans

import (
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/providers"
)

// Mode represents the overall goal of a plan operation.
type Mode rune

//go:generate go run golang.org/x/tools/cmd/stringer -type Mode

const (
	// NormalMode is the usual converge-on-configuration mode.
	NormalMode Mode = 0

	// DestroyMode causes a plan that deletes all remote objects tracked in
	// the state.
	DestroyMode Mode = 'D'
)

// Plan is the top-level type representing a planned set of changes.
type Plan struct {
	Mode Mode

	// Changes are the planned resource changes, sorted by address.
	Changes []*ResourceChange

	// PlannedOutputs are the output values as they would resolve if the
	// plan were applied. Values that depend on attributes not known until
	// apply are cty unknown values.
	PlannedOutputs map[string]cty.Value

	// Errored indicates that the plan is incomplete because planning was
	// interrupted by an error, and therefore it must not be applied.
	Errored bool
}

// ResourceChange describes the planned change for one resource.
//
// Before and After each hold either a *providers.DatasetAttrs or a
// *providers.BucketAttrs, matching Addr.Kind. Before is nil for Create and
// After is nil for Delete.
type ResourceChange struct {
	Addr   addrs.Resource
	Action Action

	Before providers.Object
	After  providers.Object

	// ActionReason is a human-oriented explanation of why an unusual action
	// was chosen, such as replacement due to an immutable attribute.
	ActionReason string
}

// Empty returns true if the plan contains no changes that would require
// modifying remote objects.
func (p *Plan) Empty() bool {
	for _, rc := range p.Changes {
		if rc.Action != NoOp {
			return false
		}
	}
	return true
}

// AppendChange adds a change to the plan, keeping the changes sorted by
// resource address.
func (p *Plan) AppendChange(rc *ResourceChange) {
	p.Changes = append(p.Changes, rc)
	sort.Slice(p.Changes, func(i, j int) bool {
		return p.Changes[i].Addr.Less(p.Changes[j].Addr)
	})
}

// Change returns the planned change for the given address, or nil if the
// plan does not include that resource.
func (p *Plan) Change(addr addrs.Resource) *ResourceChange {
	for _, rc := range p.Changes {
		if rc.Addr == addr {
			return rc
		}
	}
	return nil
}

// ActionCounts summarizes the plan as a count of changes per action, for
// rendering lines like "1 to add, 0 to change, 0 to destroy".
func (p *Plan) ActionCounts() map[Action]int {
	ret := map[Action]int{}
	for _, rc := range p.Changes {
		ret[rc.Action]++
	}
	return ret
}
