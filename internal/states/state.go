// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package states and its sub-packages contain the model types and helper
// functions for representing infractl state: a record of the remote
// objects that a stack configuration most recently converged to.
package states

import (
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/providers"
)

// State is the top-level type of an infractl state.
//
// A state is a snapshot of the remote objects belonging to one stack, taken
// after the most recent apply, plus the output values that were resolved at
// that time.
type State struct {
	Resources map[addrs.Resource]*ResourceInstance
	Outputs   map[string]*OutputValue
}

// ResourceInstance records the remote object for one declared resource.
// Exactly one of Dataset or Bucket is non-nil, matching Addr.Kind.
type ResourceInstance struct {
	Addr addrs.Resource

	Dataset *providers.DatasetAttrs
	Bucket  *providers.BucketAttrs
}

// OutputValue is the value of one named output, as resolved after the most
// recent apply.
type OutputValue struct {
	Name      string
	Value     cty.Value
	Sensitive bool
}

// NewState constructs a minimal empty state, ready to have resources and
// outputs written into it.
func NewState() *State {
	return &State{
		Resources: map[addrs.Resource]*ResourceInstance{},
		Outputs:   map[string]*OutputValue{},
	}
}

// Empty returns true if there are no resources and no outputs tracked by
// the receiver, which may be nil.
func (s *State) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Resources) == 0 && len(s.Outputs) == 0
}

// Resource returns the instance recorded for the given address, or nil if
// none is tracked.
func (s *State) Resource(addr addrs.Resource) *ResourceInstance {
	if s == nil {
		return nil
	}
	return s.Resources[addr]
}

// SetDataset records the remote object for a dataset resource, replacing
// any existing record for the same address. A nil attrs removes the record.
func (s *State) SetDataset(addr addrs.Resource, attrs *providers.DatasetAttrs) {
	if attrs == nil {
		delete(s.Resources, addr)
		return
	}
	s.Resources[addr] = &ResourceInstance{Addr: addr, Dataset: attrs}
}

// SetBucket records the remote object for a bucket resource, replacing any
// existing record for the same address. A nil attrs removes the record.
func (s *State) SetBucket(addr addrs.Resource, attrs *providers.BucketAttrs) {
	if attrs == nil {
		delete(s.Resources, addr)
		return
	}
	s.Resources[addr] = &ResourceInstance{Addr: addr, Bucket: attrs}
}

// RemoveResource removes any record for the given address.
func (s *State) RemoveResource(addr addrs.Resource) {
	delete(s.Resources, addr)
}

// SetOutputValue records the value of a named output.
func (s *State) SetOutputValue(name string, value cty.Value, sensitive bool) {
	s.Outputs[name] = &OutputValue{
		Name:      name,
		Value:     value,
		Sensitive: sensitive,
	}
}

// RemoveOutputValue removes the record of a named output.
func (s *State) RemoveOutputValue(name string) {
	delete(s.Outputs, name)
}

// ResourceAddrs returns the addresses of all tracked resources in sorted
// order, for deterministic iteration.
func (s *State) ResourceAddrs() []addrs.Resource {
	if s == nil {
		return nil
	}
	ret := make([]addrs.Resource, 0, len(s.Resources))
	for addr := range s.Resources {
		ret = append(ret, addr)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Less(ret[j])
	})
	return ret
}

// DeepCopy returns a new state that contains equivalent data to the
// receiver but shares no backing memory in common.
func (s *State) DeepCopy() *State {
	if s == nil {
		return nil
	}

	ret := NewState()
	for addr, ri := range s.Resources {
		cp := &ResourceInstance{Addr: ri.Addr}
		if ri.Dataset != nil {
			d := *ri.Dataset
			d.Labels = copyLabels(ri.Dataset.Labels)
			cp.Dataset = &d
		}
		if ri.Bucket != nil {
			b := *ri.Bucket
			b.Labels = copyLabels(ri.Bucket.Labels)
			cp.Bucket = &b
		}
		ret.Resources[addr] = cp
	}
	for name, ov := range s.Outputs {
		cp := *ov
		ret.Outputs[name] = &cp
	}
	return ret
}

// Equal returns true if the receiver is equal to the other given state,
// ignoring insertion order.
func (s *State) Equal(other *State) bool {
	if s.Empty() != other.Empty() {
		return false
	}
	if s.Empty() && other.Empty() {
		return true
	}
	if !reflect.DeepEqual(s.Resources, other.Resources) {
		return false
	}
	if len(s.Outputs) != len(other.Outputs) {
		return false
	}
	for name, ov := range s.Outputs {
		oov, exists := other.Outputs[name]
		if !exists || ov.Sensitive != oov.Sensitive || !ov.Value.RawEquals(oov.Value) {
			return false
		}
	}
	return true
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	ret := make(map[string]string, len(labels))
	for k, v := range labels {
		ret[k] = v
	}
	return ret
}
