// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package states

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/providers"
)

func TestStateResources(t *testing.T) {
	state := NewState()
	if !state.Empty() {
		t.Fatal("new state is not empty")
	}

	dsAddr := addrs.Resource{Kind: addrs.Dataset, Name: "rankings"}
	bkAddr := addrs.Resource{Kind: addrs.Bucket, Name: "rankings"}

	state.SetDataset(dsAddr, &providers.DatasetAttrs{
		Project:   "test-project",
		DatasetID: "rankings",
		Location:  "US",
	})
	state.SetBucket(bkAddr, &providers.BucketAttrs{
		Name:         "pub-rankings",
		Project:      "test-project",
		Location:     "US",
		ForceDestroy: true,
	})

	if state.Empty() {
		t.Error("state with resources reports empty")
	}
	if is := state.Resource(dsAddr); is == nil || is.Dataset == nil || is.Bucket != nil {
		t.Errorf("wrong dataset instance %#v", is)
	}

	want := []addrs.Resource{bkAddr, dsAddr}
	if diff := cmp.Diff(want, state.ResourceAddrs()); diff != "" {
		t.Errorf("wrong addresses\n%s", diff)
	}

	// Setting nil attrs is equivalent to removal.
	state.SetDataset(dsAddr, nil)
	if state.Resource(dsAddr) != nil {
		t.Error("dataset still present after nil set")
	}
	state.RemoveResource(bkAddr)
	if !state.Empty() {
		t.Error("state not empty after removing everything")
	}
}

func TestStateOutputs(t *testing.T) {
	state := NewState()
	state.SetOutputValue("bucket", cty.StringVal("pub-rankings"), false)
	state.SetOutputValue("token", cty.StringVal("hunter2"), true)

	if got := state.Outputs["bucket"]; got == nil || got.Sensitive {
		t.Errorf("wrong bucket output %#v", got)
	}
	if got := state.Outputs["token"]; got == nil || !got.Sensitive {
		t.Errorf("wrong token output %#v", got)
	}

	state.RemoveOutputValue("token")
	if _, exists := state.Outputs["token"]; exists {
		t.Error("token output still present after removal")
	}
}

func TestStateDeepCopy(t *testing.T) {
	state := NewState()
	addr := addrs.Resource{Kind: addrs.Dataset, Name: "rankings"}
	state.SetDataset(addr, &providers.DatasetAttrs{
		Project:   "test-project",
		DatasetID: "rankings",
		Location:  "US",
		Labels:    map[string]string{"managed": "infractl"},
	})
	state.SetOutputValue("dataset", cty.StringVal("rankings"), false)

	cp := state.DeepCopy()
	if !state.Equal(cp) {
		t.Fatal("copy is not equal to original")
	}

	// Mutating the copy must leave the original untouched.
	cp.Resource(addr).Dataset.Labels["managed"] = "somebody-else"
	cp.SetOutputValue("dataset", cty.StringVal("other"), false)

	if got := state.Resource(addr).Dataset.Labels["managed"]; got != "infractl" {
		t.Errorf("original labels changed through the copy: %q", got)
	}
	if got := state.Outputs["dataset"].Value; !got.RawEquals(cty.StringVal("rankings")) {
		t.Errorf("original output changed through the copy: %#v", got)
	}
	if state.Equal(cp) {
		t.Error("states still equal after diverging")
	}
}

func TestStateEqual(t *testing.T) {
	addr := addrs.Resource{Kind: addrs.Bucket, Name: "raw"}

	a := NewState()
	a.SetBucket(addr, &providers.BucketAttrs{Name: "raw", Location: "US"})

	b := NewState()
	b.SetBucket(addr, &providers.BucketAttrs{Name: "raw", Location: "US"})

	if !a.Equal(b) {
		t.Error("equivalent states are not equal")
	}

	b.Resource(addr).Bucket.Location = "EU"
	if a.Equal(b) {
		t.Error("differing states are equal")
	}

	// A nil state and an empty state are interchangeable.
	var nilState *State
	if !nilState.Empty() {
		t.Error("nil state is not empty")
	}
	if !NewState().Equal(nilState.DeepCopy()) {
		t.Error("empty state not equal to copy of nil state")
	}
}
