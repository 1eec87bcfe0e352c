// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package plans

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/public-datasets/infractl/internal/addrs"
)

func TestPlanAppendChangeSorts(t *testing.T) {
	plan := &Plan{}
	plan.AppendChange(&ResourceChange{
		Addr:   addrs.Resource{Kind: addrs.Dataset, Name: "b"},
		Action: Create,
	})
	plan.AppendChange(&ResourceChange{
		Addr:   addrs.Resource{Kind: addrs.Bucket, Name: "z"},
		Action: Create,
	})
	plan.AppendChange(&ResourceChange{
		Addr:   addrs.Resource{Kind: addrs.Dataset, Name: "a"},
		Action: Update,
	})

	var got []string
	for _, rc := range plan.Changes {
		got = append(got, rc.Addr.String())
	}
	want := []string{"bucket.z", "dataset.a", "dataset.b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong order\n%s", diff)
	}
}

func TestPlanEmpty(t *testing.T) {
	plan := &Plan{}
	if !plan.Empty() {
		t.Error("plan with no changes is not empty")
	}

	plan.AppendChange(&ResourceChange{
		Addr:   addrs.Resource{Kind: addrs.Dataset, Name: "a"},
		Action: NoOp,
	})
	if !plan.Empty() {
		t.Error("plan with only no-op changes is not empty")
	}

	plan.AppendChange(&ResourceChange{
		Addr:   addrs.Resource{Kind: addrs.Dataset, Name: "b"},
		Action: Delete,
	})
	if plan.Empty() {
		t.Error("plan with a delete is empty")
	}
}

func TestPlanActionCounts(t *testing.T) {
	plan := &Plan{}
	for i, action := range []Action{Create, Create, Update, DeleteThenCreate, NoOp} {
		plan.AppendChange(&ResourceChange{
			Addr:   addrs.Resource{Kind: addrs.Dataset, Name: string(rune('a' + i))},
			Action: action,
		})
	}

	got := plan.ActionCounts()
	want := map[Action]int{
		Create:           2,
		Update:           1,
		DeleteThenCreate: 1,
		NoOp:             1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong counts\n%s", diff)
	}
}

func TestActionString(t *testing.T) {
	want := map[Action]string{
		NoOp:             "NoOp",
		Create:           "Create",
		Update:           "Update",
		Delete:           "Delete",
		DeleteThenCreate: "DeleteThenCreate",
	}
	for action, name := range want {
		if got := action.String(); got != name {
			t.Errorf("wrong name %q for %s", got, name)
		}
	}
}

func TestActionIsReplace(t *testing.T) {
	if !DeleteThenCreate.IsReplace() {
		t.Error("DeleteThenCreate is not a replace")
	}
	for _, action := range []Action{NoOp, Create, Update, Delete} {
		if action.IsReplace() {
			t.Errorf("%s is a replace", action)
		}
	}
}
