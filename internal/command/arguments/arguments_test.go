// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/public-datasets/infractl/internal/plans"
)

func TestParseValidate(t *testing.T) {
	tests := map[string]struct {
		args    []string
		want    *Validate
		wantErr bool
	}{
		"defaults": {
			nil,
			&Validate{Path: "."},
			false,
		},
		"path": {
			[]string{"stacks/rankings"},
			&Validate{Path: "stacks/rankings"},
			false,
		},
		"no color": {
			[]string{"-no-color"},
			&Validate{Path: ".", View: View{NoColor: true}},
			false,
		},
		"too many arguments": {
			[]string{"one", "two"},
			&Validate{Path: "."},
			true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, diags := ParseValidate(test.args)
			if diags.HasErrors() != test.wantErr {
				t.Fatalf("HasErrors = %v; want %v: %s", diags.HasErrors(), test.wantErr, diags.Err())
			}
			if test.wantErr {
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected result\n%s", diff)
			}
		})
	}
}

func TestParsePlan(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got, diags := ParsePlan(nil)
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if got.Operation.PlanMode != plans.NormalMode {
			t.Errorf("wrong mode %s; want normal", got.Operation.PlanMode)
		}
		if !got.State.Lock {
			t.Error("locking is disabled by default")
		}
		if got.DetailedExitCode {
			t.Error("detailed exitcode is on by default")
		}
	})

	t.Run("destroy mode", func(t *testing.T) {
		got, diags := ParsePlan([]string{"-destroy"})
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if got.Operation.PlanMode != plans.DestroyMode {
			t.Errorf("wrong mode %s; want destroy", got.Operation.PlanMode)
		}
	})

	t.Run("state and lock flags", func(t *testing.T) {
		got, diags := ParsePlan([]string{"-state=custom.state", "-lock=false", "-detailed-exitcode"})
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if got.State.StatePath != "custom.state" {
			t.Errorf("wrong state path %q", got.State.StatePath)
		}
		if got.State.Lock {
			t.Error("-lock=false did not disable locking")
		}
		if !got.DetailedExitCode {
			t.Error("-detailed-exitcode was not recorded")
		}
	})

	t.Run("positional arguments rejected", func(t *testing.T) {
		_, diags := ParsePlan([]string{"stacks/rankings"})
		if !diags.HasErrors() {
			t.Fatal("succeeded; want too-many-arguments error")
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, diags := ParsePlan([]string{"-frob"})
		if !diags.HasErrors() {
			t.Fatal("succeeded; want flag parse error")
		}
	})
}

func TestParsePlanVars(t *testing.T) {
	got, diags := ParsePlan([]string{
		"-var", "project_id=p1",
		"-var-file", "dev.pdvars.hcl",
		"-var", "project_id=p2",
	})
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Err())
	}

	// The single ordered slice is what lets a later -var win over an
	// earlier one, including across -var-file boundaries.
	want := []FlagNameValue{
		{Name: "-var", Value: "project_id=p1"},
		{Name: "-var-file", Value: "dev.pdvars.hcl"},
		{Name: "-var", Value: "project_id=p2"},
	}
	if diff := cmp.Diff(want, got.Vars.All()); diff != "" {
		t.Errorf("wrong var arguments\n%s", diff)
	}
	if got.Vars.Empty() {
		t.Error("Vars.Empty returned true")
	}
}

func TestParseApply(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got, diags := ParseApply(nil)
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if got.AutoApprove {
			t.Error("auto-approve is on by default")
		}
		if !got.InputEnabled {
			t.Error("input is disabled by default")
		}
		if got.Operation.PlanMode != plans.NormalMode {
			t.Errorf("wrong mode %s; want normal", got.Operation.PlanMode)
		}
	})

	t.Run("auto approve and input", func(t *testing.T) {
		got, diags := ParseApply([]string{"-auto-approve", "-input=false"})
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if !got.AutoApprove {
			t.Error("-auto-approve was not recorded")
		}
		if got.InputEnabled {
			t.Error("-input=false was not recorded")
		}
	})
}

func TestParseApplyDestroy(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		got, diags := ParseApplyDestroy([]string{"-auto-approve"})
		if diags.HasErrors() {
			t.Fatalf("unexpected errors: %s", diags.Err())
		}
		if got.Operation.PlanMode != plans.DestroyMode {
			t.Errorf("wrong mode %s; want destroy", got.Operation.PlanMode)
		}
	})

	t.Run("explicit destroy flag rejected", func(t *testing.T) {
		got, diags := ParseApplyDestroy([]string{"-destroy"})
		if !diags.HasErrors() {
			t.Fatal("succeeded; want invalid mode error")
		}
		// Still forced into destroy mode for the best-effort result.
		if got.Operation.PlanMode != plans.DestroyMode {
			t.Errorf("wrong mode %s; want destroy", got.Operation.PlanMode)
		}
	})
}

func TestParseOutput(t *testing.T) {
	tests := map[string]struct {
		args    []string
		want    *Output
		wantErr bool
	}{
		"defaults": {
			nil,
			&Output{Name: "", State: &State{Lock: true}},
			false,
		},
		"with name": {
			[]string{"storage_bucket"},
			&Output{Name: "storage_bucket", State: &State{Lock: true}},
			false,
		},
		"json": {
			[]string{"-json"},
			&Output{JSON: true, State: &State{Lock: true}},
			false,
		},
		"raw with name": {
			[]string{"-raw", "storage_bucket"},
			&Output{Name: "storage_bucket", Raw: true, State: &State{Lock: true}},
			false,
		},
		"raw requires name": {
			[]string{"-raw"},
			nil,
			true,
		},
		"json and raw conflict": {
			[]string{"-json", "-raw", "storage_bucket"},
			nil,
			true,
		},
		"too many arguments": {
			[]string{"a", "b"},
			nil,
			true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, diags := ParseOutput(test.args)
			if diags.HasErrors() != test.wantErr {
				t.Fatalf("HasErrors = %v; want %v: %s", diags.HasErrors(), test.wantErr, diags.Err())
			}
			if test.wantErr {
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("unexpected result\n%s", diff)
			}
		})
	}
}
