// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"flag"

	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// State describes arguments which are used to define how a command interacts
// with state.
type State struct {
	// Lock controls whether the state manager takes the advisory lock file
	// during operations.
	Lock bool

	// StatePath specifies a non-default location for the state file. The
	// default value is blank, which is interpreted as "infractl.state" in
	// the working directory.
	StatePath string
}

// Operation describes arguments which configure how a plan or apply
// operation executes.
type Operation struct {
	// PlanMode selects the overall goal of a plan operation.
	PlanMode plans.Mode

	// destroyRaw is used only temporarily during decoding. Method Parse
	// populates PlanMode from it.
	destroyRaw bool
}

// Parse must be called on Operation after initial flag parse.
func (o *Operation) Parse() tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics

	if o.destroyRaw {
		o.PlanMode = plans.DestroyMode
	} else {
		o.PlanMode = plans.NormalMode
	}

	return diags
}

// Vars describes arguments which specify non-default variable values. The
// order of the CLI arguments determines the final value of the gathered
// variables, so -var and -var-file share one ordered slice.
type Vars struct {
	vars     *flagNameValueSlice
	varFiles *flagNameValueSlice
}

func (v *Vars) All() []FlagNameValue {
	if v.vars == nil {
		return nil
	}
	return v.vars.AllItems()
}

func (v *Vars) Empty() bool {
	if v.vars == nil {
		return true
	}
	return v.vars.Empty()
}

// extendedFlagSet creates a FlagSet with the common state, operation, and
// vars flags used by the operational commands. Target structs for each
// subset of flags must be provided in order to support those flags.
func extendedFlagSet(name string, state *State, operation *Operation, vars *Vars) *flag.FlagSet {
	f := defaultFlagSet(name)

	if state == nil && operation == nil && vars == nil {
		panic("use defaultFlagSet")
	}

	if state != nil {
		f.BoolVar(&state.Lock, "lock", true, "lock")
		f.StringVar(&state.StatePath, "state", "", "state-path")
	}

	if operation != nil {
		f.BoolVar(&operation.destroyRaw, "destroy", false, "destroy")
	}

	// Gather all -var and -var-file arguments into one heterogeneous
	// structure to preserve the overall order.
	if vars != nil {
		varsFlags := newFlagNameValueSlice("-var")
		varFilesFlags := varsFlags.Alias("-var-file")
		vars.vars = &varsFlags
		vars.varFiles = &varFilesFlags
		f.Var(vars.vars, "var", "var")
		f.Var(vars.varFiles, "var-file", "var-file")
	}

	return f
}
