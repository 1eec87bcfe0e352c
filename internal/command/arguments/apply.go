// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"fmt"

	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// Apply represents the command-line arguments for the apply command.
type Apply struct {
	// State, Operation, and Vars are the common extended flags.
	State     *State
	Operation *Operation
	Vars      *Vars

	// AutoApprove skips the manual verification step for the apply
	// operation.
	AutoApprove bool

	// InputEnabled is used to disable interactive input for the approval
	// prompt. Default is true.
	InputEnabled bool

	// View specifies display options.
	View View
}

// ParseApply processes CLI arguments, returning an Apply value and errors.
// If errors are encountered, an Apply value is still returned representing
// the best effort interpretation of the arguments.
func ParseApply(args []string) (*Apply, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	apply := &Apply{
		State:     &State{},
		Operation: &Operation{},
		Vars:      &Vars{},
	}

	cmdFlags := extendedFlagSet("apply", apply.State, apply.Operation, apply.Vars)
	cmdFlags.BoolVar(&apply.AutoApprove, "auto-approve", false, "auto-approve")
	cmdFlags.BoolVar(&apply.InputEnabled, "input", true, "input")
	apply.View.AddFlags(cmdFlags)

	if err := cmdFlags.Parse(args); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to parse command-line flags",
			err.Error(),
		))
	}

	if len(cmdFlags.Args()) > 0 {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Too many command line arguments",
			"To specify a working directory for the apply, use the global -chdir flag.",
		))
	}

	diags = diags.Append(apply.Operation.Parse())

	return apply, diags
}

// ParseApplyDestroy is a special case of ParseApply that deals with the
// "destroy" command, which is effectively an alias for "apply -destroy".
func ParseApplyDestroy(args []string) (*Apply, tfdiags.Diagnostics) {
	apply, diags := ParseApply(args)

	// So far ParseApply's definition of -destroy is compatible with the
	// destroy command, but it is not valid to set it explicitly.
	if apply.Operation.PlanMode == plans.DestroyMode {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid mode option",
			fmt.Sprintf("The -destroy option is not valid for the %q command: this command always runs in destroy mode.", "destroy"),
		))
	}
	apply.Operation.PlanMode = plans.DestroyMode

	return apply, diags
}
