// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// Output represents the command-line arguments for the output command.
type Output struct {
	// Name identifies a specific output value. If unset, all outputs are
	// shown.
	Name string

	// State contains the common state flags.
	State *State

	// JSON renders the output values in a machine-readable format.
	JSON bool

	// Raw renders a single string, number, or boolean output value without
	// quoting or other decoration, for consumption by shell scripts.
	Raw bool

	// View specifies display options.
	View View
}

// ParseOutput processes CLI arguments, returning an Output value and errors.
// If errors are encountered, an Output value is still returned representing
// the best effort interpretation of the arguments.
func ParseOutput(args []string) (*Output, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	output := &Output{
		State: &State{},
	}

	cmdFlags := extendedFlagSet("output", output.State, nil, nil)
	cmdFlags.BoolVar(&output.JSON, "json", false, "json")
	cmdFlags.BoolVar(&output.Raw, "raw", false, "raw")
	output.View.AddFlags(cmdFlags)

	if err := cmdFlags.Parse(args); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to parse command-line flags",
			err.Error(),
		))
	}

	args = cmdFlags.Args()
	switch len(args) {
	case 0:
		// All outputs
	case 1:
		output.Name = args[0]
	default:
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Unexpected argument",
			"The output command expects exactly one argument with the name of an output value, or no arguments to show all outputs.",
		))
	}

	if output.JSON && output.Raw {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid output format",
			"The -raw and -json options are mutually-exclusive.",
		))
	}

	if output.Raw && output.Name == "" {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Output name required",
			"You must give the name of a single output value when using the -raw option.",
		))
	}

	return output, diags
}
