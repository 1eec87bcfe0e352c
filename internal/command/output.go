// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/public-datasets/infractl/internal/command/arguments"
	"github.com/public-datasets/infractl/internal/command/format"
	"github.com/public-datasets/infractl/internal/states"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// OutputCommand is a Command implementation that reads output values from
// the state file.
type OutputCommand struct {
	Meta
}

func (c *OutputCommand) Run(rawArgs []string) int {
	args, diags := arguments.ParseOutput(rawArgs)
	c.Meta.process(args.View.NoColor)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		c.Ui.Output(c.Help())
		return 1
	}

	mgr := c.stateManager(c.statePath(args.State.StatePath), false)
	if err := mgr.RefreshState(); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to read state",
			err.Error(),
		))
		c.showDiagnostics(diags)
		return 1
	}

	state := mgr.State()
	if state == nil {
		state = states.NewState()
	}

	if args.Name != "" {
		ov, ok := state.Outputs[args.Name]
		if !ok {
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Error,
				"Output not found",
				fmt.Sprintf(
					"The state has no output named %q. If you recently added this output to your configuration, run \"infractl apply\" to record its value.",
					args.Name,
				),
			))
			c.showDiagnostics(diags)
			return 1
		}
		return c.renderOne(args, ov)
	}

	if args.JSON {
		return c.renderAllJSON(state)
	}

	if len(state.Outputs) == 0 {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Warning,
			"No outputs found",
			"The state contains no outputs. Define an output block in your configuration and run \"infractl apply\" to record output values.",
		))
		c.showDiagnostics(diags)
		return 0
	}

	for _, name := range sortedStateOutputNames(state) {
		ov := state.Outputs[name]
		if ov.Sensitive {
			c.Ui.Output(fmt.Sprintf("%s = <sensitive>", name))
			continue
		}
		c.Ui.Output(fmt.Sprintf("%s = %s", name, format.Value(ov.Value)))
	}
	return 0
}

func (c *OutputCommand) renderOne(args *arguments.Output, ov *states.OutputValue) int {
	switch {
	case args.JSON:
		jv, err := ctyjson.Marshal(ov.Value, ov.Value.Type())
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Failed to serialize output %q: %s", ov.Name, err))
			return 1
		}
		c.Ui.Output(string(jv))
	case args.Raw:
		str, err := rawOutputString(ov.Value)
		if err != nil {
			c.showDiagnostics(tfdiags.Sourceless(
				tfdiags.Error,
				"Unsupported value for raw output",
				fmt.Sprintf(
					"The -raw option only supports strings, numbers, and boolean values, but output %q is %s.",
					ov.Name, ov.Value.Type().FriendlyName(),
				),
			))
			return 1
		}
		c.Ui.Output(str)
	default:
		if ov.Sensitive {
			c.Ui.Output("<sensitive>")
			return 0
		}
		c.Ui.Output(format.Value(ov.Value))
	}
	return 0
}

func (c *OutputCommand) renderAllJSON(state *states.State) int {
	vals := map[string]json.RawMessage{}
	for name, ov := range state.Outputs {
		jv, err := ctyjson.Marshal(ov.Value, ov.Value.Type())
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Failed to serialize output %q: %s", name, err))
			return 1
		}
		vals[name] = json.RawMessage(jv)
	}
	out, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to serialize outputs: %s", err))
		return 1
	}
	c.Ui.Output(string(out))
	return 0
}

// rawOutputString converts a primitive-typed value into its raw string
// representation with no quoting.
func rawOutputString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("value is null")
	}
	v, err := convertToRaw(v)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

func convertToRaw(v cty.Value) (cty.Value, error) {
	switch v.Type() {
	case cty.String:
		return v, nil
	case cty.Number:
		return cty.StringVal(v.AsBigFloat().Text('f', -1)), nil
	case cty.Bool:
		if v.True() {
			return cty.StringVal("true"), nil
		}
		return cty.StringVal("false"), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported type %s", v.Type().FriendlyName())
	}
}

func (c *OutputCommand) Help() string {
	helpText := `
Usage: infractl output [options] [NAME]

  Read an output value recorded in the state file. With no additional
  arguments, all outputs are shown.

Options:

  -json        Print the output values in JSON format.

  -no-color    If specified, output won't contain any color.

  -raw         Print the raw string value of a single output, with no
               quoting. Only works with primitive-typed outputs.

  -state=path  Path to the state file. Defaults to "infractl.state".
`
	return strings.TrimSpace(helpText)
}

func (c *OutputCommand) Synopsis() string {
	return "Show output values from the state"
}
