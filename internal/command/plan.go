// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/command/arguments"
	"github.com/public-datasets/infractl/internal/command/format"
	"github.com/public-datasets/infractl/internal/engine"
	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/states/statemgr"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// PlanCommand is a Command implementation that compares the configuration
// against the remote objects and shows the changes needed to converge.
type PlanCommand struct {
	Meta
}

func (c *PlanCommand) Run(rawArgs []string) int {
	args, diags := arguments.ParsePlan(rawArgs)
	c.Meta.process(args.View.NoColor)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		c.Ui.Output(c.Help())
		return 1
	}

	plan, diags := c.plan(args)
	c.showDiagnostics(diags)
	if diags.HasErrors() || plan == nil || plan.Errored {
		return 1
	}

	renderPlan(plan, c.Ui, c.Colorize())

	if args.DetailedExitCode && !plan.Empty() {
		return 2
	}
	return 0
}

func (c *PlanCommand) plan(args *arguments.Plan) (*plans.Plan, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	dir := c.workingDir()
	stack, moreDiags := c.loadStack(dir)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		return nil, diags
	}

	rawVals, moreDiags := c.collectVariableValues(dir, args.Vars)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		return nil, diags
	}

	vars, moreDiags := engine.ResolveVariables(stack, rawVals)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		return nil, diags
	}

	mgr := c.stateManager(c.statePath(args.State.StatePath), args.State.Lock)

	lockInfo := statemgr.NewLockInfo()
	lockInfo.Operation = "plan"
	lockID, err := mgr.Lock(lockInfo)
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Error acquiring the state lock",
			err.Error(),
		))
		return nil, diags
	}
	defer func() {
		if err := mgr.Unlock(lockID); err != nil {
			c.Ui.Error(fmt.Sprintf("Error releasing the state lock: %s", err))
		}
	}()

	if err := mgr.RefreshState(); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to read state",
			err.Error(),
		))
		return nil, diags
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	eng, closeClients, err := c.engine(ctx, nil)
	if err != nil {
		diags = diags.Append(err)
		return nil, diags
	}
	defer func() {
		if err := closeClients(); err != nil {
			c.Ui.Error(fmt.Sprintf("Error closing API clients: %s", err))
		}
	}()

	plan, moreDiags := eng.Plan(ctx, stack, vars, mgr.State(), args.Operation.PlanMode)
	diags = diags.Append(moreDiags)
	return plan, diags
}

// renderPlan writes a human-readable description of the plan to the UI.
func renderPlan(plan *plans.Plan, ui cli.Ui, colorize *colorstring.Colorize) {
	if plan.Empty() {
		ui.Output(colorize.Color("[reset][bold][green]No changes.[reset][bold] Your infrastructure matches the configuration.[reset]\n"))
		ui.Output("The remote objects already match the configuration, so no changes are needed.")
		return
	}

	switch plan.Mode {
	case plans.DestroyMode:
		ui.Output("The following objects will be destroyed:\n")
	default:
		ui.Output("The following changes will be made:\n")
	}

	for _, rc := range plan.Changes {
		if rc.Action == plans.NoOp {
			continue
		}
		ui.Output(renderChange(rc, colorize))
	}

	counts := plan.ActionCounts()
	ui.Output(colorize.Color(fmt.Sprintf(
		"[reset][bold]Plan:[reset] %d to add, %d to change, %d to destroy.",
		counts[plans.Create]+counts[plans.DeleteThenCreate],
		counts[plans.Update],
		counts[plans.Delete]+counts[plans.DeleteThenCreate],
	)))

	if len(plan.PlannedOutputs) > 0 && plan.Mode != plans.DestroyMode {
		ui.Output(colorize.Color("\n[reset][bold]Changes to Outputs:[reset]"))
		for _, name := range sortedOutputNames(plan.PlannedOutputs) {
			val := plan.PlannedOutputs[name]
			rendered := "(known after apply)"
			if val.IsWhollyKnown() {
				rendered = format.Value(val)
			}
			ui.Output(fmt.Sprintf("  %s = %s", name, rendered))
		}
	}
}

func renderChange(rc *plans.ResourceChange, colorize *colorstring.Colorize) string {
	return format.ResourceChange(rc, colorize)
}

func sortedOutputNames(vals map[string]cty.Value) []string {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *PlanCommand) Help() string {
	helpText := `
Usage: infractl plan [options]

  Generate an execution plan, showing what actions would be taken to make
  the remote objects match the configuration. This command does not change
  anything.

Options:

  -destroy            Select the "destroy" planning mode, which plans the
                      deletion of all objects currently tracked in state.

  -detailed-exitcode  Return detailed exit codes: 0 = no changes, 1 = error,
                      2 = changes present.

  -lock=true          Hold the state file lock while planning.

  -no-color           If specified, output won't contain any color.

  -state=path         Path to the state file. Defaults to "infractl.state".

  -var 'foo=bar'      Set a value for one of the input variables. This flag
                      can be set multiple times.

  -var-file=filename  Load variable values from the given file, in addition
                      to any *.auto.pdvars.hcl files in the stack directory.
`
	return strings.TrimSpace(helpText)
}

func (c *PlanCommand) Synopsis() string {
	return "Show changes required by the current configuration"
}
