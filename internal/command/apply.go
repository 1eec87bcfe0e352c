// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/public-datasets/infractl/internal/command/arguments"
	"github.com/public-datasets/infractl/internal/command/format"
	"github.com/public-datasets/infractl/internal/engine"
	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/states"
	"github.com/public-datasets/infractl/internal/states/statemgr"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// ApplyCommand is a Command implementation that plans and then executes the
// changes needed to converge the remote objects on the configuration.
type ApplyCommand struct {
	Meta

	// Destroy, if set, runs the destroy workflow: the destroy command is an
	// alias for "apply -destroy".
	Destroy bool
}

func (c *ApplyCommand) Run(rawArgs []string) int {
	var args *arguments.Apply
	var diags tfdiags.Diagnostics
	if c.Destroy {
		args, diags = arguments.ParseApplyDestroy(rawArgs)
	} else {
		args, diags = arguments.ParseApply(rawArgs)
	}
	c.Meta.process(args.View.NoColor)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		c.Ui.Output(c.Help())
		return 1
	}

	dir := c.workingDir()
	stack, moreDiags := c.loadStack(dir)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		return 1
	}

	rawVals, moreDiags := c.collectVariableValues(dir, args.Vars)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		return 1
	}

	vars, moreDiags := engine.ResolveVariables(stack, rawVals)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		return 1
	}

	mgr := c.stateManager(c.statePath(args.State.StatePath), args.State.Lock)

	lockInfo := statemgr.NewLockInfo()
	lockInfo.Operation = "apply"
	if c.Destroy {
		lockInfo.Operation = "destroy"
	}
	lockID, err := mgr.Lock(lockInfo)
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Error acquiring the state lock",
			err.Error(),
		))
		c.showDiagnostics(diags)
		return 1
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
		c.showDiagnostics(diags)
		return 1
	}
	state := mgr.State()
	if state == nil {
		state = states.NewState()
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	hooks := []engine.Hook{&uiHook{ui: c.Ui, colorize: c.Colorize()}}
	eng, closeClients, err := c.engine(ctx, hooks)
	if err != nil {
		diags = diags.Append(err)
		c.showDiagnostics(diags)
		return 1
	}
	defer func() {
		if err := closeClients(); err != nil {
			c.Ui.Error(fmt.Sprintf("Error closing API clients: %s", err))
		}
	}()

	plan, moreDiags := eng.Plan(ctx, stack, vars, state, args.Operation.PlanMode)
	diags = diags.Append(moreDiags)
	if diags.HasErrors() || plan.Errored {
		c.showDiagnostics(diags)
		return 1
	}
	c.showDiagnostics(diags)
	diags = nil

	renderPlan(plan, c.Ui, c.Colorize())

	if !plan.Empty() && !args.AutoApprove {
		if !args.InputEnabled {
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Error,
				"Cannot confirm apply",
				"Interactive input is disabled, so the planned actions cannot be confirmed. Re-run with -auto-approve to apply without confirmation.",
			))
			c.showDiagnostics(diags)
			return 1
		}

		query := "Do you want to perform these actions?"
		if c.Destroy {
			query = "Do you really want to destroy all resources?"
		}
		c.Ui.Output("")
		v, err := c.Ui.Ask(c.Colorize().Color(fmt.Sprintf(
			"[bold]%s[reset]\n  Only 'yes' will be accepted to approve.\n\n  Enter a value:", query,
		)))
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Error asking for approval: %s", err))
			return 1
		}
		if strings.TrimSpace(v) != "yes" {
			c.Ui.Output("Apply cancelled.")
			return 1
		}
		c.Ui.Output("")
	}

	applyDiags := eng.Apply(ctx, stack, vars, plan, state)
	diags = diags.Append(applyDiags)

	// The state has already accumulated whatever progress was made, so it
	// must be persisted even when the apply failed partway.
	if err := mgr.WriteState(state); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to write state",
			err.Error(),
		))
	} else if err := mgr.PersistState(); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to persist state",
			err.Error(),
		))
	}

	c.showDiagnostics(diags)
	if diags.HasErrors() {
		return 1
	}

	counts := plan.ActionCounts()
	if c.Destroy {
		c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
			"\n[reset][bold][green]Destroy complete! Resources: %d destroyed.[reset]",
			counts[plans.Delete],
		)))
		return 0
	}

	c.Ui.Output(c.Colorize().Color(fmt.Sprintf(
		"\n[reset][bold][green]Apply complete! Resources: %d added, %d changed, %d destroyed.[reset]",
		counts[plans.Create]+counts[plans.DeleteThenCreate],
		counts[plans.Update],
		counts[plans.Delete]+counts[plans.DeleteThenCreate],
	)))

	if len(state.Outputs) > 0 {
		c.Ui.Output(c.Colorize().Color("\n[reset][bold]Outputs:[reset]"))
		for _, name := range sortedStateOutputNames(state) {
			ov := state.Outputs[name]
			if ov.Sensitive {
				c.Ui.Output(fmt.Sprintf("%s = <sensitive>", name))
				continue
			}
			c.Ui.Output(fmt.Sprintf("%s = %s", name, format.Value(ov.Value)))
		}
	}

	return 0
}

func sortedStateOutputNames(state *states.State) []string {
	names := make([]string, 0, len(state.Outputs))
	for name := range state.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *ApplyCommand) Help() string {
	if c.Destroy {
		return c.helpDestroy()
	}

	helpText := `
Usage: infractl apply [options]

  Create or update the remote objects according to the stack configuration
  in the working directory, and record the results in the state file.

Options:

  -auto-approve       Skip interactive approval of the plan before applying.

  -input=true         Ask for input for the apply approval. Disabling input
                      without -auto-approve causes the apply to fail when
                      there are changes.

  -lock=true          Hold the state file lock for the duration of the
                      operation.

  -no-color           If specified, output won't contain any color.

  -state=path         Path to the state file. Defaults to "infractl.state".

  -var 'foo=bar'      Set a value for one of the input variables. This flag
                      can be set multiple times.

  -var-file=filename  Load variable values from the given file, in addition
                      to any *.auto.pdvars.hcl files in the stack directory.
`
	return strings.TrimSpace(helpText)
}

func (c *ApplyCommand) helpDestroy() string {
	helpText := `
Usage: infractl destroy [options]

  Delete all remote objects tracked in the state file, honoring the
  force_destroy and delete_contents_on_destroy settings recorded there.

  This command is an alias for "apply -destroy".

Options:

  -auto-approve       Skip interactive approval before destroying.

  -lock=true          Hold the state file lock for the duration of the
                      operation.

  -no-color           If specified, output won't contain any color.

  -state=path         Path to the state file. Defaults to "infractl.state".

  -var 'foo=bar'      Set a value for one of the input variables. This flag
                      can be set multiple times.

  -var-file=filename  Load variable values from the given file, in addition
                      to any *.auto.pdvars.hcl files in the stack directory.
`
	return strings.TrimSpace(helpText)
}

func (c *ApplyCommand) Synopsis() string {
	if c.Destroy {
		return "Destroy all remote objects tracked in the state"
	}
	return "Create or update infrastructure according to the configuration"
}
