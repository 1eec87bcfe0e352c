// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/public-datasets/infractl/internal/command/arguments"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// ValidateCommand is a Command implementation that validates the syntax and
// internal consistency of a stack configuration.
type ValidateCommand struct {
	Meta
}

func (c *ValidateCommand) Run(rawArgs []string) int {
	args, diags := arguments.ParseValidate(rawArgs)
	c.Meta.process(args.View.NoColor)
	if diags.HasErrors() {
		c.showDiagnostics(diags)
		c.Ui.Output(c.Help())
		return 1
	}

	dir := args.Path
	if dir == "." {
		dir = c.workingDir()
	}
	if _, err := filepath.Abs(dir); err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid configuration directory",
			fmt.Sprintf("Cannot resolve %q: %s.", dir, err),
		))
		c.showDiagnostics(diags)
		return 1
	}

	_, moreDiags := c.loadStack(dir)
	diags = diags.Append(moreDiags)

	c.showDiagnostics(diags)
	if diags.HasErrors() {
		return 1
	}

	if len(diags) == 0 {
		c.Ui.Output(c.Colorize().Color("[green][bold]Success![reset] The configuration is valid.\n"))
	} else {
		c.Ui.Output(c.Colorize().Color("[green][bold]Success![reset] The configuration is valid, but there were some validation warnings as shown above.\n"))
	}

	return 0
}

func (c *ValidateCommand) Help() string {
	helpText := `
Usage: infractl validate [options] [dir]

  Validate the stack configuration files in a directory, checking only the
  configuration itself. No remote API calls are made and no state is read.

Options:

  -no-color  If specified, output won't contain any color.
`
	return strings.TrimSpace(helpText)
}

func (c *ValidateCommand) Synopsis() string {
	return "Check whether the configuration is valid"
}
