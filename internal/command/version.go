// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
)

// VersionCommand is a Command implementation that prints the version.
type VersionCommand struct {
	Meta

	Version  string
	Platform string
}

func (c *VersionCommand) Run(args []string) int {
	var jsonOutput bool
	cmdFlags := flag.NewFlagSet("version", flag.ContinueOnError)
	cmdFlags.SetOutput(io.Discard)
	cmdFlags.BoolVar(&jsonOutput, "json", false, "json")
	cmdFlags.Usage = func() { c.Ui.Error(c.Help()) }
	if err := cmdFlags.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing command-line flags: %s\n", err))
		return 1
	}

	if jsonOutput {
		output := map[string]interface{}{
			"version":  c.Version,
			"platform": c.Platform,
		}
		jsonOutput, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			c.Ui.Error(fmt.Sprintf("\nError marshalling JSON: %s", err))
			return 1
		}
		c.Ui.Output(string(jsonOutput))
		return 0
	}

	c.Ui.Output(fmt.Sprintf("infractl v%s\non %s", c.Version, c.Platform))
	return 0
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: infractl version [options]

  Displays the version of infractl.

Options:

  -json       Output the version information as a JSON object.
`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current infractl version"
}
