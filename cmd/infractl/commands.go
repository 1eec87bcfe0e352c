// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"runtime"

	"github.com/mitchellh/cli"

	"github.com/public-datasets/infractl/internal/command"
	"github.com/public-datasets/infractl/version"
)

// initCommands builds the command factories for the CLI dispatcher.
func initCommands() map[string]cli.CommandFactory {
	meta := command.Meta{
		Ui:         Ui,
		ShutdownCh: makeShutdownCh(),
	}

	return map[string]cli.CommandFactory{
		"validate": func() (cli.Command, error) {
			return &command.ValidateCommand{
				Meta: meta,
			}, nil
		},

		"plan": func() (cli.Command, error) {
			return &command.PlanCommand{
				Meta: meta,
			}, nil
		},

		"apply": func() (cli.Command, error) {
			return &command.ApplyCommand{
				Meta: meta,
			}, nil
		},

		"destroy": func() (cli.Command, error) {
			return &command.ApplyCommand{
				Meta:    meta,
				Destroy: true,
			}, nil
		},

		"output": func() (cli.Command, error) {
			return &command.OutputCommand{
				Meta: meta,
			}, nil
		},

		"version": func() (cli.Command, error) {
			return &command.VersionCommand{
				Meta:     meta,
				Version:  version.String(),
				Platform: fmt.Sprintf("%s_%s", runtime.GOOS, runtime.GOARCH),
			}, nil
		},
	}
}
