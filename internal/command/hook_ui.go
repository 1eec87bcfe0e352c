// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/engine"
	"github.com/public-datasets/infractl/internal/plans"
)

// uiHook reports apply progress to the UI as each change starts and
// completes.
type uiHook struct {
	engine.NilHook

	ui       cli.Ui
	colorize *colorstring.Colorize
}

var _ engine.Hook = (*uiHook)(nil)

func (h *uiHook) PreApply(addr addrs.Resource, action plans.Action) {
	var verb string
	switch action {
	case plans.Create:
		verb = "Creating..."
	case plans.Update:
		verb = "Modifying..."
	case plans.Delete:
		verb = "Destroying..."
	case plans.DeleteThenCreate:
		verb = "Replacing..."
	default:
		return
	}
	h.ui.Output(h.colorize.Color(fmt.Sprintf("[bold]%s: %s[reset]", addr, verb)))
}

func (h *uiHook) PostApply(addr addrs.Resource, action plans.Action, err error) {
	if err != nil {
		// The error itself is rendered as a diagnostic by the command.
		return
	}

	var msg string
	switch action {
	case plans.Create:
		msg = "Creation complete"
	case plans.Update:
		msg = "Modifications complete"
	case plans.Delete:
		msg = "Destruction complete"
	case plans.DeleteThenCreate:
		msg = "Replacement complete"
	default:
		return
	}
	h.ui.Output(h.colorize.Color(fmt.Sprintf("[bold]%s: %s[reset]", addr, msg)))
}
