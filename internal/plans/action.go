// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package plans

type Action rune

const (
	NoOp             Action = 0
	Create           Action = '+'
	Update           Action = '~'
	DeleteThenCreate Action = '∓'
	Delete           Action = '-'
)

//go:generate go run golang.org/x/tools/cmd/stringer -type Action

// IsReplace returns true if the action represents replacing an existing
// object with a new object.
func (a Action) IsReplace() bool {
	return a == DeleteThenCreate
}
