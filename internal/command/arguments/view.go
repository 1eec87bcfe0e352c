// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import "flag"

// View represents the global command-line arguments which configure the
// view layer.
type View struct {
	// NoColor disables terminal color codes in all output.
	NoColor bool
}

// AddFlags registers the view-related flags on the given FlagSet.
func (v *View) AddFlags(f *flag.FlagSet) {
	f.BoolVar(&v.NoColor, "no-color", false, "no-color")
}
