// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/plans"
)

// Hook is called during an apply to report progress. Implementations must
// be safe to call from the single goroutine running the apply; they should
// not block for long periods.
type Hook interface {
	// PreApply is called before a change is applied to the given resource.
	PreApply(addr addrs.Resource, action plans.Action)

	// PostApply is called after a change has been applied, with any error
	// that occurred. err is nil on success.
	PostApply(addr addrs.Resource, action plans.Action, err error)
}

// NilHook is a Hook implementation that does nothing, for embedding in
// hooks that only care about a subset of the callbacks.
type NilHook struct{}

var _ Hook = (*NilHook)(nil)

func (*NilHook) PreApply(addr addrs.Resource, action plans.Action)             {}
func (*NilHook) PostApply(addr addrs.Resource, action plans.Action, err error) {}
