// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package statemgr

import (
	"fmt"

	"github.com/hashicorp/go-uuid"
)

// NewLineage returns a fresh lineage identifier, chosen when a state is
// recorded for the first time and preserved across every later snapshot.
// Two snapshots with the same lineage descend from the same original state,
// so their serial numbers are comparable.
func NewLineage() string {
	lineage, err := uuid.GenerateUUID()
	if err != nil {
		// GenerateUUID fails only if the platform entropy source does.
		panic(fmt.Errorf("failed to generate state lineage: %w", err))
	}
	return lineage
}
