// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfdiags

// SourceRange identifies a region of a configuration file that a diagnostic
// relates to. Ranges in this package always originate from HCL ranges, via
// SourceRangeFromHCL, but keeping a local type here avoids forcing an HCL
// dependency onto everything that only carries diagnostics around.
type SourceRange struct {
	Filename   string
	Start, End SourcePos
}

// SourcePos is a single position within a source file. Line and Column are
// both 1-based; Byte is the 0-based offset into the file.
type SourcePos struct {
	Line, Column, Byte int
}
