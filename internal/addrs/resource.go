// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package addrs contains types that represent "addresses", which are
// references to specific objects within an infractl configuration or state.
//
// All addresses have string representations based on HCL traversal syntax,
// which should be used in user-facing output. The types in this package are
// small value types that are cheap to copy and are comparable, so they may
// be used directly as map keys.
package addrs

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/public-datasets/infractl/internal/tfdiags"
)

// Kind distinguishes the resource kinds that infractl can manage.
type Kind string

const (
	// Dataset resources are data warehouse datasets.
	Dataset Kind = "dataset"

	// Bucket resources are object storage buckets.
	Bucket Kind = "bucket"
)

// Resource is the address of a single declared resource, unique within a
// stack configuration.
type Resource struct {
	Kind Kind
	Name string
}

func (r Resource) String() string {
	return fmt.Sprintf("%s.%s", r.Kind, r.Name)
}

// Less returns true if the receiver should sort before the other given
// address, using a lexical ordering that keeps resources of the same kind
// together.
func (r Resource) Less(other Resource) bool {
	if r.Kind != other.Kind {
		return r.Kind < other.Kind
	}
	return r.Name < other.Name
}

// ParseResourceStr parses a resource address from a string of the form
// "dataset.name" or "bucket.name", validating both the kind and the name.
// This is used when addresses arrive as strings from outside the process,
// such as from a state snapshot.
func ParseResourceStr(str string) (Resource, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	parts := strings.Split(str, ".")
	if len(parts) != 2 {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid resource address",
			fmt.Sprintf("The string %q is not a valid resource address: expected a kind and a name separated by a dot, like \"bucket.example\".", str),
		))
		return Resource{}, diags
	}

	kind := Kind(parts[0])
	switch kind {
	case Dataset, Bucket:
		// OK
	default:
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid resource address",
			fmt.Sprintf("The kind %q is not known to infractl. Only %q and %q resources can be declared.", parts[0], Dataset, Bucket),
		))
		return Resource{}, diags
	}

	if !hclsyntax.ValidIdentifier(parts[1]) {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid resource address",
			fmt.Sprintf("The name %q is not a valid resource name: it must start with a letter and may contain only letters, digits, underscores, and dashes.", parts[1]),
		))
		return Resource{}, diags
	}

	return Resource{Kind: kind, Name: parts[1]}, diags
}
