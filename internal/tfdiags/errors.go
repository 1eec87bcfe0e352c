// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfdiags

import (
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// FormatError obtains a suitable summary string for the given error, dealing
// with any "multi error" type by rendering each sub-error on its own line
// so that the result is readable when displayed to an end-user.
func FormatError(err error) string {
	perr, ok := err.(*multierror.Error)
	if !ok || len(perr.Errors) < 2 {
		return err.Error()
	}

	lines := make([]string, len(perr.Errors)+1)
	lines[0] = fmt.Sprintf("%d problems:", len(perr.Errors))
	for i, subErr := range perr.Errors {
		lines[i+1] = fmt.Sprintf("- %s", subErr.Error())
	}

	return strings.Join(lines, "\n")
}
