// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/public-datasets/infractl/internal/configs"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// InputValues are the fully-resolved values for a stack's input variables,
// after defaults have been applied and type constraints checked.
type InputValues map[string]cty.Value

// ResolveVariables produces the final values for all of the variables
// declared in the given stack, combining the declared defaults with the
// given raw values (from the command line, values files, and environment).
//
// Values given for undeclared variables produce warnings, matching the
// behavior for extraneous definitions in values files. Declared variables
// with no value and no default produce errors.
func ResolveVariables(stack *configs.Stack, given map[string]cty.Value) (InputValues, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	ret := make(InputValues, len(stack.Variables))

	for name := range given {
		if _, declared := stack.Variables[name]; !declared {
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Warning,
				"Value for undeclared variable",
				fmt.Sprintf("A value was given for variable %q, but the stack does not declare a variable of that name. To use this value, declare it with a \"variable\" block.", name),
			))
		}
	}

	for name, decl := range stack.Variables {
		val, exists := given[name]
		if !exists {
			if decl.Default == cty.NilVal {
				diags = diags.Append(&hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "No value for required variable",
					Detail:   fmt.Sprintf("The variable %q has no default value, so a value must be given with a -var or -var-file option, or via the %s%s environment variable.", name, VarEnvPrefix, name),
					Subject:  decl.DeclRange.Ptr(),
				})
				continue
			}
			ret[name] = decl.Default
			continue
		}

		converted, err := convert.Convert(val, decl.Type)
		if err != nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid value for variable",
				Detail:   fmt.Sprintf("The value given for variable %q is not compatible with the variable's type constraint: %s.", name, err),
				Subject:  decl.DeclRange.Ptr(),
			})
			continue
		}
		ret[name] = converted
	}

	return ret, diags
}

// VarEnvPrefix is the prefix of environment variables that set stack
// variables, e.g. INFRACTL_VAR_project_id.
const VarEnvPrefix = "INFRACTL_VAR_"
