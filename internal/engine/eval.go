// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/configs"
	"github.com/public-datasets/infractl/internal/providers"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// Defaults applied when a declaration omits the corresponding attribute.
const (
	DefaultLocation     = "US"
	DefaultStorageClass = "STANDARD"
)

// evalFuncs is the set of functions available in stack expressions. This is
// deliberately a small set: stack configurations are mostly static
// declarations with a little string assembly.
var evalFuncs = map[string]function.Function{
	"format":  stdlib.FormatFunc,
	"join":    stdlib.JoinFunc,
	"lower":   stdlib.LowerFunc,
	"replace": stdlib.ReplaceFunc,
	"upper":   stdlib.UpperFunc,
}

// varsEvalContext returns the evaluation context for expressions that may
// refer only to input variables, such as resource arguments.
func varsEvalContext(vars InputValues) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(vars),
		},
		Functions: evalFuncs,
	}
}

// outputsEvalContext returns the evaluation context for output value
// expressions, which may refer to input variables and to the attributes of
// the stack's resources.
func outputsEvalContext(vars InputValues, state resourceObjects) *hcl.EvalContext {
	datasets := map[string]cty.Value{}
	buckets := map[string]cty.Value{}
	for addr, obj := range state {
		switch o := obj.(type) {
		case *providers.DatasetAttrs:
			datasets[addr.Name] = datasetObjectVal(o)
		case *providers.BucketAttrs:
			buckets[addr.Name] = bucketObjectVal(o)
		}
	}

	ctx := varsEvalContext(vars)
	ctx.Variables["dataset"] = cty.ObjectVal(datasets)
	ctx.Variables["bucket"] = cty.ObjectVal(buckets)
	return ctx
}

// resourceObjects is a snapshot of remote objects by address, used for
// output evaluation.
type resourceObjects map[addrs.Resource]providers.Object

func datasetObjectVal(d *providers.DatasetAttrs) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"id":            cty.StringVal(d.ID()),
		"dataset_id":    cty.StringVal(d.DatasetID),
		"project":       cty.StringVal(d.Project),
		"friendly_name": cty.StringVal(d.FriendlyName),
		"description":   cty.StringVal(d.Description),
		"location":      cty.StringVal(d.Location),
		"labels":        labelsVal(d.Labels),
	})
}

func bucketObjectVal(b *providers.BucketAttrs) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name":                        cty.StringVal(b.Name),
		"url":                         cty.StringVal(b.URL()),
		"location":                    cty.StringVal(b.Location),
		"storage_class":               cty.StringVal(b.StorageClass),
		"labels":                      labelsVal(b.Labels),
		"force_destroy":               cty.BoolVal(b.ForceDestroy),
		"uniform_bucket_level_access": cty.BoolVal(b.UniformBucketLevelAccess),
	})
}

func labelsVal(labels map[string]string) cty.Value {
	if len(labels) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(labels))
	for k, v := range labels {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}

// evalDataset produces the desired remote object for a dataset declaration
// under the given variable values.
func evalDataset(d *configs.Dataset, ctx *hcl.EvalContext) (*providers.DatasetAttrs, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	attrs := &providers.DatasetAttrs{
		Location:                DefaultLocation,
		DeleteContentsOnDestroy: d.DeleteContentsOnDestroy,
	}

	diags = diags.Append(evalString(d.DatasetID, ctx, &attrs.DatasetID))
	diags = diags.Append(evalString(d.Project, ctx, &attrs.Project))
	diags = diags.Append(evalString(d.FriendlyName, ctx, &attrs.FriendlyName))
	diags = diags.Append(evalString(d.Description, ctx, &attrs.Description))
	diags = diags.Append(evalString(d.Location, ctx, &attrs.Location))
	diags = diags.Append(evalLabels(d.Labels, ctx, &attrs.Labels))

	return attrs, diags
}

// evalBucket produces the desired remote object for a bucket declaration
// under the given variable values.
func evalBucket(b *configs.Bucket, ctx *hcl.EvalContext) (*providers.BucketAttrs, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	attrs := &providers.BucketAttrs{
		Location:                 DefaultLocation,
		StorageClass:             DefaultStorageClass,
		ForceDestroy:             b.ForceDestroy,
		UniformBucketLevelAccess: b.UniformBucketLevelAccess,
	}

	diags = diags.Append(evalString(b.BucketName, ctx, &attrs.Name))
	diags = diags.Append(evalString(b.Project, ctx, &attrs.Project))
	diags = diags.Append(evalString(b.Location, ctx, &attrs.Location))
	diags = diags.Append(evalString(b.StorageClass, ctx, &attrs.StorageClass))
	diags = diags.Append(evalLabels(b.Labels, ctx, &attrs.Labels))

	return attrs, diags
}

// evalString evaluates the given expression as a string into target. A nil
// expression leaves target unchanged, so callers can pre-set defaults.
func evalString(expr hcl.Expression, ctx *hcl.EvalContext, target *string) tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics
	if expr == nil {
		return diags
	}

	val, hclDiags := expr.Value(ctx)
	diags = diags.Append(hclDiags)
	if hclDiags.HasErrors() {
		return diags
	}

	val, err := convert.Convert(val, cty.String)
	if err != nil || val.IsNull() {
		diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute value",
			Detail:   "This attribute requires a non-null string value.",
			Subject:  expr.Range().Ptr(),
		})
		return diags
	}

	*target = val.AsString()
	return diags
}

// evalLabels evaluates the given expression as a string map into target.
func evalLabels(expr hcl.Expression, ctx *hcl.EvalContext, target *map[string]string) tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics
	if expr == nil {
		return diags
	}

	val, hclDiags := expr.Value(ctx)
	diags = diags.Append(hclDiags)
	if hclDiags.HasErrors() {
		return diags
	}

	val, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid labels value",
			Detail:   "Labels must be a map of string values.",
			Subject:  expr.Range().Ptr(),
		})
		return diags
	}
	if val.IsNull() {
		return diags
	}

	labels := map[string]string{}
	for k, v := range val.AsValueMap() {
		labels[k] = v.AsString()
	}
	*target = labels
	return diags
}

// evalOutputs resolves all of the stack's output values against the given
// snapshot of remote objects.
func evalOutputs(stack *configs.Stack, vars InputValues, objs resourceObjects) (map[string]cty.Value, map[string]bool, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	ctx := outputsEvalContext(vars, objs)

	vals := make(map[string]cty.Value, len(stack.Outputs))
	sensitive := make(map[string]bool, len(stack.Outputs))
	for name, o := range stack.Outputs {
		if o.Expr == nil {
			continue
		}
		val, hclDiags := o.Expr.Value(ctx)
		diags = diags.Append(hclDiags)
		if hclDiags.HasErrors() {
			continue
		}
		vals[name] = val
		sensitive[name] = o.Sensitive
	}

	return vals, sensitive, diags
}
