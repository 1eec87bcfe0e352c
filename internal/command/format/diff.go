// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/colorstring"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/providers"
)

// ResourceChange returns a human-readable description of one planned
// resource change, in a multi-line diff-like notation.
func ResourceChange(rc *plans.ResourceChange, color *colorstring.Colorize) string {
	if color == nil {
		color = disabledColorize
	}

	var buf bytes.Buffer

	switch rc.Action {
	case plans.Create:
		fmt.Fprintf(&buf, color.Color("[bold]  # %s[reset] will be created\n"), rc.Addr)
	case plans.Update:
		fmt.Fprintf(&buf, color.Color("[bold]  # %s[reset] will be updated in-place\n"), rc.Addr)
	case plans.DeleteThenCreate:
		fmt.Fprintf(&buf, color.Color("[bold]  # %s[reset] must be [bold][red]replaced[reset]\n"), rc.Addr)
	case plans.Delete:
		fmt.Fprintf(&buf, color.Color("[bold]  # %s[reset] will be [bold][red]destroyed[reset]\n"), rc.Addr)
	default:
		fmt.Fprintf(&buf, color.Color("[bold]  # %s[reset] has no planned changes\n"), rc.Addr)
	}
	if rc.ActionReason != "" {
		fmt.Fprintf(&buf, color.Color("  # [reset](%s)\n"), rc.ActionReason)
	}

	obj := rc.After
	if rc.Action == plans.Delete {
		obj = rc.Before
	}

	// Label the block by the kind of the object being rendered, which for
	// a destroy is the prior object rather than the (absent) planned one.
	kind := providers.KindOf(obj)
	if kind == "" {
		kind = rc.Addr.Kind
	}

	fmt.Fprintf(&buf, color.Color("%s %s [bold]%q[reset] {\n"), DiffActionSymbol(rc.Action, color), kind, rc.Addr.Name)
	writeAttrLines(&buf, obj, rc, color)
	fmt.Fprintf(&buf, "    }\n")

	return buf.String()
}

// DiffActionSymbol returns the colored two-cell symbol that prefixes the
// body of a change with the given action.
func DiffActionSymbol(action plans.Action, color *colorstring.Colorize) string {
	if color == nil {
		color = disabledColorize
	}
	switch action {
	case plans.Create:
		return color.Color("  [green]+[reset]")
	case plans.Update:
		return color.Color("  [yellow]~[reset]")
	case plans.Delete:
		return color.Color("  [red]-[reset]")
	case plans.DeleteThenCreate:
		return color.Color("[red]-[reset]/[green]+[reset]")
	default:
		return "   "
	}
}

type attrLine struct {
	name  string
	value string
}

func writeAttrLines(buf *bytes.Buffer, obj providers.Object, rc *plans.ResourceChange, color *colorstring.Colorize) {
	lines := attrLines(obj)

	nameLen := 0
	for _, l := range lines {
		if len(l.name) > nameLen {
			nameLen = len(l.name)
		}
	}

	for _, l := range lines {
		symbol := "     "
		if changed := attrChanged(rc, l.name); changed {
			symbol = color.Color("    [yellow]~[reset]")
		}
		fmt.Fprintf(buf, "%s %s%s = %s\n", symbol, l.name, strings.Repeat(" ", nameLen-len(l.name)), l.value)
	}
}

// attrChanged reports whether the named attribute differs between the
// change's Before and After objects, so updates can mark just the changed
// lines.
func attrChanged(rc *plans.ResourceChange, name string) bool {
	if rc.Action != plans.Update || rc.Before == nil || rc.After == nil {
		return false
	}
	before := attrLines(rc.Before)
	after := attrLines(rc.After)
	for _, b := range before {
		if b.name != name {
			continue
		}
		for _, a := range after {
			if a.name == name {
				return a.value != b.value
			}
		}
	}
	return false
}

func attrLines(obj providers.Object) []attrLine {
	switch o := obj.(type) {
	case *providers.DatasetAttrs:
		lines := []attrLine{
			{"dataset_id", fmt.Sprintf("%q", o.DatasetID)},
			{"project", fmt.Sprintf("%q", o.Project)},
			{"location", fmt.Sprintf("%q", o.Location)},
		}
		if o.FriendlyName != "" {
			lines = append(lines, attrLine{"friendly_name", fmt.Sprintf("%q", o.FriendlyName)})
		}
		if o.Description != "" {
			lines = append(lines, attrLine{"description", fmt.Sprintf("%q", o.Description)})
		}
		if len(o.Labels) > 0 {
			lines = append(lines, attrLine{"labels", labelsString(o.Labels)})
		}
		return lines
	case *providers.BucketAttrs:
		lines := []attrLine{
			{"name", fmt.Sprintf("%q", o.Name)},
			{"project", fmt.Sprintf("%q", o.Project)},
			{"location", fmt.Sprintf("%q", o.Location)},
			{"storage_class", fmt.Sprintf("%q", o.StorageClass)},
			{"uniform_bucket_level_access", fmt.Sprintf("%t", o.UniformBucketLevelAccess)},
			{"force_destroy", fmt.Sprintf("%t", o.ForceDestroy)},
		}
		if len(o.Labels) > 0 {
			lines = append(lines, attrLine{"labels", labelsString(o.Labels)})
		}
		return lines
	default:
		return nil
	}
}

func labelsString(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s = %q", k, labels[k])
	}
	b.WriteString("}")
	return b.String()
}

// Value renders a cty value in a compact single-line notation suitable for
// output value display.
func Value(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case ty == cty.Number:
		bf := v.AsBigFloat()
		return bf.Text('f', -1)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty.IsMapType() || ty.IsObjectType():
		var b strings.Builder
		b.WriteString("{")
		first := true
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s = %s", k.AsString(), Value(ev))
		}
		b.WriteString("}")
		return b.String()
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var b strings.Builder
		b.WriteString("[")
		first := true
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(Value(ev))
		}
		b.WriteString("]")
		return b.String()
	default:
		return v.GoString()
	}
}
