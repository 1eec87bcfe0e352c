// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arguments

import (
	"flag"
	"fmt"
	"io"
)

// defaultFlagSet creates a FlagSet that discards its own output, so the
// calling command is responsible for rendering any parse errors as
// diagnostics.
func defaultFlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	return f
}

// FlagNameValue is one item gathered by a flagNameValueSlice, recording
// which of the aliased flags produced the value.
type FlagNameValue struct {
	Name  string
	Value string
}

func (f FlagNameValue) String() string {
	return fmt.Sprintf("%s=%q", f.Name, f.Value)
}

// flagNameValueSlice gathers values from multiple aliased flags into one
// shared slice, preserving the order they appeared on the command line.
type flagNameValueSlice struct {
	FlagName string
	Items    *[]FlagNameValue
}

var _ flag.Value = flagNameValueSlice{}

func newFlagNameValueSlice(flagName string) flagNameValueSlice {
	var items []FlagNameValue
	return flagNameValueSlice{
		FlagName: flagName,
		Items:    &items,
	}
}

// Alias returns a new flagNameValueSlice that appends into the same
// underlying slice under a different flag name.
func (f flagNameValueSlice) Alias(flagName string) flagNameValueSlice {
	return flagNameValueSlice{
		FlagName: flagName,
		Items:    f.Items,
	}
}

func (f flagNameValueSlice) Empty() bool {
	if f.Items == nil {
		return true
	}
	return len(*f.Items) == 0
}

func (f flagNameValueSlice) AllItems() []FlagNameValue {
	if f.Items == nil {
		return nil
	}
	return *f.Items
}

func (f flagNameValueSlice) String() string {
	return ""
}

func (f flagNameValueSlice) Set(str string) error {
	*f.Items = append(*f.Items, FlagNameValue{
		Name:  f.FlagName,
		Value: str,
	})
	return nil
}
