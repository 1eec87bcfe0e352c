// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfdiags

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
)

func TestDiagnosticsAppend(t *testing.T) {
	var diags Diagnostics

	diags = diags.Append(errors.New("bad thing happened"))
	diags = diags.Append(&hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  "Something looks off",
		Detail:   "But we can keep going.",
	})
	diags = diags.Append(Sourceless(
		Error,
		"Invalid state file",
		"The state file could not be parsed.",
	))

	if got, want := len(diags), 3; got != want {
		t.Fatalf("got %d diagnostics; want %d", got, want)
	}

	if got, want := diags[0].Severity(), Error; got != want {
		t.Errorf("diags[0] severity %s; want %s", got, want)
	}
	if got, want := diags[0].Description().Summary, "bad thing happened"; got != want {
		t.Errorf("diags[0] summary %q; want %q", got, want)
	}
	if got, want := diags[1].Severity(), Warning; got != want {
		t.Errorf("diags[1] severity %s; want %s", got, want)
	}
	if got, want := diags[2].Description().Detail, "The state file could not be parsed."; got != want {
		t.Errorf("diags[2] detail %q; want %q", got, want)
	}
}

func TestDiagnosticsAppendNested(t *testing.T) {
	var diags Diagnostics

	// Appending another Diagnostics flattens it rather than nesting.
	var more Diagnostics
	more = more.Append(errors.New("one"))
	more = more.Append(errors.New("two"))
	diags = diags.Append(more)

	if got, want := len(diags), 2; got != want {
		t.Fatalf("got %d diagnostics; want %d", got, want)
	}
}

func TestDiagnosticsHasErrors(t *testing.T) {
	var diags Diagnostics
	if diags.HasErrors() {
		t.Error("empty diagnostics has errors")
	}

	diags = diags.Append(Sourceless(Warning, "Heads up", ""))
	if diags.HasErrors() {
		t.Error("warning-only diagnostics has errors")
	}
	if err := diags.Err(); err != nil {
		t.Errorf("warning-only diagnostics produced error: %s", err)
	}

	diags = diags.Append(errors.New("boom"))
	if !diags.HasErrors() {
		t.Error("diagnostics with an error reports none")
	}
	if err := diags.Err(); err == nil {
		t.Error("Err returned nil despite errors")
	} else if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error does not mention the underlying problem: %s", err)
	}
}

func TestDiagnosticsErrMultiple(t *testing.T) {
	var diags Diagnostics
	for i := 0; i < 3; i++ {
		diags = diags.Append(fmt.Errorf("problem %d", i))
	}

	err := diags.Err()
	if err == nil {
		t.Fatal("Err returned nil")
	}
	msg := err.Error()
	for i := 0; i < 3; i++ {
		if want := fmt.Sprintf("problem %d", i); !strings.Contains(msg, want) {
			t.Errorf("combined error is missing %q:\n%s", want, msg)
		}
	}
}
