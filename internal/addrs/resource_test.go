// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package addrs

import (
	"fmt"
	"testing"
)

func TestParseResourceStr(t *testing.T) {
	tests := []struct {
		Input   string
		Want    Resource
		WantErr bool
	}{
		{"dataset.america_health_rankings", Resource{Dataset, "america_health_rankings"}, false},
		{"bucket.raw-data", Resource{Bucket, "raw-data"}, false},
		{"bucket", Resource{}, true},
		{"bucket.a.b", Resource{}, true},
		{"module.foo", Resource{}, true},
		{"dataset.", Resource{}, true},
		{"dataset.0day", Resource{}, true},
	}

	for _, test := range tests {
		t.Run(test.Input, func(t *testing.T) {
			got, diags := ParseResourceStr(test.Input)
			if test.WantErr {
				if !diags.HasErrors() {
					t.Fatalf("succeeded with %s; want error", got)
				}
				return
			}
			if diags.HasErrors() {
				t.Fatalf("unexpected error: %s", diags.Err())
			}
			if got != test.Want {
				t.Errorf("got %s; want %s", got, test.Want)
			}
		})
	}
}

func TestResourceString(t *testing.T) {
	addr := Resource{Kind: Bucket, Name: "raw"}
	if got, want := addr.String(), "bucket.raw"; got != want {
		t.Errorf("got %q; want %q", got, want)
	}
	if got, want := fmt.Sprintf("%s", addr), "bucket.raw"; got != want {
		t.Errorf("got %q via Sprintf; want %q", got, want)
	}
}

func TestResourceLess(t *testing.T) {
	tests := []struct {
		A, B Resource
		Want bool
	}{
		{Resource{Bucket, "a"}, Resource{Dataset, "a"}, true},
		{Resource{Dataset, "a"}, Resource{Bucket, "a"}, false},
		{Resource{Dataset, "a"}, Resource{Dataset, "b"}, true},
		{Resource{Dataset, "b"}, Resource{Dataset, "a"}, false},
		{Resource{Dataset, "a"}, Resource{Dataset, "a"}, false},
	}

	for _, test := range tests {
		if got := test.A.Less(test.B); got != test.Want {
			t.Errorf("%s.Less(%s) = %v; want %v", test.A, test.B, got, test.Want)
		}
	}
}
