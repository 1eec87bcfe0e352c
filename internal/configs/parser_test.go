// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package configs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
)

func testParser(t *testing.T, files map[string]string) *Parser {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, src := range files {
		if err := afero.WriteFile(fs, name, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return NewParser(fs)
}

func TestLoadStackDir(t *testing.T) {
	p := testParser(t, map[string]string{
		"stack/variables.pd.hcl": `
variable "project_id" {
  type        = string
  description = "The project to create resources in."
}

variable "location" {
  type    = string
  default = "US"
}
`,
		"stack/main.pd.hcl": `
dataset "covid19" {
  dataset_id = "covid19"
  project    = var.project_id
  location   = var.location

  labels = {
    managed = "infractl"
  }
}

bucket "covid19" {
  name     = "${var.project_id}-covid19"
  project  = var.project_id
  location = var.location

  force_destroy = true
}
`,
		"stack/outputs.pd.hcl": `
output "dataset_id" {
  value = dataset.covid19.dataset_id
}
`,
		// Files without the configuration suffix must be ignored.
		"stack/README.md":        `not hcl at all {{{`,
		"stack/dev.pdvars.hcl":   `project_id = "dev-project"`,
		"stack/.hidden.pd.hcl":   `dataset "bad" {}`,
		"stack/backup.pd.hcl~":   `dataset "bad" {}`,
	})

	stack, diags := p.LoadStackDir("stack")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Error())
	}

	if got, want := len(stack.Variables), 2; got != want {
		t.Errorf("wrong number of variables %d; want %d", got, want)
	}
	if v := stack.Variables["location"]; v == nil || !v.Default.RawEquals(cty.StringVal("US")) {
		t.Errorf("wrong declaration for location: %#v", v)
	}
	if v := stack.Variables["project_id"]; v == nil || v.Default != cty.NilVal {
		t.Errorf("project_id should have no default: %#v", v)
	}

	wantAddrs := []addrs.Resource{
		{Kind: addrs.Bucket, Name: "covid19"},
		{Kind: addrs.Dataset, Name: "covid19"},
	}
	if diff := cmp.Diff(wantAddrs, stack.ResourceAddrs()); diff != "" {
		t.Errorf("wrong resource addresses\n%s", diff)
	}

	if _, ok := stack.Outputs["dataset_id"]; !ok {
		t.Errorf("output dataset_id was not decoded")
	}
}

func TestLoadStackDirErrors(t *testing.T) {
	tests := map[string]struct {
		src     string
		wantErr string
	}{
		"unsupported block": {
			`resource "google_bigquery_dataset" "x" {}`,
			"Blocks of type \"resource\" are not expected here",
		},
		"duplicate dataset": {
			`
dataset "a" {
  dataset_id = "a"
  project    = "p"
}

dataset "a" {
  dataset_id = "a"
  project    = "p"
}
`,
			"Duplicate dataset declaration",
		},
		"missing required attribute": {
			`
bucket "a" {
  project = "p"
}
`,
			`The argument "name" is required`,
		},
		"invalid variable name": {
			`
variable "not valid" {
  type = string
}
`,
			"Invalid variable name",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			p := testParser(t, map[string]string{
				"stack/main.pd.hcl": test.src,
			})
			_, diags := p.LoadStackDir("stack")
			if !diags.HasErrors() {
				t.Fatalf("succeeded; want error containing %q", test.wantErr)
			}
			if got := diags.Error(); !strings.Contains(got, test.wantErr) {
				t.Errorf("wrong error\ngot:  %s\nwant: containing %q", got, test.wantErr)
			}
		})
	}
}

func TestLoadStackDirEmpty(t *testing.T) {
	p := testParser(t, map[string]string{
		"stack/notes.txt": "nothing to see",
	})
	_, diags := p.LoadStackDir("stack")
	if !diags.HasErrors() {
		t.Fatal("succeeded; want a no-configuration-files error")
	}
	if got := diags.Error(); !strings.Contains(got, "No configuration files") {
		t.Errorf("wrong error: %s", got)
	}
}

func TestLoadValuesFile(t *testing.T) {
	p := testParser(t, map[string]string{
		"stack/dev.pdvars.hcl": `
project_id = "dev-project"
replicas   = 3
regions    = ["us-central1", "us-east1"]
`,
	})

	got, diags := p.LoadValuesFile("stack/dev.pdvars.hcl")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Error())
	}

	want := map[string]cty.Value{
		"project_id": cty.StringVal("dev-project"),
		"replicas":   cty.NumberIntVal(3),
		"regions": cty.TupleVal([]cty.Value{
			cty.StringVal("us-central1"),
			cty.StringVal("us-east1"),
		}),
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b cty.Value) bool {
		return a.RawEquals(b)
	})); diff != "" {
		t.Errorf("wrong values\n%s", diff)
	}
}

func TestLoadValuesFileRejectsBlocks(t *testing.T) {
	p := testParser(t, map[string]string{
		"stack/dev.pdvars.hcl": `
dataset "oops" {
  dataset_id = "oops"
}
`,
	})
	_, diags := p.LoadValuesFile("stack/dev.pdvars.hcl")
	if !diags.HasErrors() {
		t.Fatal("succeeded; want an error about unexpected blocks")
	}
}

func TestAutoValuesFiles(t *testing.T) {
	p := testParser(t, map[string]string{
		"stack/b.auto.pdvars.hcl": `x = 1`,
		"stack/a.auto.pdvars.hcl": `x = 2`,
		"stack/dev.pdvars.hcl":    `x = 3`,
		"stack/main.pd.hcl":       ``,
		"stack/.z.auto.pdvars.hcl": `x = 4`,
	})

	got, err := p.AutoValuesFiles("stack")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"stack/a.auto.pdvars.hcl",
		"stack/b.auto.pdvars.hcl",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong files\n%s", diff)
	}
}
