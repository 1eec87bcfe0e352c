// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package configs contains types that represent infractl stack
// configurations and the parser that loads them from HCL files on disk.
//
// A stack configuration declares the hosting infrastructure for one public
// dataset: input variables, the dataset and bucket resources themselves,
// and the output values exposed for consumption by other units.
package configs

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"

	"github.com/public-datasets/infractl/internal/addrs"
)

// Stack is the top-level configuration object for one stack directory.
type Stack struct {
	// SourceDir is the directory the configuration was loaded from.
	SourceDir string

	Variables map[string]*Variable
	Datasets  map[string]*Dataset
	Buckets   map[string]*Bucket
	Outputs   map[string]*Output
}

// ResourceAddrs returns the addresses of all resources declared in the
// stack, in sorted order.
func (s *Stack) ResourceAddrs() []addrs.Resource {
	ret := make([]addrs.Resource, 0, len(s.Datasets)+len(s.Buckets))
	for _, d := range s.Datasets {
		ret = append(ret, d.Addr())
	}
	for _, b := range s.Buckets {
		ret = append(ret, b.Addr())
	}
	sortResourceAddrs(ret)
	return ret
}

func sortResourceAddrs(list []addrs.Resource) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Less(list[j])
	})
}

// LoadStackDir reads all of the configuration files in the given directory
// and returns the stack configuration they describe.
//
// If the returned diagnostics contain errors the returned Stack may be nil
// or incomplete.
func (p *Parser) LoadStackDir(dir string) (*Stack, hcl.Diagnostics) {
	paths, err := p.ConfigDirFiles(dir)
	if err != nil {
		return nil, hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "Failed to read stack directory",
				Detail:   fmt.Sprintf("The directory %q could not be read: %s.", dir, err),
			},
		}
	}

	if len(paths) == 0 {
		return nil, hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "No configuration files",
				Detail:   fmt.Sprintf("The directory %q contains no %s files. A stack must declare at least one resource.", dir, configFileSuffix),
			},
		}
	}

	stack := &Stack{
		SourceDir: dir,
		Variables: map[string]*Variable{},
		Datasets:  map[string]*Dataset{},
		Buckets:   map[string]*Bucket{},
		Outputs:   map[string]*Output{},
	}

	var diags hcl.Diagnostics
	for _, path := range paths {
		body, fileDiags := p.LoadHCLFile(path)
		diags = append(diags, fileDiags...)
		if body == nil {
			continue
		}

		fileDiags = stack.appendFile(body)
		diags = append(diags, fileDiags...)
	}

	return stack, diags
}

func (s *Stack) appendFile(body hcl.Body) hcl.Diagnostics {
	content, diags := body.Content(stackRootSchema)

	for _, block := range content.Blocks {
		switch block.Type {

		case "variable":
			v, blockDiags := decodeVariableBlock(block)
			diags = append(diags, blockDiags...)
			if existing, exists := s.Variables[v.Name]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate variable declaration",
					Detail:   fmt.Sprintf("A variable named %q was already declared at %s. Variable names must be unique within a stack.", v.Name, existing.DeclRange),
					Subject:  &v.DeclRange,
				})
				continue
			}
			s.Variables[v.Name] = v

		case "dataset":
			d, blockDiags := decodeDatasetBlock(block)
			diags = append(diags, blockDiags...)
			if existing, exists := s.Datasets[d.Name]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate dataset declaration",
					Detail:   fmt.Sprintf("A dataset named %q was already declared at %s. Resource names must be unique per kind within a stack.", d.Name, existing.DeclRange),
					Subject:  &d.DeclRange,
				})
				continue
			}
			s.Datasets[d.Name] = d

		case "bucket":
			b, blockDiags := decodeBucketBlock(block)
			diags = append(diags, blockDiags...)
			if existing, exists := s.Buckets[b.Name]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate bucket declaration",
					Detail:   fmt.Sprintf("A bucket named %q was already declared at %s. Resource names must be unique per kind within a stack.", b.Name, existing.DeclRange),
					Subject:  &b.DeclRange,
				})
				continue
			}
			s.Buckets[b.Name] = b

		case "output":
			o, blockDiags := decodeOutputBlock(block)
			diags = append(diags, blockDiags...)
			if existing, exists := s.Outputs[o.Name]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate output declaration",
					Detail:   fmt.Sprintf("An output named %q was already declared at %s. Output names must be unique within a stack.", o.Name, existing.DeclRange),
					Subject:  &o.DeclRange,
				})
				continue
			}
			s.Outputs[o.Name] = o

		default:
			// Should never happen because the above cases should be
			// exhaustive for the block types in stackRootSchema.
			panic(fmt.Sprintf("unhandled block type %q", block.Type))
		}
	}

	return diags
}

var stackRootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "dataset", LabelNames: []string{"name"}},
		{Type: "bucket", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}
