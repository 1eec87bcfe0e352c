// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package configs

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/public-datasets/infractl/internal/addrs"
)

// Dataset represents a "dataset" block: the declaration of one data
// warehouse dataset.
//
// Attributes that may refer to variables are retained as expressions here
// and only evaluated once variable values are known.
type Dataset struct {
	Name string

	DatasetID    hcl.Expression
	Project      hcl.Expression
	FriendlyName hcl.Expression
	Description  hcl.Expression
	Location     hcl.Expression
	Labels       hcl.Expression

	// DeleteContentsOnDestroy allows destroying the dataset even when it
	// still contains tables.
	DeleteContentsOnDestroy bool

	DeclRange hcl.Range
}

// Addr returns the address of the resource declared by the receiver.
func (d *Dataset) Addr() addrs.Resource {
	return addrs.Resource{Kind: addrs.Dataset, Name: d.Name}
}

func decodeDatasetBlock(block *hcl.Block) (*Dataset, hcl.Diagnostics) {
	d := &Dataset{
		Name:      block.Labels[0],
		DeclRange: block.DefRange,
	}

	content, diags := block.Body.Content(datasetBlockSchema)

	if !hclsyntax.ValidIdentifier(d.Name) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid dataset name",
			Detail:   badIdentifierDetail,
			Subject:  &block.LabelRanges[0],
		})
	}

	if attr, exists := content.Attributes["dataset_id"]; exists {
		d.DatasetID = attr.Expr
	}
	if attr, exists := content.Attributes["project"]; exists {
		d.Project = attr.Expr
	}
	if attr, exists := content.Attributes["friendly_name"]; exists {
		d.FriendlyName = attr.Expr
	}
	if attr, exists := content.Attributes["description"]; exists {
		d.Description = attr.Expr
	}
	if attr, exists := content.Attributes["location"]; exists {
		d.Location = attr.Expr
	}
	if attr, exists := content.Attributes["labels"]; exists {
		d.Labels = attr.Expr
	}
	if attr, exists := content.Attributes["delete_contents_on_destroy"]; exists {
		valDiags := gohcl.DecodeExpression(attr.Expr, nil, &d.DeleteContentsOnDestroy)
		diags = append(diags, valDiags...)
	}

	return d, diags
}

// Bucket represents a "bucket" block: the declaration of one object storage
// bucket.
type Bucket struct {
	Name string

	BucketName   hcl.Expression
	Project      hcl.Expression
	Location     hcl.Expression
	StorageClass hcl.Expression
	Labels       hcl.Expression

	// ForceDestroy allows destroying the bucket even when it still contains
	// objects; the objects are deleted first.
	ForceDestroy bool

	// UniformBucketLevelAccess disables per-object ACLs in favor of a
	// single bucket-level policy.
	UniformBucketLevelAccess bool

	DeclRange hcl.Range
}

// Addr returns the address of the resource declared by the receiver.
func (b *Bucket) Addr() addrs.Resource {
	return addrs.Resource{Kind: addrs.Bucket, Name: b.Name}
}

func decodeBucketBlock(block *hcl.Block) (*Bucket, hcl.Diagnostics) {
	b := &Bucket{
		Name:      block.Labels[0],
		DeclRange: block.DefRange,
	}

	content, diags := block.Body.Content(bucketBlockSchema)

	if !hclsyntax.ValidIdentifier(b.Name) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid bucket name",
			Detail:   badIdentifierDetail,
			Subject:  &block.LabelRanges[0],
		})
	}

	if attr, exists := content.Attributes["name"]; exists {
		b.BucketName = attr.Expr
	}
	if attr, exists := content.Attributes["project"]; exists {
		b.Project = attr.Expr
	}
	if attr, exists := content.Attributes["location"]; exists {
		b.Location = attr.Expr
	}
	if attr, exists := content.Attributes["storage_class"]; exists {
		b.StorageClass = attr.Expr
	}
	if attr, exists := content.Attributes["labels"]; exists {
		b.Labels = attr.Expr
	}
	if attr, exists := content.Attributes["force_destroy"]; exists {
		valDiags := gohcl.DecodeExpression(attr.Expr, nil, &b.ForceDestroy)
		diags = append(diags, valDiags...)
	}
	if attr, exists := content.Attributes["uniform_bucket_level_access"]; exists {
		valDiags := gohcl.DecodeExpression(attr.Expr, nil, &b.UniformBucketLevelAccess)
		diags = append(diags, valDiags...)
	}

	return b, diags
}

var datasetBlockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "dataset_id", Required: true},
		{Name: "project", Required: true},
		{Name: "friendly_name"},
		{Name: "description"},
		{Name: "location"},
		{Name: "labels"},
		{Name: "delete_contents_on_destroy"},
	},
}

var bucketBlockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name", Required: true},
		{Name: "project"},
		{Name: "location"},
		{Name: "storage_class"},
		{Name: "labels"},
		{Name: "force_destroy"},
		{Name: "uniform_bucket_level_access"},
	},
}
