// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package providers contains the resource object model for the cloud
// objects infractl manages, and the client interfaces that the concrete
// cloud implementations satisfy.
//
// The reconciliation engine depends only on this package; the Google Cloud
// implementation lives in the nested "google" package so that tests can
// substitute in-memory fakes.
package providers

import (
	"context"

	"github.com/public-datasets/infractl/internal/addrs"
)

// Object is implemented by the attribute types for all resource kinds, so
// that plan and state types can refer to "some remote object" generically.
// It is a sealed interface: only types in this package implement it.
type Object interface {
	objectSigil()
}

func (d *DatasetAttrs) objectSigil() {}
func (b *BucketAttrs) objectSigil()  {}

// DatasetAttrs describes the remote object for one data warehouse dataset.
type DatasetAttrs struct {
	Project     string `json:"project"`
	DatasetID   string `json:"dataset_id"`
	Description string `json:"description,omitempty"`

	FriendlyName string            `json:"friendly_name,omitempty"`
	Location     string            `json:"location"`
	Labels       map[string]string `json:"labels,omitempty"`

	// DeleteContentsOnDestroy is not a remote attribute: it only changes how
	// destroy behaves, so differences in it never produce a remote diff.
	DeleteContentsOnDestroy bool `json:"delete_contents_on_destroy,omitempty"`
}

// ID returns the canonical identifier for the dataset, as exposed by the
// "id" attribute in output expressions.
func (d *DatasetAttrs) ID() string {
	return "projects/" + d.Project + "/datasets/" + d.DatasetID
}

// BucketAttrs describes the remote object for one object storage bucket.
type BucketAttrs struct {
	Name         string            `json:"name"`
	Project      string            `json:"project,omitempty"`
	Location     string            `json:"location"`
	StorageClass string            `json:"storage_class,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`

	UniformBucketLevelAccess bool `json:"uniform_bucket_level_access"`

	// ForceDestroy is not a remote attribute: it only changes how destroy
	// behaves, so differences in it never produce a remote diff.
	ForceDestroy bool `json:"force_destroy,omitempty"`
}

// URL returns the gs:// URL of the bucket.
func (b *BucketAttrs) URL() string {
	return "gs://" + b.Name
}

// DatasetAPI is the client surface the engine needs for dataset resources.
//
// Get returns nil (with no error) when the dataset does not exist, so that
// callers can distinguish "absent" from "lookup failed".
type DatasetAPI interface {
	Get(ctx context.Context, project, datasetID string) (*DatasetAttrs, error)
	Create(ctx context.Context, attrs *DatasetAttrs) error
	Update(ctx context.Context, attrs *DatasetAttrs) error

	// Delete removes the dataset. When deleteContents is set the dataset is
	// removed together with any tables it still holds; otherwise deletion
	// of a non-empty dataset fails.
	Delete(ctx context.Context, project, datasetID string, deleteContents bool) error
}

// BucketAPI is the client surface the engine needs for bucket resources.
//
// Get returns nil (with no error) when the bucket does not exist.
type BucketAPI interface {
	Get(ctx context.Context, name string) (*BucketAttrs, error)
	Create(ctx context.Context, attrs *BucketAttrs) error
	Update(ctx context.Context, attrs *BucketAttrs) error

	// Delete removes the bucket. When forceDestroy is set any objects still
	// in the bucket are deleted first, so deletion never fails due to
	// non-empty contents.
	Delete(ctx context.Context, name string, forceDestroy bool) error
}

// Clients bundles the per-kind clients for use by the engine.
type Clients struct {
	Datasets DatasetAPI
	Buckets  BucketAPI
}

// Close releases any underlying connections held by the clients that
// support it.
func (c Clients) Close() error {
	type closer interface {
		Close() error
	}

	var err error
	if cl, ok := c.Datasets.(closer); ok {
		err = cl.Close()
	}
	if cl, ok := c.Buckets.(closer); ok {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// KindOf returns the resource kind that the given object describes.
func KindOf(obj Object) addrs.Kind {
	switch obj.(type) {
	case *DatasetAttrs:
		return addrs.Dataset
	case *BucketAttrs:
		return addrs.Bucket
	default:
		return ""
	}
}
