// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"reflect"

	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/providers"
)

// diffDataset decides the action needed to move a dataset from its prior
// remote object (nil if absent) to its desired one.
func diffDataset(prior, desired *providers.DatasetAttrs) (plans.Action, string) {
	if prior == nil {
		return plans.Create, ""
	}

	// Identity changes can only be satisfied by replacing the object.
	if prior.Project != desired.Project || prior.DatasetID != desired.DatasetID {
		return plans.DeleteThenCreate, fmt.Sprintf("dataset identity changed from %s:%s to %s:%s", prior.Project, prior.DatasetID, desired.Project, desired.DatasetID)
	}
	if prior.Location != desired.Location {
		return plans.DeleteThenCreate, fmt.Sprintf("location cannot be changed in-place (%s to %s)", prior.Location, desired.Location)
	}

	// DeleteContentsOnDestroy only affects a later destroy, but a change to
	// it still plans as an update so the new value lands in state.
	if prior.Description != desired.Description ||
		prior.FriendlyName != desired.FriendlyName ||
		prior.DeleteContentsOnDestroy != desired.DeleteContentsOnDestroy ||
		!labelsEqual(prior.Labels, desired.Labels) {
		return plans.Update, ""
	}

	return plans.NoOp, ""
}

// diffBucket decides the action needed to move a bucket from its prior
// remote object (nil if absent) to its desired one.
func diffBucket(prior, desired *providers.BucketAttrs) (plans.Action, string) {
	if prior == nil {
		return plans.Create, ""
	}

	// Bucket names are global identity; a rename is a replacement.
	if prior.Name != desired.Name {
		return plans.DeleteThenCreate, fmt.Sprintf("bucket name changed from %q to %q", prior.Name, desired.Name)
	}
	if prior.Location != desired.Location {
		return plans.DeleteThenCreate, fmt.Sprintf("location cannot be changed in-place (%s to %s)", prior.Location, desired.Location)
	}

	// ForceDestroy is tracked only in state; see the dataset equivalent.
	if prior.StorageClass != desired.StorageClass ||
		prior.UniformBucketLevelAccess != desired.UniformBucketLevelAccess ||
		prior.ForceDestroy != desired.ForceDestroy ||
		!labelsEqual(prior.Labels, desired.Labels) {
		return plans.Update, ""
	}

	return plans.NoOp, ""
}

func labelsEqual(a, b map[string]string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
