// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package google

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/public-datasets/infractl/internal/providers"
)

// bucketClient implements providers.BucketAPI against Cloud Storage.
type bucketClient struct {
	client *storage.Client
}

var _ providers.BucketAPI = (*bucketClient)(nil)

func (c *bucketClient) Get(ctx context.Context, name string) (*providers.BucketAttrs, error) {
	attrs, err := c.client.Bucket(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			log.Printf("[DEBUG] google: bucket %s does not exist", name)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read bucket %s: %w", name, err)
	}

	return &providers.BucketAttrs{
		Name:                     attrs.Name,
		Location:                 attrs.Location,
		StorageClass:             attrs.StorageClass,
		Labels:                   attrs.Labels,
		UniformBucketLevelAccess: attrs.UniformBucketLevelAccess.Enabled,
	}, nil
}

func (c *bucketClient) Create(ctx context.Context, attrs *providers.BucketAttrs) error {
	bucketAttrs := &storage.BucketAttrs{
		Location:     attrs.Location,
		StorageClass: attrs.StorageClass,
		Labels:       attrs.Labels,
		UniformBucketLevelAccess: storage.UniformBucketLevelAccess{
			Enabled: attrs.UniformBucketLevelAccess,
		},
	}

	log.Printf("[DEBUG] google: creating bucket %s in %s", attrs.Name, attrs.Location)
	err := withRetry(ctx, func() error {
		return c.client.Bucket(attrs.Name).Create(ctx, attrs.Project, bucketAttrs)
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", attrs.Name, err)
	}
	return nil
}

func (c *bucketClient) Update(ctx context.Context, attrs *providers.BucketAttrs) error {
	bucket := c.client.Bucket(attrs.Name)

	// Read the current attributes so removed labels can be deleted
	// explicitly.
	current, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bucket %s before update: %w", attrs.Name, err)
	}

	update := storage.BucketAttrsToUpdate{
		StorageClass: attrs.StorageClass,
		UniformBucketLevelAccess: &storage.UniformBucketLevelAccess{
			Enabled: attrs.UniformBucketLevelAccess,
		},
	}
	for k, v := range attrs.Labels {
		update.SetLabel(k, v)
	}
	for k := range current.Labels {
		if _, keep := attrs.Labels[k]; !keep {
			update.DeleteLabel(k)
		}
	}

	log.Printf("[DEBUG] google: updating bucket %s", attrs.Name)
	err = withRetry(ctx, func() error {
		_, err := bucket.Update(ctx, update)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket %s: %w", attrs.Name, err)
	}
	return nil
}

func (c *bucketClient) Delete(ctx context.Context, name string, forceDestroy bool) error {
	bucket := c.client.Bucket(name)

	if forceDestroy {
		// Deleting a non-empty bucket fails, so remove every object first.
		// This makes bucket deletion unconditional for stacks that opted
		// in to force_destroy.
		if err := c.deleteObjects(ctx, name); err != nil {
			return err
		}
	}

	log.Printf("[DEBUG] google: deleting bucket %s", name)
	if err := bucket.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			// Already gone; deletion is idempotent.
			return nil
		}
		return fmt.Errorf("failed to delete bucket %s: %w", name, err)
	}
	return nil
}

func (c *bucketClient) deleteObjects(ctx context.Context, name string) error {
	bucket := c.client.Bucket(name)

	objs := bucket.Objects(ctx, nil)
	for {
		attrs, err := objs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list objects in bucket %s: %w", name, err)
		}

		log.Printf("[TRACE] google: deleting object %s/%s", name, attrs.Name)
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete object %s/%s: %w", name, attrs.Name, err)
		}
	}
	return nil
}

func (c *bucketClient) Close() error {
	return c.client.Close()
}
