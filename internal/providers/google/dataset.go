// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package google

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/bigquery"

	"github.com/public-datasets/infractl/internal/providers"
)

// datasetClient implements providers.DatasetAPI against BigQuery.
type datasetClient struct {
	client *bigquery.Client
}

var _ providers.DatasetAPI = (*datasetClient)(nil)

func (c *datasetClient) Get(ctx context.Context, project, datasetID string) (*providers.DatasetAttrs, error) {
	md, err := c.client.DatasetInProject(project, datasetID).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			log.Printf("[DEBUG] google: dataset %s:%s does not exist", project, datasetID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset %s:%s: %w", project, datasetID, err)
	}

	return &providers.DatasetAttrs{
		Project:      project,
		DatasetID:    datasetID,
		FriendlyName: md.Name,
		Description:  md.Description,
		Location:     md.Location,
		Labels:       md.Labels,
	}, nil
}

func (c *datasetClient) Create(ctx context.Context, attrs *providers.DatasetAttrs) error {
	md := &bigquery.DatasetMetadata{
		Name:        attrs.FriendlyName,
		Description: attrs.Description,
		Location:    attrs.Location,
		Labels:      attrs.Labels,
	}

	log.Printf("[DEBUG] google: creating dataset %s:%s in %s", attrs.Project, attrs.DatasetID, attrs.Location)
	err := withRetry(ctx, func() error {
		return c.client.DatasetInProject(attrs.Project, attrs.DatasetID).Create(ctx, md)
	})
	if err != nil {
		return fmt.Errorf("failed to create dataset %s:%s: %w", attrs.Project, attrs.DatasetID, err)
	}
	return nil
}

func (c *datasetClient) Update(ctx context.Context, attrs *providers.DatasetAttrs) error {
	ds := c.client.DatasetInProject(attrs.Project, attrs.DatasetID)

	// Read the current metadata so the update can be conditional on its
	// etag, and so removed labels can be deleted explicitly.
	md, err := ds.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dataset %s:%s before update: %w", attrs.Project, attrs.DatasetID, err)
	}

	update := bigquery.DatasetMetadataToUpdate{
		Name:        attrs.FriendlyName,
		Description: attrs.Description,
	}
	for k, v := range attrs.Labels {
		update.SetLabel(k, v)
	}
	for k := range md.Labels {
		if _, keep := attrs.Labels[k]; !keep {
			update.DeleteLabel(k)
		}
	}

	log.Printf("[DEBUG] google: updating dataset %s:%s", attrs.Project, attrs.DatasetID)
	err = withRetry(ctx, func() error {
		_, err := ds.Update(ctx, update, md.ETag)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update dataset %s:%s: %w", attrs.Project, attrs.DatasetID, err)
	}
	return nil
}

func (c *datasetClient) Delete(ctx context.Context, project, datasetID string, deleteContents bool) error {
	ds := c.client.DatasetInProject(project, datasetID)

	var err error
	if deleteContents {
		log.Printf("[DEBUG] google: deleting dataset %s:%s together with its contents", project, datasetID)
		err = ds.DeleteWithContents(ctx)
	} else {
		log.Printf("[DEBUG] google: deleting dataset %s:%s", project, datasetID)
		err = ds.Delete(ctx)
	}
	if err != nil {
		if isNotFound(err) {
			// Already gone; deletion is idempotent.
			return nil
		}
		return fmt.Errorf("failed to delete dataset %s:%s: %w", project, datasetID, err)
	}
	return nil
}

func (c *datasetClient) Close() error {
	return c.client.Close()
}
