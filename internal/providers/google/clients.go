// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package google implements the provider client interfaces against Google
// Cloud: BigQuery for dataset resources and Cloud Storage for bucket
// resources.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/public-datasets/infractl/internal/httpclient"
	"github.com/public-datasets/infractl/internal/providers"
)

// Credentials environment variables, in order of precedence.
const (
	envCredentials = "GOOGLE_CREDENTIALS"
	envApplication = "GOOGLE_APPLICATION_CREDENTIALS"
)

// NewClients dials BigQuery and Cloud Storage and returns the provider
// clients for them.
//
// Credentials are resolved the same way as in the GCS state backend:
// GOOGLE_CREDENTIALS may hold either the path of a service account key
// file or its literal JSON content, and otherwise Application Default
// Credentials apply (GOOGLE_APPLICATION_CREDENTIALS is handled by the
// client libraries themselves).
func NewClients(ctx context.Context, credentialsPath string) (providers.Clients, error) {
	opts := []option.ClientOption{
		option.WithUserAgent(httpclient.UserAgentString()),
	}

	if credentialsPath == "" {
		credentialsPath = os.Getenv(envCredentials)
	}
	if credentialsPath != "" {
		contents, err := readPathOrContents(credentialsPath)
		if err != nil {
			return providers.Clients{}, fmt.Errorf("error loading credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return providers.Clients{}, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	bigqueryClient, err := bigquery.NewClient(ctx, bigquery.DetectProjectID, opts...)
	if err != nil {
		storageClient.Close()
		return providers.Clients{}, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	return providers.Clients{
		Datasets: &datasetClient{client: bigqueryClient},
		Buckets:  &bucketClient{client: storageClient},
	}, nil
}

// readPathOrContents reads the value as a file path if a file exists at
// that location, and otherwise returns the value itself. This lets the
// credentials setting hold either a key file path or inline key JSON.
func readPathOrContents(poc string) (string, error) {
	if _, err := os.Stat(poc); err == nil {
		contents, err := os.ReadFile(poc)
		if err != nil {
			return "", err
		}
		return string(contents), nil
	}
	return poc, nil
}

// retryBackoff returns the backoff settings used for retrying mutating
// calls that fail with a retriable API error. The hosted APIs apply
// per-project rate limits which surface as 429s during bulk onboarding.
func retryBackoff() gax.Backoff {
	return gax.Backoff{
		Initial:    500 * time.Millisecond,
		Max:        10 * time.Second,
		Multiplier: 2,
	}
}

// withRetry invokes f, retrying with backoff while it returns a retriable
// API error and the context remains live.
func withRetry(ctx context.Context, f func() error) error {
	bo := retryBackoff()
	for {
		err := f()
		if err == nil || !isRetriable(err) {
			return err
		}
		if err := gax.Sleep(ctx, bo.Pause()); err != nil {
			return err
		}
	}
}

func isRetriable(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	switch gerr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	}
	return false
}

// isNotFound recognizes the API error for an absent object.
func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
