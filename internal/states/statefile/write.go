// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	"encoding/json"
	"fmt"
	"io"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/public-datasets/infractl/internal/providers"
	tfversion "github.com/public-datasets/infractl/version"
)

const formatVersion = 1

// Write writes the given state to the given writer in the current state
// serialization format.
func Write(f *File, w io.Writer) error {
	// Always record the current infractl version in the state.
	f.InfractlVersion = tfversion.String()

	raw := stateJSON{
		Version:         formatVersion,
		InfractlVersion: f.InfractlVersion,
		Lineage:         f.Lineage,
		Serial:          f.Serial,
		Outputs:         map[string]outputJSON{},
	}

	for _, addr := range f.State.ResourceAddrs() {
		ri := f.State.Resource(addr)
		raw.Resources = append(raw.Resources, resourceJSON{
			Kind:    string(addr.Kind),
			Name:    addr.Name,
			Dataset: ri.Dataset,
			Bucket:  ri.Bucket,
		})
	}

	for name, ov := range f.State.Outputs {
		ty := ov.Value.Type()
		tySrc, err := ctyjson.MarshalType(ty)
		if err != nil {
			return fmt.Errorf("failed to serialize type of output %q: %w", name, err)
		}
		valSrc, err := ctyjson.Marshal(ov.Value, ty)
		if err != nil {
			return fmt.Errorf("failed to serialize value of output %q: %w", name, err)
		}
		raw.Outputs[name] = outputJSON{
			Value:     valSrc,
			Type:      tySrc,
			Sensitive: ov.Sensitive,
		}
	}

	src, err := json.MarshalIndent(&raw, "", "  ")
	if err != nil {
		// Should never happen if the above serialization succeeded.
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	src = append(src, '\n')

	_, err = w.Write(src)
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

type stateJSON struct {
	Version         int                   `json:"version"`
	InfractlVersion string                `json:"infractl_version"`
	Lineage         string                `json:"lineage"`
	Serial          uint64                `json:"serial"`
	Resources       []resourceJSON        `json:"resources"`
	Outputs         map[string]outputJSON `json:"outputs"`
}

type resourceJSON struct {
	Kind    string                  `json:"kind"`
	Name    string                  `json:"name"`
	Dataset *providers.DatasetAttrs `json:"dataset,omitempty"`
	Bucket  *providers.BucketAttrs  `json:"bucket,omitempty"`
}

type outputJSON struct {
	Value     json.RawMessage `json:"value"`
	Type      json.RawMessage `json:"type"`
	Sensitive bool            `json:"sensitive,omitempty"`
}
