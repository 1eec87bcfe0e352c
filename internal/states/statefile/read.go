// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/states"
)

// ErrNoState is returned by Read when the state file is empty.
var ErrNoState = errors.New("no state")

// Read reads a state from the given reader.
//
// An error is returned if the snapshot cannot be parsed, if it was written
// by an incompatible version of the format, or if it is internally
// inconsistent. An empty reader yields ErrNoState.
func Read(r io.Reader) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(src) == 0 {
		return nil, ErrNoState
	}

	var raw stateJSON
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("the state file could not be parsed as JSON: %w", err)
	}

	if raw.Version != formatVersion {
		return nil, fmt.Errorf("unsupported state file format version %d; this version of infractl supports only version %d", raw.Version, formatVersion)
	}
	if raw.Lineage == "" {
		return nil, fmt.Errorf("invalid state file: no lineage")
	}

	state := states.NewState()
	for _, rawRes := range raw.Resources {
		addr, addrDiags := addrs.ParseResourceStr(rawRes.Kind + "." + rawRes.Name)
		if addrDiags.HasErrors() {
			return nil, fmt.Errorf("invalid state file: resource %s.%s has an invalid address: %w", rawRes.Kind, rawRes.Name, addrDiags.Err())
		}
		switch addr.Kind {
		case addrs.Dataset:
			if rawRes.Dataset == nil {
				return nil, fmt.Errorf("invalid state file: resource %s has no dataset attributes", addr)
			}
			state.SetDataset(addr, rawRes.Dataset)
		case addrs.Bucket:
			if rawRes.Bucket == nil {
				return nil, fmt.Errorf("invalid state file: resource %s has no bucket attributes", addr)
			}
			state.SetBucket(addr, rawRes.Bucket)
		}
	}

	for name, rawOut := range raw.Outputs {
		ty, err := ctyjson.UnmarshalType(rawOut.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid state file: output %q has invalid type: %w", name, err)
		}
		val, err := ctyjson.Unmarshal(rawOut.Value, ty)
		if err != nil {
			return nil, fmt.Errorf("invalid state file: output %q has invalid value: %w", name, err)
		}
		state.SetOutputValue(name, val, rawOut.Sensitive)
	}

	return &File{
		Lineage:         raw.Lineage,
		Serial:          raw.Serial,
		InfractlVersion: raw.InfractlVersion,
		State:           state,
	}, nil
}
