// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package engine implements the reconciliation core: it evaluates a stack
// configuration against input variables, compares the desired objects with
// what the remote APIs report, and produces and applies plans.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/configs"
	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/providers"
	"github.com/public-datasets/infractl/internal/states"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// Engine drives plan and apply operations against a single stack.
type Engine struct {
	Clients providers.Clients

	// Hooks receive progress callbacks during Apply.
	Hooks []Hook
}

// Plan compares the desired objects described by the stack and variables
// against the remote objects, and returns the set of changes needed to
// converge. The prior state is read but never modified.
//
// In DestroyMode the configuration's resources are ignored and every object
// tracked in the state is planned for deletion.
func (e *Engine) Plan(ctx context.Context, stack *configs.Stack, vars InputValues, state *states.State, mode plans.Mode) (*plans.Plan, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	plan := &plans.Plan{
		Mode:           mode,
		PlannedOutputs: map[string]cty.Value{},
	}

	if state == nil {
		state = states.NewState()
	}

	if mode == plans.DestroyMode {
		for _, addr := range state.ResourceAddrs() {
			is := state.Resource(addr)
			log.Printf("[TRACE] engine: planning destroy of %s", addr)
			plan.AppendChange(&plans.ResourceChange{
				Addr:   addr,
				Action: plans.Delete,
				Before: instanceObject(is),
			})
		}
		return plan, diags
	}

	evalCtx := varsEvalContext(vars)
	desired := resourceObjects{}

	for _, d := range stack.Datasets {
		addr := d.Addr()
		attrs, moreDiags := evalDataset(d, evalCtx)
		diags = diags.Append(moreDiags)
		if moreDiags.HasErrors() {
			plan.Errored = true
			continue
		}
		desired[addr] = attrs

		prior, err := e.refreshDataset(ctx, state.Resource(addr))
		if err != nil {
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Error,
				"Failed to read remote dataset",
				fmt.Sprintf("Error reading %s: %s.", addr, err),
			))
			plan.Errored = true
			continue
		}

		action, reason := diffDataset(prior, attrs)
		log.Printf("[TRACE] engine: %s planned action is %s", addr, action)
		rc := &plans.ResourceChange{
			Addr:         addr,
			Action:       action,
			After:        attrs,
			ActionReason: reason,
		}
		if prior != nil {
			rc.Before = prior
		}
		plan.AppendChange(rc)
	}

	for _, b := range stack.Buckets {
		addr := b.Addr()
		attrs, moreDiags := evalBucket(b, evalCtx)
		diags = diags.Append(moreDiags)
		if moreDiags.HasErrors() {
			plan.Errored = true
			continue
		}
		desired[addr] = attrs

		prior, err := e.refreshBucket(ctx, state.Resource(addr))
		if err != nil {
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Error,
				"Failed to read remote bucket",
				fmt.Sprintf("Error reading %s: %s.", addr, err),
			))
			plan.Errored = true
			continue
		}

		action, reason := diffBucket(prior, attrs)
		log.Printf("[TRACE] engine: %s planned action is %s", addr, action)
		rc := &plans.ResourceChange{
			Addr:         addr,
			Action:       action,
			After:        attrs,
			ActionReason: reason,
		}
		if prior != nil {
			rc.Before = prior
		}
		plan.AppendChange(rc)
	}

	// Objects tracked in state but no longer declared must be destroyed.
	for _, addr := range state.ResourceAddrs() {
		if _, declared := desired[addr]; declared {
			continue
		}
		is := state.Resource(addr)
		log.Printf("[TRACE] engine: %s is no longer declared, planning destroy", addr)
		plan.AppendChange(&plans.ResourceChange{
			Addr:   addr,
			Action: plans.Delete,
			Before: instanceObject(is),
		})
	}

	if !plan.Errored {
		vals, _, moreDiags := evalOutputs(stack, vars, desired)
		diags = diags.Append(moreDiags)
		if !moreDiags.HasErrors() {
			plan.PlannedOutputs = vals
		}
	}

	return plan, diags
}

// Apply executes the given plan, updating the state as each change
// completes. The state is updated even when some changes fail, so that
// partially-applied work is not lost; callers must persist it regardless of
// the returned diagnostics.
func (e *Engine) Apply(ctx context.Context, stack *configs.Stack, vars InputValues, plan *plans.Plan, state *states.State) tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics
	var errs *multierror.Error

	for _, rc := range plan.Changes {
		if rc.Action == plans.NoOp {
			// The remote object is already correct, but flags held only in
			// state (force_destroy and friends) may still have changed.
			e.writeToState(state, rc.Addr, rc.After)
			continue
		}

		for _, h := range e.Hooks {
			h.PreApply(rc.Addr, rc.Action)
		}

		err := e.applyChange(ctx, rc, state)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", rc.Addr, err))
		}

		for _, h := range e.Hooks {
			h.PostApply(rc.Addr, rc.Action, err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		diags = diags.Append(err)
	}

	if plan.Mode == plans.DestroyMode {
		for name := range state.Outputs {
			state.RemoveOutputValue(name)
		}
		return diags
	}

	// Resolve outputs against what was actually created, not what was
	// planned, so failed changes don't produce stale values.
	objs := resourceObjects{}
	for _, addr := range state.ResourceAddrs() {
		objs[addr] = instanceObject(state.Resource(addr))
	}
	vals, sensitive, moreDiags := evalOutputs(stack, vars, objs)
	diags = diags.Append(moreDiags)
	for name := range state.Outputs {
		if _, ok := vals[name]; !ok {
			state.RemoveOutputValue(name)
		}
	}
	for name, val := range vals {
		state.SetOutputValue(name, val, sensitive[name])
	}

	return diags
}

func (e *Engine) applyChange(ctx context.Context, rc *plans.ResourceChange, state *states.State) error {
	switch rc.Action {
	case plans.Create:
		return e.applyCreate(ctx, rc, state)
	case plans.Update:
		return e.applyUpdate(ctx, rc, state)
	case plans.DeleteThenCreate:
		if err := e.applyDelete(ctx, rc.Addr, rc.Before, state); err != nil {
			return err
		}
		return e.applyCreate(ctx, rc, state)
	case plans.Delete:
		return e.applyDelete(ctx, rc.Addr, rc.Before, state)
	default:
		return fmt.Errorf("unsupported action %s", rc.Action)
	}
}

func (e *Engine) applyCreate(ctx context.Context, rc *plans.ResourceChange, state *states.State) error {
	log.Printf("[DEBUG] engine: creating %s", rc.Addr)
	switch attrs := rc.After.(type) {
	case *providers.DatasetAttrs:
		if err := e.Clients.Datasets.Create(ctx, attrs); err != nil {
			return err
		}
	case *providers.BucketAttrs:
		if err := e.Clients.Buckets.Create(ctx, attrs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported object type %T", rc.After)
	}
	return e.readBack(ctx, rc, state)
}

func (e *Engine) applyUpdate(ctx context.Context, rc *plans.ResourceChange, state *states.State) error {
	log.Printf("[DEBUG] engine: updating %s", rc.Addr)
	switch attrs := rc.After.(type) {
	case *providers.DatasetAttrs:
		if err := e.Clients.Datasets.Update(ctx, attrs); err != nil {
			return err
		}
	case *providers.BucketAttrs:
		if err := e.Clients.Buckets.Update(ctx, attrs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported object type %T", rc.After)
	}
	return e.readBack(ctx, rc, state)
}

func (e *Engine) applyDelete(ctx context.Context, addr addrs.Resource, before providers.Object, state *states.State) error {
	log.Printf("[DEBUG] engine: deleting %s", addr)
	switch attrs := before.(type) {
	case *providers.DatasetAttrs:
		if err := e.Clients.Datasets.Delete(ctx, attrs.Project, attrs.DatasetID, attrs.DeleteContentsOnDestroy); err != nil {
			return err
		}
	case *providers.BucketAttrs:
		if err := e.Clients.Buckets.Delete(ctx, attrs.Name, attrs.ForceDestroy); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported object type %T", before)
	}
	state.RemoveResource(addr)
	return nil
}

// readBack reads the remote object after a create or update so the state
// records server-populated attributes rather than just what was sent, then
// re-applies the state-only flags from the desired object.
func (e *Engine) readBack(ctx context.Context, rc *plans.ResourceChange, state *states.State) error {
	switch desired := rc.After.(type) {
	case *providers.DatasetAttrs:
		actual, err := e.Clients.Datasets.Get(ctx, desired.Project, desired.DatasetID)
		if err != nil {
			return fmt.Errorf("reading back after apply: %w", err)
		}
		if actual == nil {
			return fmt.Errorf("dataset %s not found after apply", desired.ID())
		}
		actual.DeleteContentsOnDestroy = desired.DeleteContentsOnDestroy
		state.SetDataset(rc.Addr, actual)
	case *providers.BucketAttrs:
		actual, err := e.Clients.Buckets.Get(ctx, desired.Name)
		if err != nil {
			return fmt.Errorf("reading back after apply: %w", err)
		}
		if actual == nil {
			return fmt.Errorf("bucket %s not found after apply", desired.URL())
		}
		actual.ForceDestroy = desired.ForceDestroy
		state.SetBucket(rc.Addr, actual)
	}
	return nil
}

// refreshDataset returns the current remote object for a dataset tracked in
// state, or nil if it is untracked or has been deleted out-of-band.
func (e *Engine) refreshDataset(ctx context.Context, is *states.ResourceInstance) (*providers.DatasetAttrs, error) {
	if is == nil || is.Dataset == nil {
		return nil, nil
	}
	actual, err := e.Clients.Datasets.Get(ctx, is.Dataset.Project, is.Dataset.DatasetID)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		log.Printf("[WARN] engine: %s no longer exists remotely", is.Addr)
		return nil, nil
	}
	actual.DeleteContentsOnDestroy = is.Dataset.DeleteContentsOnDestroy
	return actual, nil
}

// refreshBucket is the bucket equivalent of refreshDataset.
func (e *Engine) refreshBucket(ctx context.Context, is *states.ResourceInstance) (*providers.BucketAttrs, error) {
	if is == nil || is.Bucket == nil {
		return nil, nil
	}
	actual, err := e.Clients.Buckets.Get(ctx, is.Bucket.Name)
	if err != nil {
		return nil, err
	}
	if actual == nil {
		log.Printf("[WARN] engine: %s no longer exists remotely", is.Addr)
		return nil, nil
	}
	actual.ForceDestroy = is.Bucket.ForceDestroy
	return actual, nil
}

func (e *Engine) writeToState(state *states.State, addr addrs.Resource, obj providers.Object) {
	switch attrs := obj.(type) {
	case *providers.DatasetAttrs:
		state.SetDataset(addr, attrs)
	case *providers.BucketAttrs:
		state.SetBucket(addr, attrs)
	}
}

// instanceObject returns the remote object stored for a resource instance,
// as an interface value that is properly nil when neither kind is set.
func instanceObject(is *states.ResourceInstance) providers.Object {
	if is == nil {
		return nil
	}
	switch {
	case is.Dataset != nil:
		return is.Dataset
	case is.Bucket != nil:
		return is.Bucket
	default:
		return nil
	}
}
