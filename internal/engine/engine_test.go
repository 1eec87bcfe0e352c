// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/configs"
	"github.com/public-datasets/infractl/internal/plans"
	"github.com/public-datasets/infractl/internal/providers"
	"github.com/public-datasets/infractl/internal/states"
)

const testStackSrc = `
variable "project_id" {
  type = string
}

variable "bucket_name_prefix" {
  type = string
}

dataset "america_health_rankings" {
  dataset_id  = "america_health_rankings"
  project     = var.project_id
  description = "America Health Rankings"
}

bucket "america_health_rankings" {
  name          = "${var.bucket_name_prefix}-america-health-rankings"
  project       = var.project_id
  location      = "US"
  force_destroy = true

  uniform_bucket_level_access = true
}

output "bigquery_dataset" {
  value = dataset.america_health_rankings.dataset_id
}

output "storage_bucket" {
  value = bucket.america_health_rankings.name
}
`

func testStack(t *testing.T, src string) *configs.Stack {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "stack/main.pd.hcl", []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	stack, diags := configs.NewParser(fs).LoadStackDir("stack")
	if diags.HasErrors() {
		t.Fatalf("unexpected config errors: %s", diags.Error())
	}
	return stack
}

func testVars(t *testing.T, stack *configs.Stack) InputValues {
	t.Helper()

	vars, diags := ResolveVariables(stack, map[string]cty.Value{
		"project_id":         cty.StringVal("test-project"),
		"bucket_name_prefix": cty.StringVal("pub"),
	})
	if diags.HasErrors() {
		t.Fatalf("unexpected variable errors: %s", diags.Err())
	}
	return vars
}

type datasetDelete struct {
	Project        string
	DatasetID      string
	DeleteContents bool
}

type fakeDatasetAPI struct {
	objects map[string]*providers.DatasetAttrs
	deletes []datasetDelete
}

func newFakeDatasetAPI() *fakeDatasetAPI {
	return &fakeDatasetAPI{objects: map[string]*providers.DatasetAttrs{}}
}

func datasetKey(project, datasetID string) string {
	return project + "/" + datasetID
}

func (f *fakeDatasetAPI) Get(_ context.Context, project, datasetID string) (*providers.DatasetAttrs, error) {
	o, ok := f.objects[datasetKey(project, datasetID)]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeDatasetAPI) Create(_ context.Context, attrs *providers.DatasetAttrs) error {
	key := datasetKey(attrs.Project, attrs.DatasetID)
	if _, exists := f.objects[key]; exists {
		return fmt.Errorf("dataset %s already exists", attrs.ID())
	}
	cp := *attrs
	f.objects[key] = &cp
	return nil
}

func (f *fakeDatasetAPI) Update(_ context.Context, attrs *providers.DatasetAttrs) error {
	key := datasetKey(attrs.Project, attrs.DatasetID)
	if _, exists := f.objects[key]; !exists {
		return fmt.Errorf("dataset %s not found", attrs.ID())
	}
	cp := *attrs
	f.objects[key] = &cp
	return nil
}

func (f *fakeDatasetAPI) Delete(_ context.Context, project, datasetID string, deleteContents bool) error {
	delete(f.objects, datasetKey(project, datasetID))
	f.deletes = append(f.deletes, datasetDelete{project, datasetID, deleteContents})
	return nil
}

type bucketDelete struct {
	Name         string
	ForceDestroy bool
}

type fakeBucketAPI struct {
	buckets     map[string]*providers.BucketAttrs
	objectCount map[string]int
	deletes     []bucketDelete
}

func newFakeBucketAPI() *fakeBucketAPI {
	return &fakeBucketAPI{
		buckets:     map[string]*providers.BucketAttrs{},
		objectCount: map[string]int{},
	}
}

func (f *fakeBucketAPI) Get(_ context.Context, name string) (*providers.BucketAttrs, error) {
	b, ok := f.buckets[name]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBucketAPI) Create(_ context.Context, attrs *providers.BucketAttrs) error {
	if _, exists := f.buckets[attrs.Name]; exists {
		return fmt.Errorf("bucket %q already exists", attrs.Name)
	}
	cp := *attrs
	f.buckets[attrs.Name] = &cp
	return nil
}

func (f *fakeBucketAPI) Update(_ context.Context, attrs *providers.BucketAttrs) error {
	if _, exists := f.buckets[attrs.Name]; !exists {
		return fmt.Errorf("bucket %q not found", attrs.Name)
	}
	cp := *attrs
	f.buckets[attrs.Name] = &cp
	return nil
}

func (f *fakeBucketAPI) Delete(_ context.Context, name string, forceDestroy bool) error {
	f.deletes = append(f.deletes, bucketDelete{name, forceDestroy})
	if f.objectCount[name] > 0 && !forceDestroy {
		return fmt.Errorf("bucket %q is not empty", name)
	}
	delete(f.buckets, name)
	delete(f.objectCount, name)
	return nil
}

func testEngine() (*Engine, *fakeDatasetAPI, *fakeBucketAPI) {
	fd := newFakeDatasetAPI()
	fb := newFakeBucketAPI()
	eng := &Engine{
		Clients: providers.Clients{Datasets: fd, Buckets: fb},
	}
	return eng, fd, fb
}

func TestEnginePlanCreate(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, _, _ := testEngine()

	plan, diags := eng.Plan(context.Background(), stack, vars, states.NewState(), plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Err())
	}

	if got, want := len(plan.Changes), 2; got != want {
		t.Fatalf("wrong number of changes %d; want %d", got, want)
	}
	for _, rc := range plan.Changes {
		if rc.Action != plans.Create {
			t.Errorf("%s has action %s; want %s", rc.Addr, rc.Action, plans.Create)
		}
	}

	bucketChange := plan.Change(addrs.Resource{Kind: addrs.Bucket, Name: "america_health_rankings"})
	if bucketChange == nil {
		t.Fatal("no planned change for the bucket")
	}
	bucket := bucketChange.After.(*providers.BucketAttrs)
	want := &providers.BucketAttrs{
		Name:                     "pub-america-health-rankings",
		Project:                  "test-project",
		Location:                 "US",
		StorageClass:             "STANDARD",
		ForceDestroy:             true,
		UniformBucketLevelAccess: true,
	}
	if diff := cmp.Diff(want, bucket); diff != "" {
		t.Errorf("wrong desired bucket\n%s", diff)
	}

	// Outputs must already resolve from the desired objects during plan.
	if got, want := plan.PlannedOutputs["storage_bucket"], cty.StringVal("pub-america-health-rankings"); !want.RawEquals(got) {
		t.Errorf("wrong planned storage_bucket output %#v; want %#v", got, want)
	}
}

func TestEngineApplyThenPlanIsEmpty(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, _, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	// Re-planning with unchanged inputs must produce no work.
	plan, diags = eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("second plan: %s", diags.Err())
	}
	if !plan.Empty() {
		t.Errorf("second plan is not empty: %d changes, action counts %v", len(plan.Changes), plan.ActionCounts())
	}
}

func TestEngineApplyResolvesOutputs(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, _, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	tests := map[string]cty.Value{
		"bigquery_dataset": cty.StringVal("america_health_rankings"),
		"storage_bucket":   cty.StringVal("pub-america-health-rankings"),
	}
	for name, want := range tests {
		ov := state.Outputs[name]
		if ov == nil {
			t.Errorf("output %q was not recorded", name)
			continue
		}
		if !want.RawEquals(ov.Value) {
			t.Errorf("wrong value for output %q\ngot:  %#v\nwant: %#v", name, ov.Value, want)
		}
	}
}

func TestEngineDestroyForceDeletesNonEmptyBucket(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, _, fb := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	// Fill the bucket so a plain delete would fail.
	fb.objectCount["pub-america-health-rankings"] = 3

	plan, diags = eng.Plan(ctx, stack, vars, state, plans.DestroyMode)
	if diags.HasErrors() {
		t.Fatalf("destroy plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("destroy apply: %s", diags.Err())
	}

	if len(fb.deletes) != 1 || !fb.deletes[0].ForceDestroy {
		t.Fatalf("wrong bucket delete calls %#v; want one forced delete", fb.deletes)
	}
	if !state.Empty() {
		t.Errorf("state is not empty after destroy: %#v", state)
	}
	if len(state.Outputs) != 0 {
		t.Errorf("outputs were not cleared on destroy: %#v", state.Outputs)
	}
}

func TestEngineUpdateInPlace(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, fd, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	changed := testStack(t, strings.ReplaceAll(testStackSrc,
		`description = "America Health Rankings"`,
		`description = "United Health Foundation rankings"`,
	))

	plan, diags = eng.Plan(ctx, changed, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("second plan: %s", diags.Err())
	}

	dsAddr := addrs.Resource{Kind: addrs.Dataset, Name: "america_health_rankings"}
	rc := plan.Change(dsAddr)
	if rc == nil || rc.Action != plans.Update {
		t.Fatalf("dataset change is %#v; want an update", rc)
	}

	if diags := eng.Apply(ctx, changed, vars, plan, state); diags.HasErrors() {
		t.Fatalf("second apply: %s", diags.Err())
	}
	got := fd.objects[datasetKey("test-project", "america_health_rankings")]
	if got == nil || got.Description != "United Health Foundation rankings" {
		t.Errorf("remote dataset was not updated: %#v", got)
	}
}

func TestEngineLocationChangeReplaces(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, _, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	changed := testStack(t, strings.ReplaceAll(testStackSrc,
		`location      = "US"`,
		`location      = "EU"`,
	))

	plan, diags = eng.Plan(ctx, changed, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("second plan: %s", diags.Err())
	}

	rc := plan.Change(addrs.Resource{Kind: addrs.Bucket, Name: "america_health_rankings"})
	if rc == nil || rc.Action != plans.DeleteThenCreate {
		t.Fatalf("bucket change is %#v; want delete-then-create", rc)
	}
	if rc.ActionReason == "" {
		t.Error("replacement has no action reason")
	}
}

func TestEnginePlanRemovesOrphans(t *testing.T) {
	stack := testStack(t, testStackSrc)
	vars := testVars(t, stack)
	eng, fd, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	plan, diags := eng.Plan(ctx, stack, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, stack, vars, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	// Drop the dataset from the configuration; it must be planned for
	// deletion even though the remote object still exists.
	withoutDataset := testStack(t, `
variable "project_id" {
  type = string
}

variable "bucket_name_prefix" {
  type = string
}

bucket "america_health_rankings" {
  name          = "${var.bucket_name_prefix}-america-health-rankings"
  project       = var.project_id
  location      = "US"
  force_destroy = true

  uniform_bucket_level_access = true
}
`)

	plan, diags = eng.Plan(ctx, withoutDataset, vars, state, plans.NormalMode)
	if diags.HasErrors() {
		t.Fatalf("second plan: %s", diags.Err())
	}

	dsAddr := addrs.Resource{Kind: addrs.Dataset, Name: "america_health_rankings"}
	rc := plan.Change(dsAddr)
	if rc == nil || rc.Action != plans.Delete {
		t.Fatalf("dataset change is %#v; want a delete", rc)
	}

	if diags := eng.Apply(ctx, withoutDataset, vars, plan, state); diags.HasErrors() {
		t.Fatalf("second apply: %s", diags.Err())
	}
	if len(fd.objects) != 0 {
		t.Errorf("remote dataset still exists: %#v", fd.objects)
	}
	if state.Resource(dsAddr) != nil {
		t.Errorf("orphaned dataset still tracked in state")
	}
}

func TestEngineDestroyUsesStateFlags(t *testing.T) {
	// A destroy must honor the flags recorded in state, not the (possibly
	// missing) configuration.
	eng, fd, _ := testEngine()
	state := states.NewState()
	ctx := context.Background()

	dsAddr := addrs.Resource{Kind: addrs.Dataset, Name: "raw"}
	attrs := &providers.DatasetAttrs{
		Project:                 "test-project",
		DatasetID:               "raw",
		Location:                "US",
		DeleteContentsOnDestroy: true,
	}
	if err := fd.Create(ctx, attrs); err != nil {
		t.Fatal(err)
	}
	state.SetDataset(dsAddr, attrs)

	emptyStack := testStack(t, ``)

	plan, diags := eng.Plan(ctx, emptyStack, InputValues{}, state, plans.DestroyMode)
	if diags.HasErrors() {
		t.Fatalf("plan: %s", diags.Err())
	}
	if diags := eng.Apply(ctx, emptyStack, InputValues{}, plan, state); diags.HasErrors() {
		t.Fatalf("apply: %s", diags.Err())
	}

	want := []datasetDelete{{"test-project", "raw", true}}
	if diff := cmp.Diff(want, fd.deletes); diff != "" {
		t.Errorf("wrong delete calls\n%s", diff)
	}
}
