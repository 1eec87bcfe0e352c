// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package statemgr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/addrs"
	"github.com/public-datasets/infractl/internal/providers"
	"github.com/public-datasets/infractl/internal/states"
	"github.com/public-datasets/infractl/internal/states/statefile"
)

func testFilesystem(t *testing.T) *Filesystem {
	t.Helper()
	return NewFilesystem(filepath.Join(t.TempDir(), "infractl.state"))
}

func testState() *states.State {
	state := states.NewState()
	state.SetBucket(
		addrs.Resource{Kind: addrs.Bucket, Name: "rankings"},
		&providers.BucketAttrs{
			Name:     "pub-rankings",
			Project:  "test-project",
			Location: "US",
		},
	)
	state.SetOutputValue("bucket", cty.StringVal("pub-rankings"), false)
	return state
}

func TestFilesystemRefreshStateMissingFile(t *testing.T) {
	mgr := testFilesystem(t)

	if err := mgr.RefreshState(); err != nil {
		t.Fatalf("refresh: %s", err)
	}
	if mgr.State() != nil {
		t.Errorf("state is %#v; want nil for a missing file", mgr.State())
	}
}

func TestFilesystemPersistState(t *testing.T) {
	mgr := testFilesystem(t)
	if err := mgr.RefreshState(); err != nil {
		t.Fatalf("refresh: %s", err)
	}

	if err := mgr.WriteState(testState()); err != nil {
		t.Fatalf("write: %s", err)
	}
	if err := mgr.PersistState(); err != nil {
		t.Fatalf("persist: %s", err)
	}

	f, err := os.Open(mgr.Path())
	if err != nil {
		t.Fatalf("state file was not created: %s", err)
	}
	defer f.Close()

	sf, err := statefile.Read(f)
	if err != nil {
		t.Fatalf("read back: %s", err)
	}
	if sf.Lineage == "" {
		t.Error("no lineage was assigned")
	}
	if got, want := sf.Serial, uint64(1); got != want {
		t.Errorf("wrong serial %d; want %d", got, want)
	}
	if !sf.State.Equal(testState()) {
		t.Errorf("wrong state read back: %#v", sf.State)
	}
}

func TestFilesystemSerialOnlyIncrementsOnChange(t *testing.T) {
	mgr := testFilesystem(t)
	if err := mgr.RefreshState(); err != nil {
		t.Fatalf("refresh: %s", err)
	}
	if err := mgr.WriteState(testState()); err != nil {
		t.Fatalf("write: %s", err)
	}
	if err := mgr.PersistState(); err != nil {
		t.Fatalf("persist: %s", err)
	}

	readSerial := func() uint64 {
		t.Helper()
		f, err := os.Open(mgr.Path())
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		sf, err := statefile.Read(f)
		if err != nil {
			t.Fatal(err)
		}
		return sf.Serial
	}

	first := readSerial()

	// A fresh manager simulates a second run against the same file.
	mgr2 := NewFilesystem(mgr.Path())
	if err := mgr2.RefreshState(); err != nil {
		t.Fatalf("second refresh: %s", err)
	}
	if err := mgr2.WriteState(mgr2.State()); err != nil {
		t.Fatalf("second write: %s", err)
	}
	if err := mgr2.PersistState(); err != nil {
		t.Fatalf("second persist: %s", err)
	}
	if got := readSerial(); got != first {
		t.Errorf("serial changed to %d without state changes; want %d", got, first)
	}

	changed := mgr2.State()
	changed.SetOutputValue("extra", cty.StringVal("boop"), false)
	if err := mgr2.WriteState(changed); err != nil {
		t.Fatalf("third write: %s", err)
	}
	if err := mgr2.PersistState(); err != nil {
		t.Fatalf("third persist: %s", err)
	}
	if got, want := readSerial(), first+1; got != want {
		t.Errorf("wrong serial after change %d; want %d", got, want)
	}
}

func TestFilesystemBackup(t *testing.T) {
	mgr := testFilesystem(t)
	backupPath := mgr.Path() + ".backup"

	if err := mgr.RefreshState(); err != nil {
		t.Fatalf("refresh: %s", err)
	}
	if err := mgr.WriteState(testState()); err != nil {
		t.Fatalf("write: %s", err)
	}
	if err := mgr.PersistState(); err != nil {
		t.Fatalf("persist: %s", err)
	}

	// No prior snapshot existed, so no backup is written.
	if _, err := os.Stat(backupPath); !os.IsNotExist(err) {
		t.Fatalf("backup exists after first persist; stat error %v", err)
	}

	// A second run over the existing file must back it up before the
	// first overwrite.
	prior, err := os.ReadFile(mgr.Path())
	if err != nil {
		t.Fatal(err)
	}

	mgr2 := NewFilesystem(mgr.Path())
	if err := mgr2.RefreshState(); err != nil {
		t.Fatalf("second refresh: %s", err)
	}
	changed := mgr2.State()
	changed.RemoveOutputValue("bucket")
	if err := mgr2.WriteState(changed); err != nil {
		t.Fatalf("second write: %s", err)
	}
	if err := mgr2.PersistState(); err != nil {
		t.Fatalf("second persist: %s", err)
	}

	backup, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("backup was not written: %s", err)
	}
	if string(backup) != string(prior) {
		t.Errorf("backup does not match the pre-overwrite snapshot")
	}
}

func TestFilesystemLock(t *testing.T) {
	mgr := testFilesystem(t)

	info := NewLockInfo()
	info.Operation = "test"

	id, err := mgr.Lock(info)
	if err != nil {
		t.Fatalf("lock: %s", err)
	}
	if id == "" {
		t.Fatal("lock returned empty id")
	}

	// A second manager contending for the same state must fail fast.
	other := NewFilesystem(mgr.Path())
	if _, err := other.Lock(NewLockInfo()); err == nil {
		t.Fatal("second lock succeeded; want held-lock error")
	}

	if err := mgr.Unlock("wrong-id"); err == nil {
		t.Error("unlock with wrong id succeeded")
	}
	if err := mgr.Unlock(id); err != nil {
		t.Fatalf("unlock: %s", err)
	}

	// Once released the lock can be retaken.
	if _, err := other.Lock(NewLockInfo()); err != nil {
		t.Fatalf("relock after unlock: %s", err)
	}
}

func TestLockDisabled(t *testing.T) {
	inner := testFilesystem(t)
	mgr := &LockDisabled{Inner: inner}

	id, err := mgr.Lock(NewLockInfo())
	if err != nil {
		t.Fatalf("lock: %s", err)
	}

	// The inner manager must not have taken a real lock.
	if _, err := os.Stat(inner.lockPath()); !os.IsNotExist(err) {
		t.Errorf("lock file exists; stat error %v", err)
	}

	if err := mgr.Unlock(id); err != nil {
		t.Fatalf("unlock: %s", err)
	}
}
