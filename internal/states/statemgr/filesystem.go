// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package statemgr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/public-datasets/infractl/internal/states"
	"github.com/public-datasets/infractl/internal/states/statefile"
)

// Filesystem is a state manager that uses a file on local disk for
// persistent storage.
type Filesystem struct {
	// path is the location where a file will be created or replaced for
	// each persistent snapshot.
	path string

	// backupPath is an optional extra path which, if non-empty, will be
	// created or overwritten with the first snapshot we read, before
	// anything is written back to path.
	backupPath string

	// the file handle corresponding to the lock file, while held
	lockFile *os.File

	// the lock id returned by Lock, while held
	lockID string

	// The backup file should only be written once.
	writtenBackup bool

	// the most recently read or written snapshot metadata
	file *statefile.File

	// the most recently read snapshot, to decide whether a new snapshot
	// needs a serial increment
	readFile *statefile.File

	// the in-memory state last given to WriteState
	state *states.State
}

var _ Full = (*Filesystem)(nil)

// NewFilesystem creates a filesystem-based state manager that reads and
// writes state in the given file, and writes a backup of any pre-existing
// snapshot to the same path with a ".backup" suffix before first replacing
// it.
func NewFilesystem(statePath string) *Filesystem {
	return &Filesystem{
		path:       statePath,
		backupPath: statePath + ".backup",
	}
}

// Path returns the path of the state file managed by the receiver.
func (s *Filesystem) Path() string {
	return s.path
}

// State is an implementation of Transient.
func (s *Filesystem) State() *states.State {
	return s.state.DeepCopy()
}

// WriteState is an implementation of Transient.
func (s *Filesystem) WriteState(state *states.State) error {
	s.state = state.DeepCopy()
	return nil
}

// RefreshState is an implementation of Persistent.
func (s *Filesystem) RefreshState() error {
	log.Printf("[TRACE] statemgr.Filesystem: reading latest snapshot from %s", s.path)

	f, err := os.Open(s.path)
	if err != nil {
		// It is okay if the file doesn't exist; we'll treat that as an
		// empty (nil) state and create the file on first persist.
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to open state file %s: %w", s.path, err)
		}

		log.Printf("[TRACE] statemgr.Filesystem: snapshot file %s does not exist", s.path)
		s.file = nil
		s.readFile = nil
		s.state = nil
		return nil
	}
	defer f.Close()

	sf, err := statefile.Read(f)
	if err != nil {
		if errors.Is(err, statefile.ErrNoState) {
			// An empty file is treated the same as a missing file.
			s.file = nil
			s.readFile = nil
			s.state = nil
			return nil
		}
		return fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	s.file = sf
	s.readFile = sf.DeepCopy()
	s.state = sf.State.DeepCopy()
	return nil
}

// PersistState is an implementation of Persistent.
func (s *Filesystem) PersistState() error {
	if s.state == nil {
		// A nil state means nothing was written since the last refresh;
		// there is nothing to persist.
		return nil
	}

	if s.file == nil {
		s.file = statefile.New(nil, NewLineage(), 0)
		log.Printf("[TRACE] statemgr.Filesystem: created new snapshot lineage %s", s.file.Lineage)
	}

	if err := s.writeBackup(); err != nil {
		return err
	}

	s.file.State = s.state.DeepCopy()

	if s.readFile == nil || !s.file.State.Equal(s.readFile.State) {
		s.file.Serial++
		log.Printf("[TRACE] statemgr.Filesystem: state has changed since last snapshot, so incrementing serial to %d", s.file.Serial)
	} else {
		log.Printf("[TRACE] statemgr.Filesystem: no state changes since last snapshot")
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create state file %s: %w", s.path, err)
	}
	defer f.Close()

	log.Printf("[TRACE] statemgr.Filesystem: writing snapshot at %s", s.path)
	if err := statefile.Write(s.file, f); err != nil {
		return err
	}

	// The just-written snapshot becomes the baseline for the next
	// persist's change detection.
	s.readFile = s.file.DeepCopy()
	return nil
}

// writeBackup preserves the existing on-disk snapshot, if any, before we
// overwrite it for the first time in this manager's lifetime.
func (s *Filesystem) writeBackup() error {
	if s.writtenBackup || s.backupPath == "" {
		return nil
	}

	src, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Nothing to back up.
			s.writtenBackup = true
			return nil
		}
		return fmt.Errorf("failed to open state file for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(s.backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file %s: %w", s.backupPath, err)
	}
	defer dst.Close()

	log.Printf("[TRACE] statemgr.Filesystem: backing up previous snapshot to %s", s.backupPath)
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write backup file %s: %w", s.backupPath, err)
	}

	s.writtenBackup = true
	return nil
}

// Lock implements Locker using a lock file beside the state file. The lock
// file is created exclusively, so a second concurrent operation fails fast
// with the information recorded by the current holder.
func (s *Filesystem) Lock(info *LockInfo) (string, error) {
	if s.lockFile != nil {
		return "", fmt.Errorf("state %q already locked", s.path)
	}

	lockPath := s.lockPath()
	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", s.heldLockError(lockPath)
		}
		return "", fmt.Errorf("failed to create lock file %s: %w", lockPath, err)
	}

	info.Path = s.path
	if _, err := f.Write(info.Marshal()); err != nil {
		f.Close()
		os.Remove(lockPath)
		return "", fmt.Errorf("failed to write lock metadata: %w", err)
	}

	s.lockFile = f
	s.lockID = info.ID
	return info.ID, nil
}

// Unlock implements Locker.
func (s *Filesystem) Unlock(id string) error {
	if s.lockFile == nil {
		return fmt.Errorf("state %q is not locked", s.path)
	}
	if s.lockID != id {
		return fmt.Errorf("lock id %q does not match existing lock", id)
	}

	s.lockFile.Close()
	if err := os.Remove(s.lockPath()); err != nil {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	s.lockFile = nil
	s.lockID = ""
	return nil
}

func (s *Filesystem) lockPath() string {
	dir, file := filepath.Split(s.path)
	return filepath.Join(dir, "."+file+".lock")
}

// heldLockError builds the error reported when the lock file already
// exists, including the holder's metadata when it can be read.
func (s *Filesystem) heldLockError(lockPath string) error {
	info := &LockInfo{Path: s.path}

	src, err := os.ReadFile(lockPath)
	if err == nil {
		// Ignore unmarshal errors; a partially-written lock file still
		// means someone else holds the lock.
		_ = json.Unmarshal(src, info)
	}

	return info.Err()
}
