// Package filerepo stores the session snapshot as a JSON file in the data folder.
package filerepo

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/sessions"
	pkgerrors "github.com/pkg/errors"
)

var _ sessions.SnapshotRepo = (*FileSnapshotRepo)(nil)

type FileSnapshotRepo struct {
	path string
	lock sync.Mutex
}

// New returns a repo writing to folder/fileName. The folder is created on first save.
func New(folder, fileName string) (*FileSnapshotRepo, error) {
	if fileName == "" {
		return nil, pkgerrors.New("[filerepo.New] file name is required")
	}
	return &FileSnapshotRepo{path: filepath.Join(folder, fileName)}, nil
}

func (r *FileSnapshotRepo) Path() string {
	return r.path
}

func (r *FileSnapshotRepo) Load(_ context.Context) (*sessions.Snapshot, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "[FileSnapshotRepo.Load] read %s", r.path)
	}

	var snapshot sessions.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSnapshot, "[FileSnapshotRepo.Load] %s: %v", r.path, err)
	}
	return &snapshot, nil
}

// Save writes to a temporary file and renames it over the snapshot so a
// crash never leaves a half written file behind.
func (r *FileSnapshotRepo) Save(_ context.Context, snapshot *sessions.Snapshot) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] marshal")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] create folder")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] write")
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] close")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return pkgerrors.Wrap(err, "[FileSnapshotRepo.Save] rename")
	}
	return nil
}

func (r *FileSnapshotRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return pkgerrors.Wrapf(err, "[FileSnapshotRepo.Clear] remove %s", r.path)
	}
	return nil
}
