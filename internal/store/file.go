package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileState struct {
	Records map[string]Record `json:"records"`
}

// FileStore keeps records in memory and rewrites a JSON state file after
// every mutation. A mutation that cannot be written is rolled back in memory.
type FileStore struct {
	inner *MemoryStore
	path  string
	mu    sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{inner: NewMemoryStore(), path: path}
	state, err := loadState(path)
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", path, err)
	}
	fs.inner.records = state.Records
	return fs, nil
}

func (f *FileStore) Create(ctx context.Context, rec Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, err := f.inner.Create(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	if err := f.persist(); err != nil {
		f.inner.restore(out.ID, Record{}, false)
		return Record{}, err
	}
	return out, nil
}

func (f *FileStore) Get(ctx context.Context, id string) (Record, error) {
	return f.inner.Get(ctx, id)
}

func (f *FileStore) Update(ctx context.Context, rec Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, existed := f.inner.lookup(rec.ID)
	out, err := f.inner.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	if err := f.persist(); err != nil {
		f.inner.restore(rec.ID, prev, existed)
		return Record{}, err
	}
	return out, nil
}

func (f *FileStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, existed := f.inner.lookup(id)
	if err := f.inner.Delete(ctx, id); err != nil {
		return err
	}
	if err := f.persist(); err != nil {
		f.inner.restore(id, prev, existed)
		return err
	}
	return nil
}

func (f *FileStore) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	return f.inner.ListByOwner(ctx, owner)
}

func (f *FileStore) SetShareToken(ctx context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, existed := f.inner.lookup(id)
	if err := f.inner.SetShareToken(ctx, id, token); err != nil {
		return err
	}
	if err := f.persist(); err != nil {
		f.inner.restore(id, prev, existed)
		return err
	}
	return nil
}

func (f *FileStore) GetByShareToken(ctx context.Context, token string) (Record, error) {
	return f.inner.GetByShareToken(ctx, token)
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persist()
}

func (f *FileStore) persist() error {
	f.inner.mu.RLock()
	state := fileState{Records: make(map[string]Record, len(f.inner.records))}
	for id, rec := range f.inner.records {
		state.Records[id] = rec
	}
	f.inner.mu.RUnlock()
	if err := saveState(f.path, state); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func loadState(path string) (fileState, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{Records: map[string]Record{}}, nil
		}
		return fileState{}, err
	}
	var state fileState
	if err := json.Unmarshal(blob, &state); err != nil {
		return fileState{}, err
	}
	if state.Records == nil {
		state.Records = map[string]Record{}
	}
	return state, nil
}

func saveState(path string, state fileState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
