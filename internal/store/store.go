package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

var (
	ErrNotFound  = errors.New("valuation not found")
	ErrIntegrity = errors.New("stored snapshot does not match recomputed valuation")
)

// Record is a saved valuation: the caller's input and the snapshot computed from it.
type Record struct {
	ID         string             `json:"id"`
	Owner      string             `json:"owner"`
	Input      valuation.Input    `json:"input"`
	Snapshot   valuation.Snapshot `json:"snapshot"`
	ShareToken string             `json:"share_token,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, owner string) ([]Record, error)
	SetShareToken(ctx context.Context, id, token string) error
	GetByShareToken(ctx context.Context, token string) (Record, error)
	Close() error
}

// Verify recomputes the stored input and reports ErrIntegrity when the
// stored snapshot differs from the fresh computation.
func Verify(rec Record, profiles valuation.StageProfiles) error {
	if _, ok := profiles[rec.Input.Stage]; !ok {
		return fmt.Errorf("%w: unknown stage %q", ErrIntegrity, rec.Input.Stage)
	}
	if got := valuation.ComputeValuation(rec.Input, profiles); got != rec.Snapshot {
		return fmt.Errorf("%w: record %s", ErrIntegrity, rec.ID)
	}
	return nil
}

func NewID() string {
	return uuid.NewString()
}

func NewShareToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// prepareCreate assigns a fresh ID and the timestamps for a new record. Any
// caller-supplied ID is replaced so no backend can overwrite an existing record.
func prepareCreate(rec Record, now time.Time) Record {
	rec.ID = NewID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the store for a configured backend.
func Open(backend, dbPath, statePath string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(statePath)
	case BackendSQLite:
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
