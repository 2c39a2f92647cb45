package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

func sampleInput() valuation.Input {
	return valuation.Input{
		CompanyName:     "Acme Analytics",
		Stage:           valuation.StageSeriesA,
		ARR:             2,
		MonthlyGrowth:   15,
		TAM:             10,
		GrossMargin:     75,
		NetRetention:    110,
		BurnMultiple:    1,
		TeamStrength:    4,
		Differentiation: 4,
	}
}

func sampleRecord(owner string) Record {
	in := sampleInput()
	return Record{Owner: owner, Input: in, Snapshot: valuation.Compute(in)}
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		BackendMemory: func(t *testing.T) Store { return NewMemoryStore() },
		BackendFile: func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
			require.NoError(t, err)
			return s
		},
		BackendSQLite: func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "valuations.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreCRUD(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { s.Close() })

			created, err := s.Create(ctx, sampleRecord("alice"))
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)
			require.False(t, created.CreatedAt.IsZero())

			got, err := s.Get(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, created.Input, got.Input)
			require.Equal(t, created.Snapshot, got.Snapshot)
			require.True(t, created.CreatedAt.Equal(got.CreatedAt))

			changed := got
			changed.Input.ARR = 4
			changed.Snapshot = valuation.Compute(changed.Input)
			changed.Owner = "mallory"
			updated, err := s.Update(ctx, changed)
			require.NoError(t, err)
			require.Equal(t, 4.0, updated.Input.ARR)
			require.Equal(t, "alice", updated.Owner, "update must not change ownership")

			require.NoError(t, s.Delete(ctx, created.ID))
			_, err = s.Get(ctx, created.ID)
			require.True(t, errors.Is(err, ErrNotFound))
			require.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
		})
	}
}

func TestStoreUpdateMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { s.Close() })
			rec := sampleRecord("alice")
			rec.ID = "missing"
			_, err := s.Update(context.Background(), rec)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreListByOwnerNewestFirst(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { s.Close() })
			clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
			setClock(s, func() time.Time {
				clock = clock.Add(time.Minute)
				return clock
			})

			first, err := s.Create(ctx, sampleRecord("alice"))
			require.NoError(t, err)
			_, err = s.Create(ctx, sampleRecord("bob"))
			require.NoError(t, err)
			second, err := s.Create(ctx, sampleRecord("alice"))
			require.NoError(t, err)

			list, err := s.ListByOwner(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, list, 2)
			require.Equal(t, second.ID, list[0].ID)
			require.Equal(t, first.ID, list[1].ID)

			none, err := s.ListByOwner(ctx, "carol")
			require.NoError(t, err)
			require.Empty(t, none)
		})
	}
}

func TestStoreShareTokens(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { s.Close() })

			rec, err := s.Create(ctx, sampleRecord("alice"))
			require.NoError(t, err)

			_, err = s.GetByShareToken(ctx, "")
			require.ErrorIs(t, err, ErrNotFound)

			token := NewShareToken()
			require.Len(t, token, 32)
			require.NoError(t, s.SetShareToken(ctx, rec.ID, token))

			shared, err := s.GetByShareToken(ctx, token)
			require.NoError(t, err)
			require.Equal(t, rec.ID, shared.ID)

			replacement := NewShareToken()
			require.NoError(t, s.SetShareToken(ctx, rec.ID, replacement))
			_, err = s.GetByShareToken(ctx, token)
			require.ErrorIs(t, err, ErrNotFound, "old token must stop resolving")

			require.ErrorIs(t, s.SetShareToken(ctx, "missing", token), ErrNotFound)
		})
	}
}

func TestPersistentBackendsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reopen := map[string]func() (Store, error){
		BackendFile:   func() (Store, error) { return NewFileStore(filepath.Join(dir, "state.json")) },
		BackendSQLite: func() (Store, error) { return NewSQLiteStore(filepath.Join(dir, "valuations.db")) },
	}
	for name, open := range reopen {
		t.Run(name, func(t *testing.T) {
			s1, err := open()
			require.NoError(t, err)
			rec, err := s1.Create(ctx, sampleRecord("alice"))
			require.NoError(t, err)
			require.NoError(t, s1.Close())

			s2, err := open()
			require.NoError(t, err)
			t.Cleanup(func() { s2.Close() })
			got, err := s2.Get(ctx, rec.ID)
			require.NoError(t, err)
			require.NoError(t, Verify(got, valuation.DefaultProfiles), "reloaded record must reproduce its snapshot")
		})
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	rec := sampleRecord("alice")
	require.NoError(t, Verify(rec, valuation.DefaultProfiles))

	rec.Snapshot.Base += 1
	require.ErrorIs(t, Verify(rec, valuation.DefaultProfiles), ErrIntegrity)

	rec = sampleRecord("alice")
	rec.Input.Stage = "seriesZ"
	require.ErrorIs(t, Verify(rec, valuation.DefaultProfiles), ErrIntegrity)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("postgres", "", "")
	require.Error(t, err)
}

func setClock(s Store, now func() time.Time) {
	switch v := s.(type) {
	case *MemoryStore:
		v.now = now
	case *FileStore:
		v.inner.now = now
	case *SQLiteStore:
		v.now = now
	}
}

func TestCreateIgnoresCallerID(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			t.Cleanup(func() { s.Close() })

			rec := sampleRecord("alice")
			rec.ID = "fixed"
			first, err := s.Create(ctx, rec)
			require.NoError(t, err)
			second, err := s.Create(ctx, rec)
			require.NoError(t, err)

			require.NotEqual(t, "fixed", first.ID)
			require.NotEqual(t, first.ID, second.ID)
			list, err := s.ListByOwner(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, list, 2)
		})
	}
}

func TestFileStoreRollsBackWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	kept, err := s.Create(ctx, sampleRecord("alice"))
	require.NoError(t, err)

	// A directory at the temp path makes every write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	rec, err := s.Create(ctx, sampleRecord("alice"))
	require.Error(t, err)
	require.Equal(t, Record{}, rec)
	list, err := s.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	changed := kept
	changed.Input.ARR = 8
	changed.Snapshot = valuation.Compute(changed.Input)
	rec, err = s.Update(ctx, changed)
	require.Error(t, err)
	require.Equal(t, Record{}, rec)
	got, err := s.Get(ctx, kept.ID)
	require.NoError(t, err)
	require.Equal(t, kept, got)

	require.Error(t, s.SetShareToken(ctx, kept.ID, NewShareToken()))
	got, err = s.Get(ctx, kept.ID)
	require.NoError(t, err)
	require.Empty(t, got.ShareToken)

	require.Error(t, s.Delete(ctx, kept.ID))
	_, err = s.Get(ctx, kept.ID)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path+".tmp"))
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err = reopened.Get(ctx, kept.ID)
	require.NoError(t, err)
	require.Equal(t, kept.Snapshot, got.Snapshot)
	list, err = reopened.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
}
