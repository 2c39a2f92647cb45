package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS valuations (
	id          TEXT PRIMARY KEY,
	owner       TEXT NOT NULL,
	input       TEXT NOT NULL,
	snapshot    TEXT NOT NULL,
	share_token TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS valuations_owner_idx ON valuations (owner, created_at);
CREATE INDEX IF NOT EXISTS valuations_share_idx ON valuations (share_token);
`

type valuationRow struct {
	ID         string `db:"id"`
	Owner      string `db:"owner"`
	Input      string `db:"input"`
	Snapshot   string `db:"snapshot"`
	ShareToken string `db:"share_token"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

// SQLiteStore persists records in a single SQLite table. Input and snapshot
// are stored as JSON so a reload reproduces them bit for bit.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, rec Record) (Record, error) {
	rec = prepareCreate(rec, s.now())
	row, err := toRow(rec)
	if err != nil {
		return Record{}, err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO valuations (id, owner, input, snapshot, share_token, created_at, updated_at)
		VALUES (:id, :owner, :input, :snapshot, :share_token, :created_at, :updated_at)`, row)
	if err != nil {
		return Record{}, fmt.Errorf("insert valuation: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	var row valuationRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM valuations WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get valuation: %w", err)
	}
	return fromRow(row)
}

func (s *SQLiteStore) Update(ctx context.Context, rec Record) (Record, error) {
	input, err := json.Marshal(rec.Input)
	if err != nil {
		return Record{}, fmt.Errorf("encode input: %w", err)
	}
	snapshot, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return Record{}, fmt.Errorf("encode snapshot: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE valuations SET input = ?, snapshot = ?, updated_at = ? WHERE id = ?",
		string(input), string(snapshot), s.now().Format(time.RFC3339Nano), rec.ID)
	if err != nil {
		return Record{}, fmt.Errorf("update valuation: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return Record{}, err
	}
	return s.Get(ctx, rec.ID)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM valuations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete valuation: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	var rows []valuationRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM valuations WHERE owner = ?", owner); err != nil {
		return nil, fmt.Errorf("list valuations: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *SQLiteStore) SetShareToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE valuations SET share_token = ? WHERE id = ?", token, id)
	if err != nil {
		return fmt.Errorf("set share token: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) GetByShareToken(ctx context.Context, token string) (Record, error) {
	if token == "" {
		return Record{}, ErrNotFound
	}
	var row valuationRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM valuations WHERE share_token = ?", token)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get shared valuation: %w", err)
	}
	return fromRow(row)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toRow(rec Record) (valuationRow, error) {
	input, err := json.Marshal(rec.Input)
	if err != nil {
		return valuationRow{}, fmt.Errorf("encode input: %w", err)
	}
	snapshot, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return valuationRow{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return valuationRow{
		ID:         rec.ID,
		Owner:      rec.Owner,
		Input:      string(input),
		Snapshot:   string(snapshot),
		ShareToken: rec.ShareToken,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

func fromRow(row valuationRow) (Record, error) {
	rec := Record{ID: row.ID, Owner: row.Owner, ShareToken: row.ShareToken}
	if err := json.Unmarshal([]byte(row.Input), &rec.Input); err != nil {
		return Record{}, fmt.Errorf("decode input %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Snapshot), &rec.Snapshot); err != nil {
		return Record{}, fmt.Errorf("decode snapshot %s: %w", row.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, row.CreatedAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, row.UpdatedAt)
	return rec, nil
}
