// Package entdriver
package entdriver

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/ent/migrate"
)

// Column names of the sessions table.
const (
	columnID            = "id"
	columnModel         = "model"
	columnUpstreamModel = "upstream_model"
	columnStopReason    = "stop_reason"
	columnOutcome       = "outcome"
	columnOutputTokens  = "output_tokens"
	columnTTFT          = "ttft_ns"
	columnDuration      = "duration_ns"
	columnStartedAt     = "started_at"
	columnCompletedAt   = "completed_at"
	columnError         = "error"
)

var columns = []string{
	columnID,
	columnModel,
	columnUpstreamModel,
	columnStopReason,
	columnOutcome,
	columnOutputTokens,
	columnTTFT,
	columnDuration,
	columnStartedAt,
	columnCompletedAt,
	columnError,
}

// EntDriver provides storage operations over an ent SQL driver. Statements
// are built with the ent dialect builder so the same code serves every
// supported dialect. It can be embedded by specific drivers.
type EntDriver struct {
	Driver *entsql.Driver
}

// New wraps drv and creates the schema if needed.
func New(ctx context.Context, drv *entsql.Driver) (*EntDriver, error) {
	if err := migrate.Create(ctx, drv); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &EntDriver{Driver: drv}, nil
}

// Put stores a record. Returns true if the record was newly inserted,
// false if it already existed.
func (ed *EntDriver) Put(ctx context.Context, rec *session.Record) (bool, error) {
	if rec == nil {
		return false, errors.New("cannot store nil record")
	}

	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Insert(migrate.SessionsTable.Name).
		Columns(columns...).
		Values(
			rec.ID,
			rec.Model,
			rec.UpstreamModel,
			rec.StopReason,
			string(rec.Outcome),
			rec.OutputTokens,
			int64(rec.TTFT),
			int64(rec.Duration),
			toUnixNano(rec.StartedAt),
			toUnixNano(rec.CompletedAt),
			rec.Error,
		).
		OnConflict(entsql.ConflictColumns(columnID), entsql.DoNothing()).
		Query()

	var res stdsql.Result
	if err := ed.Driver.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("could not execute session insert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Get retrieves a record by its message ID.
func (ed *EntDriver) Get(ctx context.Context, id string) (*session.Record, error) {
	query, args := ed.selectRecords().
		Where(entsql.EQ(columnID, id)).
		Query()

	records, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(records) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return records[0], nil
}

// List returns up to limit records, most recently started first.
func (ed *EntDriver) List(ctx context.Context, limit int) ([]*session.Record, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	query, args := ed.selectRecords().
		OrderBy(entsql.Desc(columnStartedAt), columnID).
		Limit(limit).
		Query()

	records, err := ed.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (ed *EntDriver) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(migrate.SessionsTable.Name)).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

func (ed *EntDriver) selectRecords() *entsql.Selector {
	return entsql.Dialect(ed.Driver.Dialect()).
		Select(columns...).
		From(entsql.Table(migrate.SessionsTable.Name))
}

func (ed *EntDriver) query(ctx context.Context, query string, args []any) ([]*session.Record, error) {
	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*session.Record
	for rows.Next() {
		var (
			rec                  session.Record
			outcome              string
			ttft, duration       int64
			startedAt, completed int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Model,
			&rec.UpstreamModel,
			&rec.StopReason,
			&outcome,
			&rec.OutputTokens,
			&ttft,
			&duration,
			&startedAt,
			&completed,
			&rec.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		rec.Outcome = session.Outcome(outcome)
		rec.TTFT = time.Duration(ttft)
		rec.Duration = time.Duration(duration)
		rec.StartedAt = fromUnixNano(startedAt)
		rec.CompletedAt = fromUnixNano(completed)
		records = append(records, &rec)
	}

	return records, rows.Err()
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
