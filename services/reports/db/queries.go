package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const deleteSnapshotsOn = `
DELETE FROM metric_snapshot WHERE day = ? AND source = ?
`

type DeleteSnapshotsOnParams struct {
	Day    int64
	Source string
}

func (q *Queries) DeleteSnapshotsOn(ctx context.Context, arg DeleteSnapshotsOnParams) error {
	_, err := q.db.ExecContext(ctx, deleteSnapshotsOn, arg.Day, arg.Source)
	return err
}

const createSnapshot = `
INSERT INTO metric_snapshot (day, source, metric, value) VALUES (?, ?, ?, ?)
`

type CreateSnapshotParams struct {
	Day    int64
	Source string
	Metric string
	Value  float64
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshot, arg.Day, arg.Source, arg.Metric, arg.Value)
	return err
}

const getMetricSeries = `
SELECT day, value FROM metric_snapshot
WHERE source = ? AND metric = ? AND day >= ?
ORDER BY day ASC
`

type GetMetricSeriesParams struct {
	Source string
	Metric string
	Since  int64
}

type GetMetricSeriesRow struct {
	Day   int64
	Value float64
}

func (q *Queries) GetMetricSeries(ctx context.Context, arg GetMetricSeriesParams) ([]GetMetricSeriesRow, error) {
	rows, err := q.db.QueryContext(ctx, getMetricSeries, arg.Source, arg.Metric, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GetMetricSeriesRow
	for rows.Next() {
		var row GetMetricSeriesRow
		err := rows.Scan(&row.Day, &row.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

const createGeneratedReport = `
INSERT INTO generated_report (id, created_at, period_days, path) VALUES (?, ?, ?, ?)
`

type CreateGeneratedReportParams struct {
	ID         string
	CreatedAt  int64
	PeriodDays int64
	Path       string
}

func (q *Queries) CreateGeneratedReport(ctx context.Context, arg CreateGeneratedReportParams) error {
	_, err := q.db.ExecContext(ctx, createGeneratedReport, arg.ID, arg.CreatedAt, arg.PeriodDays, arg.Path)
	return err
}

const listGeneratedReports = `
SELECT id, created_at, period_days, path FROM generated_report
ORDER BY created_at DESC
LIMIT ?
`

type ListGeneratedReportsRow struct {
	ID         string
	CreatedAt  int64
	PeriodDays int64
	Path       string
}

func (q *Queries) ListGeneratedReports(ctx context.Context, limit int64) ([]ListGeneratedReportsRow, error) {
	rows, err := q.db.QueryContext(ctx, listGeneratedReports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListGeneratedReportsRow
	for rows.Next() {
		var row ListGeneratedReportsRow
		err := rows.Scan(&row.ID, &row.CreatedAt, &row.PeriodDays, &row.Path)
		if err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
