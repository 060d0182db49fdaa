package reports

import (
	"context"
	"database/sql"
	"time"

	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/reports/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/reports")

// metric source names used in the snapshot store
const (
	SourceTraffic = "ga4"
	SourceSearch  = "gsc"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// PushSnapshot replaces the metrics of one source for one day. a
// re-run on the same day overwrites rather than duplicating.
func (s Store) PushSnapshot(ctx context.Context, day time.Time, source string, metrics map[string]float64) error {
	ctx, span := tracer.Start(ctx, "PushSnapshot")
	defer span.End()

	span.SetAttributes(attribute.String("source", source))

	dayUnix := timezone.Day(day).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteSnapshotsOn(ctx, db.DeleteSnapshotsOnParams{
		Day:    dayUnix,
		Source: source,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for metric, value := range metrics {
		err = txqry.CreateSnapshot(ctx, db.CreateSnapshotParams{
			Day:    dayUnix,
			Source: source,
			Metric: metric,
			Value:  value,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

type SeriesPoint struct {
	Day   time.Time
	Value float64
}

// PullSeries returns the ordered day series of one metric since a
// cutoff.
func (s Store) PullSeries(ctx context.Context, source, metric string, since time.Time) ([]SeriesPoint, error) {
	ctx, span := tracer.Start(ctx, "PullSeries")
	defer span.End()

	span.SetAttributes(
		attribute.String("source", source),
		attribute.String("metric", metric),
	)

	rows, err := s.qry.GetMetricSeries(ctx, db.GetMetricSeriesParams{
		Source: source,
		Metric: metric,
		Since:  timezone.Day(since).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	points := make([]SeriesPoint, len(rows))
	for i, row := range rows {
		points[i] = SeriesPoint{
			Day:   time.Unix(row.Day, 0).In(timezone.Location),
			Value: row.Value,
		}
	}
	return points, nil
}
