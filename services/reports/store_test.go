package reports

import (
	"context"
	"testing"
	"time"

	"searchlight-backend/lib/testutil"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/reports/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestStore(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/reports",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	today := timezone.Now()
	yesterday := today.AddDate(0, 0, -1)

	{
		series, err := store.PullSeries(ctx, SourceTraffic, "sessions", yesterday.AddDate(0, 0, -30))
		require.NoError(t, err)
		require.Empty(t, series)
	}
	{
		err := store.PushSnapshot(ctx, yesterday, SourceTraffic, map[string]float64{
			"sessions":  1000,
			"pageviews": 2500,
		})
		require.NoError(t, err)

		err = store.PushSnapshot(ctx, today, SourceTraffic, map[string]float64{
			"sessions":  1200,
			"pageviews": 2800,
		})
		require.NoError(t, err)

		// same day again overwrites instead of duplicating
		err = store.PushSnapshot(ctx, today, SourceTraffic, map[string]float64{
			"sessions":  1300,
			"pageviews": 2900,
		})
		require.NoError(t, err)

		// a different source on the same day is untouched
		err = store.PushSnapshot(ctx, today, SourceSearch, map[string]float64{
			"clicks": 340,
		})
		require.NoError(t, err)

		series, err := store.PullSeries(ctx, SourceTraffic, "sessions", yesterday)
		require.NoError(t, err)
		require.Len(t, series, 2)
		require.Equal(t, float64(1000), series[0].Value)
		require.Equal(t, float64(1300), series[1].Value)
		require.True(t, series[0].Day.Before(series[1].Day))

		clicks, err := store.PullSeries(ctx, SourceSearch, "clicks", yesterday)
		require.NoError(t, err)
		require.Len(t, clicks, 1)
	}
	{
		// since cutoff excludes older days
		series, err := store.PullSeries(ctx, SourceTraffic, "sessions", today)
		require.NoError(t, err)
		require.Len(t, series, 1)
		require.Equal(t, float64(1300), series[0].Value)
	}
}
