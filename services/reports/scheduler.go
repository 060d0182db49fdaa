package reports

import (
	"context"
	"log/slog"

	"searchlight-backend/lib/timezone"

	"github.com/go-co-op/gocron"
)

// StartScheduler runs the daily snapshot job at the given local time
// (e.g. "06:00") until ctx is cancelled.
func (g *Generator) StartScheduler(ctx context.Context, at string) error {
	if at == "" {
		at = "06:00"
	}

	scheduler := gocron.NewScheduler(timezone.Location)
	_, err := scheduler.Every(1).Day().At(at).Do(func() {
		slog.Info("running scheduled daily snapshot")
		err := g.Daily(ctx)
		if err != nil {
			slog.Error("scheduled daily snapshot failed", "err", err)
			return
		}
		slog.Info("scheduled daily snapshot done")
	})
	if err != nil {
		return err
	}

	scheduler.StartAsync()
	go func() {
		<-ctx.Done()
		scheduler.Stop()
	}()
	return nil
}
