package main

import (
	"context"

	"searchlight-backend/cmd/searchlight/commands"
	"searchlight-backend/lib/configutil"
	"searchlight-backend/lib/telemetry"
)

func main() {
	configutil.LoadDotenv()
	telemetry.SetupFromEnv(context.Background(), "searchlight")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
