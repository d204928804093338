package main

import (
	"context"
	"pgptimes-backend/cmd/pgptimes-cli/commands"
	"pgptimes-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.SetupFromEnv(ctx, "pgptimes-cli")
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}
