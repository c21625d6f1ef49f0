package main

import (
	"vahanpulse-backend/cmd/vahanpulse/commands"
	"vahanpulse-backend/lib/telemetry"
	"vahanpulse-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "vahanpulse")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
