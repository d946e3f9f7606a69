package commands

import (
	"context"
	"log/slog"
	"os"

	"owstats/lib/serviceutil"
	"owstats/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool, logFile string) {
	if logFile != "" {
		closeLog, err := telemetry.InitSlogFile(verbose, logFile)
		if err != nil {
			serviceutil.Fatal("open log file", err)
		}
		go func() {
			<-ctx.Done()
			closeLog()
		}()
	} else {
		telemetry.InitSlog(verbose)
	}

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "owstats-cli")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)
}
