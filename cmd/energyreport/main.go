package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jameshartig/energyreport/pkg/advisor"
	"github.com/jameshartig/energyreport/pkg/homeassistant"
	"github.com/jameshartig/energyreport/pkg/notify"
	"github.com/jameshartig/energyreport/pkg/output"
	"github.com/jameshartig/energyreport/pkg/report"
	"github.com/jameshartig/energyreport/pkg/server"
	"github.com/jameshartig/energyreport/pkg/statistics"
	"github.com/jameshartig/energyreport/pkg/storage"
	"github.com/jameshartig/energyreport/pkg/types"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
)

func main() {
	os.Exit(run())
}

// run wires the service and returns the process exit code. Providers are
// closed before it returns.
func run() int {
	// init packages
	ha := homeassistant.Configured()
	stats := statistics.Configured(ha)
	sink := output.Configured()
	notifier := notify.Configured(ha)
	s := storage.Configured()
	adv := advisor.Configured()

	metrics := report.NewMetrics()
	gen := report.NewGenerator(stats, sink, notifier, s, adv, metrics)

	// init server
	srv := server.Configured(gen, s, metrics.Registry())

	once := lflag.Bool("once", false, "Generate a single report with the stored settings and exit instead of serving HTTP")

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// If initialization inside lflag.Do failed, we wouldn't be here (panic).
	closers := []namedCloser{
		{"statistics provider", stats},
		{"notifier", notifier},
		{"storage", s},
	}
	return serve(ctx, *once, gen, srv, closers)
}

type namedCloser struct {
	name string
	c    io.Closer
}

type runner interface {
	Run(ctx context.Context) error
}

// serve generates a single report when once is set, otherwise runs srv until
// ctx is done. Every closer is closed before it returns the exit code.
func serve(ctx context.Context, once bool, gen server.ReportGenerator, srv runner, closers []namedCloser) int {
	defer func() {
		for _, nc := range closers {
			if err := nc.c.Close(); err != nil {
				slog.Error("failed to close "+nc.name, slog.Any("error", err))
			}
		}
	}()

	if once {
		record, err := gen.Generate(ctx, types.ReportRequest{})
		if err != nil {
			slog.Error("failed to generate report", slog.Any("error", err))
			return 1
		}
		slog.Info("report generated", slog.String("location", record.Location))
		return 0
	}

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		return 1
	}
	slog.Info("server exited cleanly")
	return 0
}
