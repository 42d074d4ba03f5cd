package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	ingestapp "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/application/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/scheduler"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/watcher"
	"go.uber.org/zap"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the drop directory and ingest exports as they arrive",
	Long: `Watch queues every export already in the drop directory, then every file
created or rewritten there once it has been quiet for the debounce interval.
Files of one shop are processed one at a time. SIGINT or SIGTERM stops intake
and waits for every queued and running file before the database is closed.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Drop directory (overrides watcher.dir)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.startProfiler(); err != nil {
		return err
	}

	svc, err := a.ingestService(ctx)
	if err != nil {
		return err
	}

	dispatcher, err := scheduler.NewDispatcher(scheduler.DispatcherConfig{
		Workers:   a.cfg.Watcher.Workers,
		QueueSize: a.cfg.Watcher.QueueSize,
	}, svc, a.log)
	if err != nil {
		return err
	}

	dir := a.cfg.Watcher.Dir
	if watchDir != "" {
		dir = watchDir
	}
	w := watcher.New(watcher.Config{
		Dir:       dir,
		Extension: a.cfg.Watcher.Extension,
		Debounce:  a.cfg.Watcher.Debounce,
	}, dispatcher, ingestapp.SourceKey, a.log)

	if err := w.Start(ctx); err != nil {
		return err
	}
	a.log.Info("Watching for order exports", zap.String("dir", dir))

	<-ctx.Done()
	a.log.Info("Shutting down watcher...",
		zap.Int("pending", dispatcher.Pending()),
		zap.Int64("in_flight", dispatcher.InFlight()),
	)

	// Stop returns only after the workers exit, so the deferred Close never
	// runs under an in-flight file.
	warnCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Watcher.DrainWarnAfter)
	defer cancel()
	if err := w.Stop(warnCtx); err != nil {
		a.log.Warn("Watcher stopped with error", zap.Error(err))
		return err
	}

	a.log.Info("Watcher exited gracefully")
	return nil
}
