package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/flowstat/flowstat"
	"github.com/flowstat/flowstat/httpexport"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the aggregator and serve Meters snapshots over HTTP",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("listen-addr", ":9110", "HTTP listen address for /vars, /metrics, and JSON snapshots")
	runCmd.Flags().Int("duration", 1, "window length in seconds")
	runCmd.Flags().Int("windows", 60, "windows per run before save_files and, in service mode, roll-over")
	runCmd.Flags().Int("capacity", 64, "data/control channel and buffer pool depth, in batches")
	runCmd.Flags().Int("batch-size", 256, "samples per batch buffer")
	runCmd.Flags().Int("max-tau", 32, "maximum Allan deviation lag tracked")
	runCmd.Flags().Float64("sample-rate", 1, "scales ValuePercentile Meters output")
	runCmd.Flags().Bool("service-mode", true, "repeat runs indefinitely instead of terminating after one")
	runCmd.Flags().Duration("poll-delay", 100*time.Millisecond, "upper bound on the receiver's per-poll block")
	runCmd.Flags().String("trace-file", "flowstat.trace", "default path for *Trace interests registered with no path")
	runCmd.Flags().String("waterfall-file", "flowstat.png", "default path for *Waterfall interests registered with no path")
	runCmd.Flags().Int64("histogram-max-value", 1<<32, "upper bound for value histograms")
	runCmd.Flags().Int64("heatmap-max-value", 1<<32, "upper bound for heatmap per-slice histograms")

	for _, name := range []string{
		"listen-addr", "duration", "windows", "capacity", "batch-size", "max-tau",
		"sample-rate", "service-mode", "poll-delay", "trace-file", "waterfall-file",
		"histogram-max-value", "heatmap-max-value",
	} {
		viper.BindPFlag(name, runCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := flowstat.NewConfig(
		flowstat.WithDuration(viper.GetInt("duration")),
		flowstat.WithWindows(viper.GetInt("windows")),
		flowstat.WithCapacity(viper.GetInt("capacity")),
		flowstat.WithBatchSize(viper.GetInt("batch-size")),
		flowstat.WithMaxTau(viper.GetInt("max-tau")),
		flowstat.WithSampleRate(viper.GetFloat64("sample-rate")),
		flowstat.WithServiceMode(viper.GetBool("service-mode")),
		flowstat.WithPollDelay(viper.GetDuration("poll-delay")),
		flowstat.WithTraceFile(viper.GetString("trace-file")),
		flowstat.WithWaterfallFile(viper.GetString("waterfall-file")),
		flowstat.WithHistogramMaxValue(viper.GetInt64("histogram-max-value")),
		flowstat.WithHeatmapMaxValue(viper.GetInt64("heatmap-max-value")),
	)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	receiver := flowstat.NewReceiver[flowstat.StringLabel](cfg, flowstat.WithLogger(log))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    viper.GetString("listen-addr"),
		Handler: httpexport.NewHandler[flowstat.StringLabel](receiver.NewController()),
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	runErr := make(chan error, 1)
	go func() { runErr <- receiver.Run(ctx) }()

	log.Info("flowstatd running", zap.String("listen_addr", srv.Addr))

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
		}
		receiver.Shutdown()
		stop()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	receiver.Shutdown()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("receiver run failed", zap.Error(err))
		return err
	}
	return nil
}
