// Command adtree-analyze computes the defense semantics of attack-defense
// trees and prints the per-tree figures.
//
//	adtree-analyze [flags] tree.xml [tree.yaml ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-adtree/pkg/config"
	"github.com/dd0wney/cluso-adtree/pkg/logging"
	"github.com/dd0wney/cluso-adtree/pkg/metrics"
	"github.com/dd0wney/cluso-adtree/pkg/report"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "adtree-analyze: %v\n", err)
		return 2
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.DefaultRegistry()
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		logger.Error("failed to open report sinks", logging.Error(err))
		return 1
	}
	defer closeSinks()

	a := &app{
		cfg:       cfg,
		stdout:    os.Stdout,
		logger:    logger,
		metrics:   reg,
		publisher: report.NewPublisher(logger, reg, cfg.Report.Timeout, sinks...),
	}
	if failed := a.run(ctx); failed > 0 {
		return 1
	}
	return 0
}

// parseConfig layers defaults, the config file, ADTREE_* variables and
// explicitly set flags, in that order
func parseConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("adtree-analyze", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	output := fs.String("output", "", "Report format on stdout: text or json")
	showPairs := fs.Bool("pairs", false, "Print every defense pair")
	workers := fs.Int("workers", 0, "Trees analysed concurrently (default: number of CPUs)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: json or text")
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	reportDir := fs.String("report-dir", "", "Write one JSON report per tree into this directory")
	compress := fs.Bool("compress", false, "Snappy-compress reports written to -report-dir")
	s3Bucket := fs.String("s3-bucket", "", "Upload reports to this S3 bucket")
	s3Prefix := fs.String("s3-prefix", "", "Key prefix for uploaded reports")
	s3Region := fs.String("s3-region", "", "AWS region of the report bucket")
	databaseURL := fs.String("database-url", "", "Store reports in this PostgreSQL database")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *output
		case "pairs":
			cfg.ShowPairs = *showPairs
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "report-dir":
			cfg.Report.Dir = *reportDir
		case "compress":
			cfg.Report.Compress = *compress
		case "s3-bucket":
			cfg.Report.S3Bucket = *s3Bucket
		case "s3-prefix":
			cfg.Report.S3Prefix = *s3Prefix
		case "s3-region":
			cfg.Report.S3Region = *s3Region
		case "database-url":
			cfg.Report.DatabaseURL = *databaseURL
		}
	})
	if fs.NArg() > 0 {
		cfg.Inputs = fs.Args()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveMetrics(addr string, reg *metrics.Registry, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server starting", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", logging.Error(err))
		}
	}()
	return srv
}

// openSinks builds the configured report sinks and a function releasing them
func openSinks(ctx context.Context, cfg *config.Config) ([]report.Sink, func(), error) {
	var sinks []report.Sink
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Report.Dir != "" {
		fileSink, err := report.NewFileSink(cfg.Report.Dir, cfg.Report.Compress)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileSink)
	}

	if cfg.Report.S3Bucket != "" {
		client, err := report.NewS3Client(ctx, report.S3Options{
			Region:   cfg.Report.S3Region,
			Endpoint: os.Getenv("ADTREE_S3_ENDPOINT"),
		})
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, report.NewS3Sink(client, cfg.Report.S3Bucket, cfg.Report.S3Prefix))
	}

	if cfg.Report.DatabaseURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, cfg.Report.Timeout)
		defer cancel()
		store, err := report.NewPGStore(dbCtx, cfg.Report.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closers = append(closers, func() { store.Close() })
	}

	return sinks, closeAll, nil
}
