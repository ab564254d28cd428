package main

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-adtree/pkg/config"
	"github.com/dd0wney/cluso-adtree/pkg/loader"
	"github.com/dd0wney/cluso-adtree/pkg/logging"
	"github.com/dd0wney/cluso-adtree/pkg/metrics"
	"github.com/dd0wney/cluso-adtree/pkg/parallel"
	"github.com/dd0wney/cluso-adtree/pkg/report"
	"github.com/dd0wney/cluso-adtree/pkg/semantics"
)

type app struct {
	cfg       *config.Config
	stdout    io.Writer
	logger    logging.Logger
	metrics   *metrics.Registry
	publisher *report.Publisher
}

// run analyses the inputs on the worker pool, then prints and publishes the
// reports in input order. It returns how many inputs failed; a failing file
// is logged and skipped.
func (a *app) run(ctx context.Context) int {
	runID := uuid.New()
	logger := a.logger.With(logging.RunID(runID.String()))
	analyzer := semantics.NewAnalyzer(semantics.WithLogger(logger), semantics.WithMetrics(a.metrics))
	inputs := a.cfg.Inputs
	logger.Info("run started",
		logging.Int("trees", len(inputs)),
		logging.Int("sinks", a.sinkCount()))

	summaries := make([]*semantics.Summary, len(inputs))
	errs, err := parallel.ForEach(ctx, a.cfg.Workers, len(inputs), logger, func(ctx context.Context, i int) error {
		tree, err := loader.LoadFile(inputs[i])
		if err != nil {
			return err
		}
		summaries[i], err = analyzer.Analyze(tree, inputs[i])
		return err
	})
	if err != nil {
		logger.Error("failed to start workers", logging.Error(err))
		return len(inputs)
	}

	failed := 0
	for i, path := range inputs {
		if errs[i] == nil {
			errs[i] = a.emit(ctx, report.New(runID, path, summaries[i]))
		}
		if errs[i] != nil {
			logger.Error("tree analysis failed", logging.Tree(path), logging.Error(errs[i]))
			failed++
		}
	}

	logger.Info("run complete",
		logging.Int("trees", len(inputs)),
		logging.Int("failed", failed))
	return failed
}

func (a *app) emit(ctx context.Context, r *report.Report) error {
	var err error
	switch a.cfg.Output {
	case config.OutputJSON:
		err = report.WriteJSON(a.stdout, r)
	default:
		err = report.WriteText(a.stdout, r, report.TextOptions{ShowPairs: a.cfg.ShowPairs})
	}
	if err != nil {
		return err
	}

	if a.sinkCount() > 0 {
		return a.publisher.Publish(ctx, r)
	}
	return nil
}

func (a *app) sinkCount() int {
	if a.publisher == nil {
		return 0
	}
	return a.publisher.Len()
}
