package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-adtree/pkg/logging"
	"github.com/dd0wney/cluso-adtree/pkg/metrics"
)

// Sink persists reports
type Sink interface {
	// Name identifies the sink in logs and metrics
	Name() string
	Put(ctx context.Context, r *Report) error
}

// Publisher hands each report to every configured sink. A failing sink does
// not stop the others.
type Publisher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewPublisher creates a publisher; timeout bounds each sink write and is
// ignored when zero
func NewPublisher(logger logging.Logger, reg *metrics.Registry, timeout time.Duration, sinks ...Sink) *Publisher {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Publisher{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
		metrics: reg,
	}
}

// Len returns the number of sinks
func (p *Publisher) Len() int {
	return len(p.sinks)
}

// Publish writes r to all sinks and joins their errors
func (p *Publisher) Publish(ctx context.Context, r *Report) error {
	var errs []error
	for _, s := range p.sinks {
		err := p.put(ctx, s, r)
		if p.metrics != nil {
			p.metrics.RecordReport(s.Name(), err)
		}
		if err != nil {
			p.logger.Error("report sink failed",
				logging.Component(s.Name()),
				logging.String("file", r.File),
				logging.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		p.logger.Debug("report stored",
			logging.Component(s.Name()),
			logging.String("file", r.File))
	}
	return errors.Join(errs...)
}

func (p *Publisher) put(ctx context.Context, s Sink, r *Report) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return s.Put(ctx, r)
}
