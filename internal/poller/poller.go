// Package poller projects fields of periodically fetched status snapshots
// into display slots.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/livedash/internal/display"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/metrics"
)

// ErrorPolicy decides what a failed cycle does with its error.
type ErrorPolicy string

const (
	// PolicyLog logs the failure and reports success to the caller.
	PolicyLog ErrorPolicy = "log"
	// PolicyPropagate returns the failure; the runner reports it as an
	// unhandled cycle failure.
	PolicyPropagate ErrorPolicy = "propagate"
)

// Config parametrizes one poller.
type Config struct {
	Name     string
	Endpoint string
	Interval time.Duration
	Bindings []Binding
	Policy   ErrorPolicy
}

func (c Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("poller name is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("%s poller: endpoint is required", c.Name)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%s poller: interval must be positive", c.Name)
	}
	if c.Policy != PolicyLog && c.Policy != PolicyPropagate {
		return fmt.Errorf("%s poller: unknown error policy %q", c.Name, c.Policy)
	}
	for i, b := range c.Bindings {
		if b.Field == "" || b.Slot == "" {
			return fmt.Errorf("%s poller: binding %d needs a field and a slot", c.Name, i)
		}
	}
	return nil
}

// Status summarizes the poller's recent cycles.
type Status struct {
	Name        string
	Endpoint    string
	Interval    time.Duration
	Running     bool
	Cycles      int64
	Failures    int64
	LastSuccess time.Time
	LastError   string
	LastErrorAt time.Time
}

// Option configures a Poller.
type Option func(*Poller)

// WithOnError registers a hook called for every failure the runner reports
// under PolicyPropagate.
func WithOnError(fn func(name string, err error)) Option {
	return func(p *Poller) { p.onError = fn }
}

// WithSampledLogger routes PolicyLog failures through a sampled logger so a
// dead backend does not flood the log.
func WithSampledLogger(s *logger.SampledLogger) Option {
	return func(p *Poller) { p.sampled = s }
}

// Poller runs fetch-and-project cycles for one endpoint.
type Poller struct {
	cfg     Config
	fetcher Fetcher
	sink    display.Sink
	logger  logger.Logger
	sampled *logger.SampledLogger
	onError func(name string, err error)
	now     func() time.Time

	mu      sync.Mutex
	status  Status
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New creates a poller for cfg. A nil log discards output.
func New(cfg Config, fetcher Fetcher, sink display.Sink, log logger.Logger, opts ...Option) (*Poller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if fetcher == nil || sink == nil {
		return nil, fmt.Errorf("%s poller: fetcher and sink are required", cfg.Name)
	}
	if log == nil {
		log = logger.NewNullLogger()
	}
	p := &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		sink:    sink,
		logger:  log.WithFields(map[string]interface{}{"poller": cfg.Name, "endpoint": cfg.Endpoint}),
		now:     time.Now,
		status: Status{
			Name:     cfg.Name,
			Endpoint: cfg.Endpoint,
			Interval: cfg.Interval,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the configured poller name.
func (p *Poller) Name() string { return p.cfg.Name }

// Cycle fetches the snapshot once and writes every bound field in order.
// The first failure stops the cycle and earlier writes stay. Under
// PolicyLog the failure is logged and Cycle returns nil.
func (p *Poller) Cycle(ctx context.Context) error {
	start := p.now()
	err := p.project(ctx)
	p.record(ctx, start, err)

	if err == nil {
		return nil
	}
	if p.cfg.Policy == PolicyLog {
		if ctx.Err() == nil {
			p.logFailure(err)
		}
		return nil
	}
	return fmt.Errorf("%s poller: %w", p.cfg.Name, err)
}

func (p *Poller) project(ctx context.Context) error {
	snap, err := p.fetcher.Fetch(ctx, p.cfg.Endpoint)
	if err != nil {
		return err
	}
	return Project(snap, p.cfg.Bindings, display.SinkFunc(func(slot, value string) error {
		if err := p.sink.Write(slot, value); err != nil {
			return err
		}
		metrics.IncrementSlotWrites(p.cfg.Name)
		return nil
	}))
}

// Project writes each bound field of snap to sink, in binding order. The
// first failure stops it; earlier writes stay.
func Project(snap Snapshot, bindings []Binding, sink display.Sink) error {
	for _, b := range bindings {
		raw, ok := snap[b.Field]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingField, b.Field)
		}
		format := b.Format
		if format == nil {
			format = FormatValue
		}
		value, err := format(raw)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformed, b.Field, err)
		}
		if err := sink.Write(b.Slot, value); err != nil {
			return fmt.Errorf("write %q: %w", b.Slot, err)
		}
	}
	return nil
}

// record counts the cycle. A cycle cut short by cancellation is neither a
// success nor a failure.
func (p *Poller) record(ctx context.Context, start time.Time, err error) {
	end := p.now()
	result := outcome(err)
	if err != nil && ctx.Err() != nil {
		result = metrics.OutcomeCanceled
	}
	metrics.RecordPollCycle(p.cfg.Name, result, end.Sub(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	if err == nil {
		p.status.LastSuccess = end
		return
	}
	if result == metrics.OutcomeCanceled {
		return
	}
	p.status.Failures++
	p.status.LastError = err.Error()
	p.status.LastErrorAt = end
}

func (p *Poller) logFailure(err error) {
	fields := map[string]interface{}{
		"poller":  p.cfg.Name,
		"outcome": outcome(err),
		"error":   err.Error(),
	}
	if p.sampled != nil {
		p.sampled.Logf(logrus.WarnLevel, logger.CategoryPollFailure, fields, "Poll cycle failed")
		return
	}
	p.logger.WithError(err).WithField("outcome", outcome(err)).Warn("Poll cycle failed")
}

// Start runs a cycle immediately and then one per interval until ctx is
// done or Stop is called. Each cycle runs in its own goroutine, so a slow
// cycle may overlap the next one.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.status.Running = true
	metrics.IncrementActivePollers()

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.WithField("interval", p.cfg.Interval.String()).Info("Poller started")
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.launch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.launch(ctx)
		}
	}
}

func (p *Poller) launch(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.Cycle(ctx); err != nil && ctx.Err() == nil {
			p.report(err)
		}
	}()
}

// report surfaces a propagated cycle failure.
func (p *Poller) report(err error) {
	p.logger.WithError(err).WithField("outcome", outcome(err)).Error("Unhandled poll cycle failure")
	if p.onError != nil {
		p.onError(p.cfg.Name, err)
	}
}

// Stop cancels the schedule and in-flight requests and waits for running
// cycles to return. Stop on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.status.Running = false
	p.cancel = nil
	p.mu.Unlock()
	metrics.DecrementActivePollers()

	p.logger.Info("Poller stopped")
}

// Status returns a copy of the poller's counters.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
