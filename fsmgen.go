package fsmgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/prompt"
	"github.com/aretw0/fsmgen/pkg/refine"
)

// SessionObserver is notified once per finished requirement.
type SessionObserver interface {
	ObserveSession(d time.Duration, failed bool)
}

// Pipeline turns a dataset of requirements into refined records.
// Each requirement gets its own refinement session; sessions run in
// parallel up to the configured number of workers.
type Pipeline struct {
	loop    *refine.Loop
	sink    ports.RecordSink
	resume  ports.OutcomeStore
	model   string
	workers int

	observer SessionObserver
	logger   *slog.Logger
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithModel records the model name in every output record.
func WithModel(name string) Option {
	return func(p *Pipeline) {
		p.model = name
	}
}

// WithWorkers bounds the number of concurrent sessions.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithResume skips requirements whose record is already in store and saves
// every new record there.
func WithResume(store ports.OutcomeStore) Option {
	return func(p *Pipeline) {
		p.resume = store
	}
}

// WithSessionObserver reports session durations, e.g. to metrics.
func WithSessionObserver(o SessionObserver) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithLogger configures a logger for the Pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline that writes one record per requirement to sink.
func NewPipeline(loop *refine.Loop, sink ports.RecordSink, opts ...Option) *Pipeline {
	p := &Pipeline{
		loop:    loop,
		sink:    sink,
		workers: 1,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary counts what a Run did.
type Summary struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	Processed int `json:"processed"`
	Accepted  int `json:"accepted"`
	Failed    int `json:"failed"`
}

// Process runs one session and appends its record.
func (p *Pipeline) Process(ctx context.Context, req domain.Requirement) (domain.Record, error) {
	text, err := prompt.SanitizeRequirement(req.UserRequirement)
	if err != nil {
		return domain.Record{}, fmt.Errorf("requirement %s: %w", req.ID, err)
	}
	req.UserRequirement = text

	start := time.Now()
	res, err := p.loop.Run(ctx, req)
	if p.observer != nil {
		p.observer.ObserveSession(time.Since(start), err != nil)
	}
	if err != nil {
		return domain.Record{}, err
	}

	rec := domain.Record{
		ID:              req.ID,
		UserRequirement: req.UserRequirement,
		FSM:             res.FSM,
		Code:            res.Code,
		Model:           p.model,
		FSMOutcome:      res.FSMOutcome,
		CodeOutcome:     res.CodeOutcome,
	}
	if err := p.sink.Append(ctx, rec); err != nil {
		return rec, fmt.Errorf("%w: append %s: %w", ErrOutput, req.ID, err)
	}
	if p.resume != nil && any(p.resume) != any(p.sink) {
		if err := p.resume.Save(ctx, rec); err != nil {
			return rec, fmt.Errorf("%w: save %s: %w", ErrOutput, req.ID, err)
		}
	}
	return rec, nil
}

// ErrOutput marks a record that was produced but could not be written.
var ErrOutput = errors.New("record output failed")

// Run processes every requirement. A session whose dialogue fails is logged
// and counted in Summary.Failed; the run goes on. Cancellation and output
// failures stop the run and are returned.
func (p *Pipeline) Run(ctx context.Context, reqs []domain.Requirement) (Summary, error) {
	var (
		mu  sync.Mutex
		sum = Summary{Total: len(reqs)}
	)
	count := func(f func(*Summary)) {
		mu.Lock()
		f(&sum)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log := p.logger.With("requirement", req.ID)

			if p.resume != nil {
				if _, err := p.resume.Load(gctx, req.ID); err == nil {
					log.Debug("record exists, skipping")
					count(func(s *Summary) { s.Skipped++ })
					return nil
				} else if !errors.Is(err, domain.ErrRecordNotFound) {
					return fmt.Errorf("check record %s: %w", req.ID, err)
				}
			}

			rec, err := p.Process(gctx, req)
			switch {
			case err == nil:
				count(func(s *Summary) {
					s.Processed++
					if rec.Accepted() {
						s.Accepted++
					}
				})
				return nil
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, ErrOutput):
				return err
			default:
				log.Error("session failed", "error", err)
				count(func(s *Summary) { s.Failed++ })
				return nil
			}
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return sum, err
}
