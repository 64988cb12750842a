// Package report owns the session report cache: it collects posts and
// generates a report once per key, serves repeats from memory, and turns a
// cached entry into the pieces a front-end shows.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/metrics"
	"deepsent/internal/trace"
	"deepsent/internal/types"
)

// Orchestrator serves reports from its session or, on a miss, collects and
// generates them. Calls are serialized: a key is never generated twice
// concurrently within one session.
type Orchestrator struct {
	collector interfaces.Collector
	generator interfaces.Generator
	session   *Session
	now       func() time.Time

	mu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSession shares an existing session store.
func WithSession(s *Session) Option {
	return func(o *Orchestrator) {
		o.session = s
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(collector interfaces.Collector, generator interfaces.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		collector: collector,
		generator: generator,
		session:   NewSession(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the backing store.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Cached returns the stored entry for req without generating anything.
func (o *Orchestrator) Cached(req Request) (*types.ReportEntry, bool) {
	return o.session.Lookup(req.Key())
}

// GetOrGenerate returns the report for req, generating it on first use.
// A failed collection or generation leaves nothing in the session.
func (o *Orchestrator) GetOrGenerate(ctx context.Context, req Request) (*types.ReportEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := req.Key()

	o.mu.Lock()
	defer o.mu.Unlock()

	if e, ok := o.session.Lookup(key); ok {
		metrics.RecordCacheLookup(true)
		logger.Debug(ctx, "Report served from session cache", "key", key.String())
		return e, nil
	}
	metrics.RecordCacheLookup(false)

	timer := logger.StartOperation(ctx, "report.generate", "key", key.String())
	trace.Annotate(timer.GetContext(), trace.AttrTicker.String(key.Ticker), trace.AttrCacheKey.String(key.String()))
	started := o.now()

	entry, err := o.generate(timer.GetContext(), key, req)
	elapsed := o.now().Sub(started)
	metrics.RecordReport(elapsed, err)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}
	entry.Elapsed = elapsed

	o.session.Store(key, entry)
	timer.End("posts", len(entry.Posts))
	return entry, nil
}

func (o *Orchestrator) generate(ctx context.Context, key Key, req Request) (*types.ReportEntry, error) {
	collected, err := o.collector.Collect(ctx, types.CollectRequest{
		Ticker:     key.Ticker,
		DailyLimit: key.DailyLimit,
		StartDate:  key.StartDate,
		EndDate:    key.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("collect posts for %s: %w", key.Ticker, err)
	}

	text, err := o.generator.Generate(ctx, types.GenerateRequest{
		Ticker:       key.Ticker,
		Fundamentals: req.Fundamentals,
		SocialData:   collected.Posts,
		Period:       collected.Period(),
		ChartPath:    collected.TrendChart,
	})
	if err != nil {
		return nil, fmt.Errorf("generate report for %s: %w", key.Ticker, err)
	}

	return &types.ReportEntry{
		ID:           uuid.NewString(),
		Key:          key.String(),
		Ticker:       key.Ticker,
		StartDate:    key.StartDate,
		EndDate:      key.EndDate,
		Report:       text,
		Chart:        collected.Figure,
		AvgSentiment: collected.AvgSentiment,
		Posts:        collected.Posts,
		Period:       collected.Period(),
		GeneratedAt:  o.now(),
	}, nil
}

// Invalidate drops the entry of req so the next call regenerates it.
func (o *Orchestrator) Invalidate(req Request) bool {
	return o.session.Invalidate(req.Key())
}

// Clear drops every cached report of the session.
func (o *Orchestrator) Clear() int {
	return o.session.Clear()
}
