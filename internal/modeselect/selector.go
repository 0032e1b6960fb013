// Package modeselect decides the degradation level for one request from
// collaborator reachability. Selection itself can never fail: an
// unreachable or slow collaborator degrades the mode, it does not abort
// the pipeline.
package modeselect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// Prober is the health side of a gateway.
type Prober interface {
	Probe(ctx context.Context) entity.CollaboratorHealth
}

type Selector struct {
	Logger       *slog.Logger
	ProbeTimeout time.Duration
	Extraction   Prober
	Completion   Prober
}

func NewSelector(extraction, completion Prober, probeTimeout time.Duration, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &Selector{
		Logger:       logger,
		ProbeTimeout: probeTimeout,
		Extraction:   extraction,
		Completion:   completion,
	}
}

// Decide probes both collaborators concurrently, waits for both (or their
// timeouts), and returns the selected mode plus the health snapshots. A
// non-auto override wins verbatim; the probes still run so the report can
// show what was actually reachable.
func (s *Selector) Decide(ctx context.Context, override constants.RunMode, forced bool) (constants.RunMode, entity.CollaboratorHealth, entity.CollaboratorHealth) {
	extHealth, compHealth := s.probeBoth(ctx)

	if forced {
		s.Logger.Info("modeselect.forced",
			"mode", override,
			"extraction_reachable", extHealth.Reachable,
			"completion_reachable", compHealth.Reachable,
		)
		return override, extHealth, compHealth
	}

	mode := constants.SelectMode(extHealth.Reachable, compHealth.Reachable)
	s.Logger.Info("modeselect.auto",
		"mode", mode,
		"extraction_reachable", extHealth.Reachable,
		"completion_reachable", compHealth.Reachable,
		"extraction_latency_ms", extHealth.Latency.Milliseconds(),
		"completion_latency_ms", compHealth.Latency.Milliseconds(),
	)
	return mode, extHealth, compHealth
}

// probeBoth runs the two probes in parallel, each under its own timeout.
// Partial information is never acted on: both goroutines are joined before
// returning.
func (s *Selector) probeBoth(ctx context.Context) (entity.CollaboratorHealth, entity.CollaboratorHealth) {
	var extHealth, compHealth entity.CollaboratorHealth

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		extHealth = s.probe(ctx, s.Extraction, constants.CollaboratorExtraction)
	}()
	go func() {
		defer wg.Done()
		compHealth = s.probe(ctx, s.Completion, constants.CollaboratorCompletion)
	}()
	wg.Wait()

	return extHealth, compHealth
}

func (s *Selector) probe(ctx context.Context, p Prober, name string) entity.CollaboratorHealth {
	probeCtx, cancel := context.WithTimeout(ctx, s.ProbeTimeout)
	defer cancel()

	done := make(chan entity.CollaboratorHealth, 1)
	go func() {
		done <- p.Probe(probeCtx)
	}()

	select {
	case health := <-done:
		return health
	case <-probeCtx.Done():
		// A probe that outlives its budget counts as unreachable. The
		// goroutine finishes on its own once its HTTP call honors the
		// context; its result is discarded.
		s.Logger.Warn("modeselect.probe.timeout", "collaborator", name, "budget_ms", s.ProbeTimeout.Milliseconds())
		return entity.CollaboratorHealth{
			Name:     name,
			ProbedAt: time.Now().UTC(),
			Latency:  s.ProbeTimeout,
		}
	}
}
