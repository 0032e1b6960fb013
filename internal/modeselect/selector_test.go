package modeselect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// fakeProber answers with a fixed reachability, optionally slower than the
// probe budget.
type fakeProber struct {
	name      string
	reachable bool
	delay     time.Duration
}

func (f *fakeProber) Probe(ctx context.Context) entity.CollaboratorHealth {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return entity.CollaboratorHealth{Name: f.name, ProbedAt: time.Now().UTC()}
		}
	}
	return entity.CollaboratorHealth{
		Name:      f.name,
		Reachable: f.reachable,
		ProbedAt:  time.Now().UTC(),
	}
}

func TestDecideAutoLadder(t *testing.T) {
	tests := []struct {
		name         string
		extractionUp bool
		completionUp bool
		want         constants.RunMode
	}{
		{"both reachable", true, true, constants.ModeFullLive},
		{"extraction only", true, false, constants.ModeExtractionOnly},
		{"completion only", false, true, constants.ModeCompletionOnly},
		{"both unreachable", false, false, constants.ModeFullOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(
				&fakeProber{name: "extraction", reachable: tt.extractionUp},
				&fakeProber{name: "completion", reachable: tt.completionUp},
				time.Second, nil,
			)
			mode, extHealth, compHealth := s.Decide(context.Background(), "", false)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.extractionUp, extHealth.Reachable)
			assert.Equal(t, tt.completionUp, compHealth.Reachable)
		})
	}
}

func TestDecideForcedOverrideWinsVerbatim(t *testing.T) {
	// Both collaborators down, but the operator forced full-live.
	s := NewSelector(
		&fakeProber{name: "extraction", reachable: false},
		&fakeProber{name: "completion", reachable: false},
		time.Second, nil,
	)
	mode, extHealth, compHealth := s.Decide(context.Background(), constants.ModeFullLive, true)

	assert.Equal(t, constants.ModeFullLive, mode)
	// Probes still ran and recorded the truth.
	assert.False(t, extHealth.Reachable)
	assert.False(t, compHealth.Reachable)
}

func TestDecideSlowProbeCountsAsUnreachable(t *testing.T) {
	s := NewSelector(
		&fakeProber{name: "extraction", reachable: true, delay: 500 * time.Millisecond},
		&fakeProber{name: "completion", reachable: true},
		50*time.Millisecond, nil,
	)

	start := time.Now()
	mode, extHealth, compHealth := s.Decide(context.Background(), "", false)
	elapsed := time.Since(start)

	assert.Equal(t, constants.ModeCompletionOnly, mode)
	assert.False(t, extHealth.Reachable)
	assert.Equal(t, "extraction", extHealth.Name)
	assert.True(t, compHealth.Reachable)
	// Decide returns once the budget expires, not when the slow probe does.
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestDecideIsDeterministicForFixedHealth(t *testing.T) {
	s := NewSelector(
		&fakeProber{name: "extraction", reachable: true},
		&fakeProber{name: "completion", reachable: false},
		time.Second, nil,
	)
	for i := 0; i < 5; i++ {
		mode, _, _ := s.Decide(context.Background(), "", false)
		assert.Equal(t, constants.ModeExtractionOnly, mode)
	}
}
