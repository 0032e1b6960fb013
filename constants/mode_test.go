package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name         string
		extractionUp bool
		completionUp bool
		want         RunMode
	}{
		{"both up", true, true, ModeFullLive},
		{"extraction only", true, false, ModeExtractionOnly},
		{"completion only", false, true, ModeCompletionOnly},
		{"both down", false, false, ModeFullOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectMode(tt.extractionUp, tt.completionUp))
		})
	}
}

func TestRankOrdering(t *testing.T) {
	assert.Less(t, ModeFullLive.Rank(), ModeExtractionOnly.Rank())
	assert.Less(t, ModeExtractionOnly.Rank(), ModeCompletionOnly.Rank())
	assert.Less(t, ModeCompletionOnly.Rank(), ModeFullOffline.Rank())
}

func TestParseRunMode(t *testing.T) {
	mode, forced, err := ParseRunMode("full-offline")
	require.NoError(t, err)
	assert.True(t, forced)
	assert.Equal(t, ModeFullOffline, mode)

	mode, forced, err = ParseRunMode("  Extraction-Only ")
	require.NoError(t, err)
	assert.True(t, forced)
	assert.Equal(t, ModeExtractionOnly, mode)

	for _, auto := range []string{"", "auto", "AUTO"} {
		_, forced, err := ParseRunMode(auto)
		require.NoError(t, err)
		assert.False(t, forced, "input %q", auto)
	}

	_, _, err = ParseRunMode("turbo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turbo")
}

func TestLiveUsageByMode(t *testing.T) {
	assert.True(t, ModeFullLive.UsesLiveExtraction())
	assert.True(t, ModeFullLive.UsesLiveCompletion())
	assert.True(t, ModeExtractionOnly.UsesLiveExtraction())
	assert.False(t, ModeExtractionOnly.UsesLiveCompletion())
	assert.False(t, ModeCompletionOnly.UsesLiveExtraction())
	assert.True(t, ModeCompletionOnly.UsesLiveCompletion())
	assert.False(t, ModeFullOffline.UsesLiveExtraction())
	assert.False(t, ModeFullOffline.UsesLiveCompletion())
}
