package constants

import (
	"fmt"
	"strings"
)

// RunMode is the degradation level selected for a single request.
type RunMode string

// Stable values (these exact strings appear in config, logs, and responses).
const (
	ModeFullLive       RunMode = "full-live"       // both collaborators live
	ModeExtractionOnly RunMode = "extraction-only" // extraction live, completion mocked
	ModeCompletionOnly RunMode = "completion-only" // extraction mocked, completion live
	ModeFullOffline    RunMode = "full-offline"    // both mocked
)

// ModeAuto is the override value meaning "pick from probe results".
// It is a config input, never a selected mode.
const ModeAuto = "auto"

var allModes = []RunMode{
	ModeFullLive,
	ModeExtractionOnly,
	ModeCompletionOnly,
	ModeFullOffline,
}

// Rank returns the preference order of a mode: lower is better.
// The auto ladder walks this order top to bottom.
func (m RunMode) Rank() int {
	for i, mode := range allModes {
		if m == mode {
			return i
		}
	}
	return len(allModes)
}

// UsesLiveExtraction reports whether the extraction gateway runs live in this mode.
func (m RunMode) UsesLiveExtraction() bool {
	return m == ModeFullLive || m == ModeExtractionOnly
}

// UsesLiveCompletion reports whether the completion gateway runs live in this mode.
func (m RunMode) UsesLiveCompletion() bool {
	return m == ModeFullLive || m == ModeCompletionOnly
}

// SelectMode maps collaborator reachability to the preferred run mode.
// Pure: the same inputs always yield the same mode.
func SelectMode(extractionUp, completionUp bool) RunMode {
	switch {
	case extractionUp && completionUp:
		return ModeFullLive
	case extractionUp:
		return ModeExtractionOnly
	case completionUp:
		return ModeCompletionOnly
	default:
		return ModeFullOffline
	}
}

// ParseRunMode parses a mode override from config. The empty string and
// "auto" both mean automatic selection (ok=false). Unknown values are a
// configuration error.
func ParseRunMode(input string) (mode RunMode, forced bool, err error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" || normalized == ModeAuto {
		return "", false, nil
	}
	for _, m := range allModes {
		if normalized == string(m) {
			return m, true, nil
		}
	}
	return "", false, fmt.Errorf("unknown mode %q (valid: auto, %s, %s, %s, %s)",
		input, ModeFullLive, ModeExtractionOnly, ModeCompletionOnly, ModeFullOffline)
}
