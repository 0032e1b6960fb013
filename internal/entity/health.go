package entity

import "time"

// CollaboratorHealth is the outcome of one reachability probe. Each probe
// fully replaces the previous snapshot; it is never partially updated.
type CollaboratorHealth struct {
	Name      string        `json:"name"`
	Reachable bool          `json:"reachable"`
	ProbedAt  time.Time     `json:"probed_at"`
	Latency   time.Duration `json:"latency"`
}
