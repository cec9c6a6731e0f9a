package domain

import (
	"errors"
	"time"
)

type RunState string

const (
	RunRunning  RunState = "running"
	RunComplete RunState = "complete"
	RunFailed   RunState = "failed"
)

func (s RunState) IsTerminal() bool {
	return s == RunComplete || s == RunFailed
}

// InitRun records one cold-cache initialisation. The cache only counts as warm
// while the latest run is RunComplete.
type InitRun struct {
	ID             string
	State          RunState
	Season         int
	MinPA          int
	StartedAt      time.Time
	FinishedAt     time.Time
	Hitters        int
	Pitchers       int
	LookupFailures int
	ErrorMessage   string
}

var ErrInvalidRunTransition = errors.New("invalid init run state transition")

func CanTransitionRun(from, to RunState) bool {
	return from == RunRunning && to.IsTerminal()
}

// NeverUpdated is returned for metadata keys that have never been written.
const NeverUpdated = "Never"

const MetaLastUpdated = "last_updated"
