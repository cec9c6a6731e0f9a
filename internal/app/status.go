package app

import (
	"context"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

type RunDTO struct {
	ID             string          `json:"id"`
	State          domain.RunState `json:"state"`
	Season         int             `json:"season"`
	MinPA          int             `json:"minPa"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     *time.Time      `json:"finishedAt,omitempty"`
	Hitters        int             `json:"hitters"`
	Pitchers       int             `json:"pitchers"`
	LookupFailures int             `json:"lookupFailures"`
	Error          string          `json:"error,omitempty"`
}

func ToRunDTO(r domain.InitRun) RunDTO {
	dto := RunDTO{
		ID:             r.ID,
		State:          r.State,
		Season:         r.Season,
		MinPA:          r.MinPA,
		StartedAt:      r.StartedAt,
		Hitters:        r.Hitters,
		Pitchers:       r.Pitchers,
		LookupFailures: r.LookupFailures,
		Error:          r.ErrorMessage,
	}
	if !r.FinishedAt.IsZero() {
		t := r.FinishedAt
		dto.FinishedAt = &t
	}
	return dto
}

type CacheStatus struct {
	Warm        bool    `json:"warm"`
	LastUpdated string  `json:"lastUpdated"`
	LatestRun   *RunDTO `json:"latestRun,omitempty"`
}

type StatusService struct {
	metadata ports.MetadataStore
	runs     ports.RunStore
}

func NewStatusService(metadata ports.MetadataStore, runs ports.RunStore) *StatusService {
	return &StatusService{metadata: metadata, runs: runs}
}

func (s *StatusService) Status(ctx context.Context) (CacheStatus, error) {
	warm, err := s.runs.LatestRunComplete(ctx)
	if err != nil {
		return CacheStatus{}, err
	}
	last, err := s.metadata.LastUpdated(ctx)
	if err != nil {
		return CacheStatus{}, err
	}
	st := CacheStatus{Warm: warm, LastUpdated: last}

	run, err := s.runs.LatestRun(ctx)
	switch {
	case err == nil:
		dto := ToRunDTO(run)
		st.LatestRun = &dto
	case !errors.Is(err, ports.ErrNotFound):
		return CacheStatus{}, err
	}
	return st, nil
}
