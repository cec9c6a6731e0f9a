package app

import (
	"context"
	"errors"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

// ErrCacheCold is returned by read queries before the first complete run.
var ErrCacheCold = errors.New("cache not initialized")

// PlayersService answers read queries against a warm cache.
type PlayersService struct {
	players ports.PlayerCache
	runs    ports.RunStore
}

func NewPlayersService(players ports.PlayerCache, runs ports.RunStore) *PlayersService {
	return &PlayersService{players: players, runs: runs}
}

func (s *PlayersService) ensureWarm(ctx context.Context) error {
	warm, err := s.runs.LatestRunComplete(ctx)
	if err != nil {
		return err
	}
	if !warm {
		return ErrCacheCold
	}
	return nil
}

// Hitters returns cached hitters in ranking order. A positive limit truncates;
// a non-empty position keeps only hitters eligible there.
func (s *PlayersService) Hitters(ctx context.Context, position domain.Position, limit int) ([]domain.Hitter, error) {
	if err := s.ensureWarm(ctx); err != nil {
		return nil, err
	}
	hitters, err := s.players.LoadHitters(ctx)
	if err != nil {
		return nil, err
	}
	if position != "" {
		kept := hitters[:0]
		for _, h := range hitters {
			if h.Positions.Has(position) {
				kept = append(kept, h)
			}
		}
		hitters = kept
	}
	return truncate(hitters, limit), nil
}

func (s *PlayersService) Hitter(ctx context.Context, name string) (domain.Hitter, error) {
	if err := s.ensureWarm(ctx); err != nil {
		return domain.Hitter{}, err
	}
	return s.players.Hitter(ctx, name)
}

func (s *PlayersService) Pitchers(ctx context.Context, limit int) ([]domain.Pitcher, error) {
	if err := s.ensureWarm(ctx); err != nil {
		return nil, err
	}
	pitchers, err := s.players.LoadPitchers(ctx)
	if err != nil {
		return nil, err
	}
	return truncate(pitchers, limit), nil
}

// Lookups returns the recorded eligibility outcomes, optionally only those
// with the given status.
func (s *PlayersService) Lookups(ctx context.Context, status domain.LookupStatus) ([]domain.LookupResult, error) {
	if err := s.ensureWarm(ctx); err != nil {
		return nil, err
	}
	all, err := s.players.LoadLookups(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	out := make([]domain.LookupResult, 0, len(all))
	for _, l := range all {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && limit < len(rows) {
		return rows[:limit]
	}
	return rows
}
