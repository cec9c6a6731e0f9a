package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

type PlayerCache interface {
	ReplaceHitters(ctx context.Context, hitters []domain.Hitter) error
	ReplacePitchers(ctx context.Context, pitchers []domain.Pitcher) error
	LoadHitters(ctx context.Context) ([]domain.Hitter, error)
	LoadPitchers(ctx context.Context) ([]domain.Pitcher, error)
	// Hitter returns ErrNotFound when no row matches name.
	Hitter(ctx context.Context, name string) (domain.Hitter, error)
	ReplaceLookups(ctx context.Context, results []domain.LookupResult) error
	LoadLookups(ctx context.Context) ([]domain.LookupResult, error)
}

type MetadataStore interface {
	// TouchLastUpdated stamps the cache with the current time and returns it.
	TouchLastUpdated(ctx context.Context) (string, error)
	// LastUpdated returns domain.NeverUpdated when the cache was never stamped.
	LastUpdated(ctx context.Context) (string, error)
}

type RunStore interface {
	CreateRun(ctx context.Context, run domain.InitRun) (domain.InitRun, error)
	FinishRun(ctx context.Context, run domain.InitRun) (domain.InitRun, error)
	// LatestRun returns ErrNotFound when no run was ever started.
	LatestRun(ctx context.Context) (domain.InitRun, error)
	// LatestRunComplete is true only when the most recent run is complete.
	LatestRunComplete(ctx context.Context) (bool, error)
}
