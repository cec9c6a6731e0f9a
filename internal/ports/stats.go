package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

// StatsSource returns the raw expected-stats table for one player kind.
type StatsSource interface {
	ExpectedStats(ctx context.Context, kind domain.PlayerKind, season, minPA int) ([]domain.RawStatRow, error)
}
