package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

type StatsService struct {
	logger zerolog.Logger
	source ports.StatsSource
	season int
	minPA  int
}

func NewStatsService(logger zerolog.Logger, source ports.StatsSource, season, minPA int) *StatsService {
	return &StatsService{logger: logger, source: source, season: season, minPA: minPA}
}

// Batters returns hitters with PA strictly above the threshold, best xwOBA first.
// Eligibility is left empty.
func (s *StatsService) Batters(ctx context.Context) ([]domain.Hitter, error) {
	rows, err := s.fetch(ctx, domain.KindBatter)
	if err != nil {
		return nil, err
	}
	sortByXWOBA(rows, false)

	out := make([]domain.Hitter, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Hitter{StatLine: r.StatLine})
	}
	return out, nil
}

// Pitchers returns pitchers with PA strictly above the threshold, lowest xwOBA
// allowed first.
func (s *StatsService) Pitchers(ctx context.Context) ([]domain.Pitcher, error) {
	rows, err := s.fetch(ctx, domain.KindPitcher)
	if err != nil {
		return nil, err
	}
	sortByXWOBA(rows, true)

	out := make([]domain.Pitcher, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Pitcher{StatLine: r.StatLine, PitchingLine: r.PitchingLine})
	}
	return out, nil
}

func (s *StatsService) fetch(ctx context.Context, kind domain.PlayerKind) ([]domain.RawStatRow, error) {
	raw, err := s.source.ExpectedStats(ctx, kind, s.season, s.minPA)
	if err != nil {
		return nil, fmt.Errorf("fetch %s stats: %w", kind, err)
	}
	rows := NormalizeStats(raw, s.minPA)
	s.logger.Info().
		Str("kind", string(kind)).
		Int("season", s.season).
		Int("fetched", len(raw)).
		Int("kept", len(rows)).
		Msg("expected stats fetched")
	return rows, nil
}

// NormalizeStats converts names to "First Last", drops duplicate names (first
// wins), keeps rows with PA > minPA and rounds every rate metric to 3 places.
func NormalizeStats(raw []domain.RawStatRow, minPA int) []domain.RawStatRow {
	seen := make(map[string]struct{}, len(raw))
	out := make([]domain.RawStatRow, 0, len(raw))
	for _, r := range raw {
		r.Name = ReverseName(r.Name)
		if r.Name == "" {
			continue
		}
		if _, dup := seen[r.Name]; dup {
			continue
		}
		seen[r.Name] = struct{}{}
		if r.PA <= minPA {
			continue
		}
		out = append(out, roundRow(r))
	}
	return out
}

// ReverseName turns "Last, First" into "First Last". Names without a comma are
// returned trimmed.
func ReverseName(lastFirst string) string {
	parts := strings.SplitN(lastFirst, ",", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(lastFirst)
	}
	return strings.TrimSpace(strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0]))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func roundRow(r domain.RawStatRow) domain.RawStatRow {
	for _, f := range []*float64{
		&r.BA, &r.XBA, &r.XBADiff,
		&r.SLG, &r.XSLG, &r.XSLGDiff,
		&r.WOBA, &r.XWOBA, &r.XWOBADiff,
		&r.ERA, &r.XERA, &r.ERADiff,
	} {
		*f = round3(*f)
	}
	return r
}

func sortByXWOBA(rows []domain.RawStatRow, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.XWOBA != b.XWOBA {
			if ascending {
				return a.XWOBA < b.XWOBA
			}
			return a.XWOBA > b.XWOBA
		}
		if ascending {
			return a.XWOBADiff < b.XWOBADiff
		}
		return a.XWOBADiff > b.XWOBADiff
	})
}
