package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

func raw(name string, pa int, xwoba, xwobaDiff float64) domain.RawStatRow {
	r := domain.RawStatRow{}
	r.Name = name
	r.PA = pa
	r.XWOBA = xwoba
	r.XWOBADiff = xwobaDiff
	return r
}

func TestReverseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Judge, Aaron", "Aaron Judge"},
		{"Ramírez, José", "José Ramírez"},
		{"  Guerrero Jr. ,  Vladimir ", "Vladimir Guerrero Jr."},
		{"Ohtani", "Ohtani"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ReverseName(tt.in); got != tt.want {
			t.Errorf("ReverseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeStats_ThresholdIsStrict(t *testing.T) {
	rows := NormalizeStats([]domain.RawStatRow{
		raw("Below, Bob", 24, .3, 0),
		raw("Equal, Eve", 25, .3, 0),
		raw("Above, Al", 26, .3, 0),
	}, 25)
	if len(rows) != 1 || rows[0].Name != "Al Above" {
		t.Fatalf("only PA > 25 should survive, got %+v", rows)
	}
	for _, r := range rows {
		if r.PA <= 25 {
			t.Fatalf("row %q has PA %d", r.Name, r.PA)
		}
	}
}

func TestNormalizeStats_RoundsAndDedupes(t *testing.T) {
	r := raw("Judge, Aaron", 600, .46129, .00333)
	r.BA = .33149
	r.ERA = 3.14159
	rows := NormalizeStats([]domain.RawStatRow{r, raw("Judge, Aaron", 10, .1, 0)}, 25)
	if len(rows) != 1 {
		t.Fatalf("duplicate names must collapse, got %d rows", len(rows))
	}
	got := rows[0]
	if got.XWOBA != .461 || got.XWOBADiff != .003 || got.BA != .331 || got.ERA != 3.142 {
		t.Fatalf("unexpected rounding %+v", got)
	}
}

func TestStatsService_SortOrder(t *testing.T) {
	src := &fakeSource{rows: map[domain.PlayerKind][]domain.RawStatRow{
		domain.KindBatter: {
			raw("Low, Larry", 100, .300, .010),
			raw("High, Hank", 100, .400, -.010),
			raw("Tie, Two", 100, .350, .020),
			raw("Tie, One", 100, .350, .030),
		},
		domain.KindPitcher: {
			raw("Bad, Bill", 100, .380, .010),
			raw("Ace, Andy", 100, .250, .020),
			raw("Ace, Abe", 100, .250, -.010),
		},
	}}
	svc := NewStatsService(testLogger, src, 2025, 25)

	hitters, err := svc.Batters(context.Background())
	if err != nil {
		t.Fatalf("Batters: %v", err)
	}
	wantH := []string{"Hank High", "One Tie", "Two Tie", "Larry Low"}
	for i, name := range wantH {
		if hitters[i].Name != name {
			t.Fatalf("hitter %d: want %s, got %s", i, name, hitters[i].Name)
		}
		if !hitters[i].Positions.Empty() {
			t.Fatalf("fresh hitters carry no eligibility")
		}
	}

	pitchers, err := svc.Pitchers(context.Background())
	if err != nil {
		t.Fatalf("Pitchers: %v", err)
	}
	wantP := []string{"Abe Ace", "Andy Ace", "Bill Bad"}
	for i, name := range wantP {
		if pitchers[i].Name != name {
			t.Fatalf("pitcher %d: want %s, got %s", i, name, pitchers[i].Name)
		}
	}
}

func TestStatsService_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("savant down")
	svc := NewStatsService(testLogger, &fakeSource{err: boom}, 2025, 25)
	if _, err := svc.Batters(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
