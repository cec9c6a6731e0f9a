package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Guilhem-Bonnet/xdraft/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

type fakeEligibility struct {
	positions map[string]domain.EligibilitySet
	err       error
	calls     int
}

func (f *fakeEligibility) LookupAll(ctx context.Context, names []string) (EligibilityBatch, error) {
	f.calls++
	batch := EligibilityBatch{Positions: map[string]domain.EligibilitySet{}}
	if f.err != nil {
		return batch, f.err
	}
	for _, n := range names {
		set, ok := f.positions[n]
		res := domain.LookupResult{Name: n, Status: domain.LookupOK, Positions: set}
		if !ok {
			res.Status = domain.LookupTimeout
			batch.Failures++
		}
		batch.Results = append(batch.Results, res)
		batch.Positions[n] = res.Positions
	}
	return batch, nil
}

// pitcherWriteFails lets hitters through and rejects the pitchers write.
type pitcherWriteFails struct {
	ports.PlayerCache
	err error
}

func (p pitcherWriteFails) ReplacePitchers(context.Context, []domain.Pitcher) error {
	return p.err
}

type initFixture struct {
	init     *Initializer
	source   *fakeSource
	elig     *fakeEligibility
	recorder *fakeRecorder
	db       *sqlite.DB
}

func newInitFixture(t *testing.T) *initFixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	src := &fakeSource{rows: map[domain.PlayerKind][]domain.RawStatRow{
		domain.KindBatter: {
			raw("Judge, Aaron", 612, .461, .003),
			raw("Raleigh, Cal", 580, .390, .010),
			raw("Rookie, Ray", 20, .500, 0),
		},
		domain.KindPitcher: {
			raw("Skubal, Tarik", 720, .256, .009),
		},
	}}
	elig := &fakeEligibility{positions: map[string]domain.EligibilitySet{
		"Aaron Judge": domain.NewEligibilitySet(domain.PosRF, domain.PosOF, domain.PosUtil),
	}}
	rec := &fakeRecorder{}
	players := sqlite.NewPlayersRepository(db.SQL)
	in := NewInitializer(testLogger, InitializerDeps{
		Stats:       NewStatsService(testLogger, src, 2025, 25),
		Eligibility: elig,
		Players:     players,
		Metadata:    sqlite.NewMetadataRepository(db.SQL),
		Runs:        sqlite.NewRunsRepository(db.SQL),
		Recorder:    rec,
	}, 2025, 25)
	return &initFixture{init: in, source: src, elig: elig, recorder: rec, db: db}
}

func TestInitializer_ColdStartPopulatesCache(t *testing.T) {
	f := newInitFixture(t)
	ctx := context.Background()

	tables, err := f.init.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(tables.Hitters) != 2 || len(tables.Pitchers) != 1 {
		t.Fatalf("unexpected tables: %d hitters, %d pitchers", len(tables.Hitters), len(tables.Pitchers))
	}
	if tables.Hitters[0].Name != "Aaron Judge" || tables.Hitters[0].Positions.String() != "RF,OF,Util" {
		t.Fatalf("unexpected first hitter %+v", tables.Hitters[0])
	}
	if !tables.Hitters[1].Positions.Empty() {
		t.Fatalf("failed lookup should leave positions empty")
	}

	status, err := NewStatusService(sqlite.NewMetadataRepository(f.db.SQL), sqlite.NewRunsRepository(f.db.SQL)).Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Warm || status.LastUpdated == domain.NeverUpdated {
		t.Fatalf("cache should be warm and stamped, got %+v", status)
	}
	if status.LatestRun == nil || status.LatestRun.LookupFailures != 1 || status.LatestRun.Hitters != 2 {
		t.Fatalf("unexpected latest run %+v", status.LatestRun)
	}

	lookups, err := sqlite.NewPlayersRepository(f.db.SQL).LoadLookups(ctx)
	if err != nil || len(lookups) != 2 {
		t.Fatalf("LoadLookups: %+v, %v", lookups, err)
	}
	if len(f.recorder.runs) != 1 || f.recorder.runs[0].State != domain.RunComplete {
		t.Fatalf("recorder runs: %+v", f.recorder.runs)
	}
}

func TestInitializer_WarmCacheIsIdempotent(t *testing.T) {
	f := newInitFixture(t)
	ctx := context.Background()

	first, err := f.init.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize(1): %v", err)
	}
	second, err := f.init.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize(2): %v", err)
	}
	if f.source.calls != 2 || f.elig.calls != 1 {
		t.Fatalf("warm call must not fetch or scrape: source=%d elig=%d", f.source.calls, f.elig.calls)
	}
	if len(first.Hitters) != len(second.Hitters) || len(first.Pitchers) != len(second.Pitchers) {
		t.Fatalf("tables differ between calls")
	}
	for i := range first.Hitters {
		if first.Hitters[i] != second.Hitters[i] {
			t.Fatalf("hitter %d differs: %+v vs %+v", i, first.Hitters[i], second.Hitters[i])
		}
	}
	for i := range first.Pitchers {
		if first.Pitchers[i] != second.Pitchers[i] {
			t.Fatalf("pitcher %d differs", i)
		}
	}
}

func TestInitializer_FailedRunStaysCold(t *testing.T) {
	f := newInitFixture(t)
	ctx := context.Background()
	f.elig.err = errors.New("chrome crashed")

	if _, err := f.init.Initialize(ctx); err == nil {
		t.Fatalf("expected error")
	}
	warm, err := f.init.Warm(ctx)
	if err != nil || warm {
		t.Fatalf("failed run must leave cache cold: warm=%v err=%v", warm, err)
	}
	if len(f.recorder.runs) != 1 || f.recorder.runs[0].State != domain.RunFailed || f.recorder.runs[0].ErrorMessage == "" {
		t.Fatalf("recorder runs: %+v", f.recorder.runs)
	}

	f.elig.err = nil
	tables, err := f.init.Initialize(ctx)
	if err != nil {
		t.Fatalf("retry Initialize: %v", err)
	}
	if len(tables.Hitters) != 2 {
		t.Fatalf("retry should populate, got %d hitters", len(tables.Hitters))
	}
	if f.elig.calls != 2 {
		t.Fatalf("retry should scrape again, got %d calls", f.elig.calls)
	}
}

func TestInitializer_StatsErrorPropagates(t *testing.T) {
	f := newInitFixture(t)
	f.source.err = errors.New("503 from savant")

	_, err := f.init.Initialize(context.Background())
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != CodeStatsFetch {
		t.Fatalf("expected stats_fetch error, got %v", err)
	}
	if f.elig.calls != 0 {
		t.Fatalf("scraper must not run after a stats failure")
	}
}

func TestInitializer_RefreshForcesColdPath(t *testing.T) {
	f := newInitFixture(t)
	ctx := context.Background()
	if _, err := f.init.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	f.elig.positions["Cal Raleigh"] = domain.NewEligibilitySet(domain.PosC)

	tables, err := f.init.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if f.elig.calls != 2 {
		t.Fatalf("refresh must scrape again, got %d", f.elig.calls)
	}
	if tables.Hitters[1].Positions.String() != "C" {
		t.Fatalf("refresh should pick up new eligibility, got %q", tables.Hitters[1].Positions.String())
	}
}

func TestInitializer_FailedRefreshTurnsCacheCold(t *testing.T) {
	f := newInitFixture(t)
	ctx := context.Background()
	if _, err := f.init.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	f.source.rows[domain.KindBatter] = []domain.RawStatRow{raw("New, Guy", 400, .420, .001)}
	f.source.rows[domain.KindPitcher] = []domain.RawStatRow{raw("Crochet, Garrett", 650, .240, .002)}
	deps := InitializerDeps{
		Stats:       NewStatsService(testLogger, f.source, 2025, 25),
		Eligibility: f.elig,
		Players:     pitcherWriteFails{PlayerCache: sqlite.NewPlayersRepository(f.db.SQL), err: errors.New("disk full")},
		Metadata:    sqlite.NewMetadataRepository(f.db.SQL),
		Runs:        sqlite.NewRunsRepository(f.db.SQL),
	}
	broken := NewInitializer(testLogger, deps, 2025, 25)

	_, err := broken.Refresh(ctx)
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != CodeCacheWrite {
		t.Fatalf("expected cache_write error, got %v", err)
	}
	warm, err := f.init.Warm(ctx)
	if err != nil || warm {
		t.Fatalf("half-written refresh must leave cache cold: warm=%v err=%v", warm, err)
	}

	scrapes := f.elig.calls
	tables, err := f.init.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize after failed refresh: %v", err)
	}
	if f.elig.calls != scrapes+1 {
		t.Fatalf("cold cache must be repopulated, scrapes %d -> %d", scrapes, f.elig.calls)
	}
	if len(tables.Hitters) != 1 || tables.Hitters[0].Name != "Guy New" {
		t.Fatalf("unexpected hitters %+v", tables.Hitters)
	}
	if len(tables.Pitchers) != 1 || tables.Pitchers[0].Name != "Garrett Crochet" {
		t.Fatalf("pitchers must match the new population, got %+v", tables.Pitchers)
	}
}
