package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

func TestMetadataRepository_NeverThenTouched(t *testing.T) {
	ctx := context.Background()
	repo := NewMetadataRepository(openTestDB(t).SQL)
	repo.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	got, err := repo.LastUpdated(ctx)
	if err != nil {
		t.Fatalf("LastUpdated: %v", err)
	}
	if got != domain.NeverUpdated {
		t.Fatalf("want %q, got %q", domain.NeverUpdated, got)
	}

	ts, err := repo.TouchLastUpdated(ctx)
	if err != nil {
		t.Fatalf("TouchLastUpdated: %v", err)
	}
	if ts != "2025-03-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %q", ts)
	}
	got, err = repo.LastUpdated(ctx)
	if err != nil || got != ts {
		t.Fatalf("want %q, got %q (%v)", ts, got, err)
	}
}

func TestMetadataRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMetadataRepository(openTestDB(t).SQL)

	if err := repo.SetMetadata(ctx, "k", "v1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := repo.SetMetadata(ctx, "k", "v2"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if got, _ := repo.Metadata(ctx, "k"); got != "v2" {
		t.Fatalf("want v2, got %q", got)
	}
}

func TestRunsRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewRunsRepository(openTestDB(t).SQL)

	if _, err := repo.LatestRun(ctx); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any run, got %v", err)
	}
	done, err := repo.LatestRunComplete(ctx)
	if err != nil || done {
		t.Fatalf("LatestRunComplete: %v, %v", done, err)
	}

	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run, err := repo.CreateRun(ctx, domain.InitRun{ID: "run1", State: domain.RunRunning, Season: 2025, MinPA: 25, StartedAt: started})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.State != domain.RunRunning || !run.StartedAt.Equal(started) {
		t.Fatalf("unexpected run %+v", run)
	}

	run.State = domain.RunComplete
	run.FinishedAt = started.Add(time.Minute)
	run.Hitters, run.Pitchers, run.LookupFailures = 300, 400, 2
	finished, err := repo.FinishRun(ctx, run)
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if finished.Hitters != 300 || finished.LookupFailures != 2 || finished.State != domain.RunComplete {
		t.Fatalf("unexpected finished run %+v", finished)
	}

	if _, err := repo.FinishRun(ctx, run); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("finishing twice should conflict, got %v", err)
	}
	done, err = repo.LatestRunComplete(ctx)
	if err != nil || !done {
		t.Fatalf("LatestRunComplete after finish: %v, %v", done, err)
	}

	latest, err := repo.LatestRun(ctx)
	if err != nil || latest.ID != "run1" {
		t.Fatalf("LatestRun: %+v, %v", latest, err)
	}
}

func TestRunsRepository_LatestRunDecidesWarmth(t *testing.T) {
	ctx := context.Background()
	repo := NewRunsRepository(openTestDB(t).SQL)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	finish := func(id string, state domain.RunState) {
		t.Helper()
		run, err := repo.CreateRun(ctx, domain.InitRun{ID: id, State: domain.RunRunning, StartedAt: start})
		if err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
		if state == domain.RunRunning {
			return
		}
		run.State, run.FinishedAt = state, start.Add(time.Minute)
		if _, err := repo.FinishRun(ctx, run); err != nil {
			t.Fatalf("FinishRun %s: %v", id, err)
		}
	}
	complete := func() bool {
		t.Helper()
		ok, err := repo.LatestRunComplete(ctx)
		if err != nil {
			t.Fatalf("LatestRunComplete: %v", err)
		}
		return ok
	}

	finish("a", domain.RunComplete)
	if !complete() {
		t.Fatalf("complete run should be warm")
	}
	finish("b", domain.RunFailed)
	if complete() {
		t.Fatalf("a later failed run must hide the earlier success")
	}
	finish("c", domain.RunComplete)
	finish("d", domain.RunRunning)
	if complete() {
		t.Fatalf("an unfinished latest run must not count as warm")
	}
	if latest, err := repo.LatestRun(ctx); err != nil || latest.ID != "d" {
		t.Fatalf("LatestRun: %+v, %v", latest, err)
	}
}

func TestRunsRepository_FinishRejectsRunning(t *testing.T) {
	repo := NewRunsRepository(openTestDB(t).SQL)
	_, err := repo.FinishRun(context.Background(), domain.InitRun{ID: "x", State: domain.RunRunning})
	if !errors.Is(err, domain.ErrInvalidRunTransition) {
		t.Fatalf("expected ErrInvalidRunTransition, got %v", err)
	}
}

func TestRunsRepository_FinishTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewRunsRepository(openTestDB(t).SQL)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run, err := repo.CreateRun(ctx, domain.InitRun{ID: "once", State: domain.RunRunning, StartedAt: start})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	run.State, run.FinishedAt = domain.RunFailed, start.Add(time.Second)
	if _, err := repo.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run.State = domain.RunComplete
	if _, err := repo.FinishRun(ctx, run); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.FinishRun(ctx, domain.InitRun{ID: "missing", State: domain.RunComplete}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
