package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

type RunsRepository struct {
	db *sql.DB
}

func NewRunsRepository(db *sql.DB) *RunsRepository {
	return &RunsRepository{db: db}
}

const runColumns = `id, state, season, min_pa, started_at, finished_at, hitters, pitchers, lookup_failures, error_message`

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *RunsRepository) CreateRun(ctx context.Context, run domain.InitRun) (domain.InitRun, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO init_runs(`+runColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.State), run.Season, run.MinPA, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Hitters, run.Pitchers, run.LookupFailures, run.ErrorMessage)
	if err != nil {
		return domain.InitRun{}, err
	}
	return r.get(ctx, run.ID)
}

// FinishRun moves a running run to run.State and records its counters. A run
// that is already terminal yields ports.ErrConflict.
func (r *RunsRepository) FinishRun(ctx context.Context, run domain.InitRun) (domain.InitRun, error) {
	if !domain.CanTransitionRun(domain.RunRunning, run.State) {
		return domain.InitRun{}, domain.ErrInvalidRunTransition
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE init_runs
		SET state = ?, finished_at = ?, hitters = ?, pitchers = ?, lookup_failures = ?, error_message = ?
		WHERE id = ? AND state = ?
	`, string(run.State), formatTime(run.FinishedAt), run.Hitters, run.Pitchers, run.LookupFailures, run.ErrorMessage,
		run.ID, string(domain.RunRunning))
	if err != nil {
		return domain.InitRun{}, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Absent, or already finished.
		if _, err := r.get(ctx, run.ID); err != nil {
			return domain.InitRun{}, err
		}
		return domain.InitRun{}, ports.ErrConflict
	}
	return r.get(ctx, run.ID)
}

// LatestRun returns the most recently started run. Runs are inserted when they
// start, so rowid order is start order.
func (r *RunsRepository) LatestRun(ctx context.Context) (domain.InitRun, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM init_runs ORDER BY rowid DESC LIMIT 1`))
}

// LatestRunComplete reports whether the most recent run finished complete. A
// later failed or interrupted run hides any earlier success.
func (r *RunsRepository) LatestRunComplete(ctx context.Context) (bool, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM init_runs ORDER BY rowid DESC LIMIT 1`).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return domain.RunState(state) == domain.RunComplete, nil
}

func (r *RunsRepository) get(ctx context.Context, id string) (domain.InitRun, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM init_runs WHERE id = ?`, id))
}

func (r *RunsRepository) scan(row *sql.Row) (domain.InitRun, error) {
	var run domain.InitRun
	var state, startedAt, finishedAt string
	err := row.Scan(&run.ID, &state, &run.Season, &run.MinPA, &startedAt, &finishedAt,
		&run.Hitters, &run.Pitchers, &run.LookupFailures, &run.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InitRun{}, ports.ErrNotFound
		}
		return domain.InitRun{}, err
	}
	run.State = domain.RunState(state)
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if finishedAt != "" {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
	}
	return run, nil
}
