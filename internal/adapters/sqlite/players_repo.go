package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

const statColumns = `name, PA, BA, xBA, "xBA-BA", SLG, xSLG, "xSLG-SLG", wOBA, xwOBA, "xwOBA-wOBA"`

type PlayersRepository struct {
	db *sql.DB
}

func NewPlayersRepository(db *sql.DB) *PlayersRepository {
	return &PlayersRepository{db: db}
}

func statArgs(s domain.StatLine) []any {
	return []any{s.Name, s.PA, s.BA, s.XBA, s.XBADiff, s.SLG, s.XSLG, s.XSLGDiff, s.WOBA, s.XWOBA, s.XWOBADiff}
}

func statDest(s *domain.StatLine) []any {
	return []any{&s.Name, &s.PA, &s.BA, &s.XBA, &s.XBADiff, &s.SLG, &s.XSLG, &s.XSLGDiff, &s.WOBA, &s.XWOBA, &s.XWOBADiff}
}

// replaceTable empties table and inserts one row per args entry inside a single
// transaction, so readers see either the old table or the new one.
func (r *PlayersRepository) replaceTable(ctx context.Context, table, insert string, rows [][]any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %v: %w", table, args[0], err)
		}
	}
	return tx.Commit()
}

func (r *PlayersRepository) ReplaceHitters(ctx context.Context, hitters []domain.Hitter) error {
	rows := make([][]any, 0, len(hitters))
	for _, h := range hitters {
		rows = append(rows, append(statArgs(h.StatLine), h.Positions.String()))
	}
	return r.replaceTable(ctx, "hitters",
		`INSERT INTO hitters(`+statColumns+`, POSITIONS) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, rows)
}

func (r *PlayersRepository) ReplacePitchers(ctx context.Context, pitchers []domain.Pitcher) error {
	rows := make([][]any, 0, len(pitchers))
	for _, p := range pitchers {
		rows = append(rows, append(statArgs(p.StatLine), p.ERA, p.XERA, p.ERADiff))
	}
	return r.replaceTable(ctx, "pitchers",
		`INSERT INTO pitchers(`+statColumns+`, ERA, xERA, "ERA-xERA") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, rows)
}

func scanHitter(sc interface{ Scan(...any) error }) (domain.Hitter, error) {
	var h domain.Hitter
	var positions sql.NullString
	if err := sc.Scan(append(statDest(&h.StatLine), &positions)...); err != nil {
		return domain.Hitter{}, err
	}
	set, err := domain.ParseEligibilitySet(positions.String)
	if err != nil {
		return domain.Hitter{}, fmt.Errorf("hitter %q: %w", h.Name, err)
	}
	h.Positions = set
	return h, nil
}

func (r *PlayersRepository) LoadHitters(ctx context.Context) ([]domain.Hitter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+statColumns+`, POSITIONS FROM hitters ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hitter{}
	for rows.Next() {
		h, err := scanHitter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *PlayersRepository) LoadPitchers(ctx context.Context) ([]domain.Pitcher, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+statColumns+`, ERA, xERA, "ERA-xERA" FROM pitchers ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Pitcher{}
	for rows.Next() {
		var p domain.Pitcher
		if err := rows.Scan(append(statDest(&p.StatLine), &p.ERA, &p.XERA, &p.ERADiff)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Hitter matches the stored name exactly first, then falls back to an
// accent- and case-insensitive comparison.
func (r *PlayersRepository) Hitter(ctx context.Context, name string) (domain.Hitter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+statColumns+`, POSITIONS FROM hitters WHERE name = ?`, name)
	h, err := scanHitter(row)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Hitter{}, err
	}

	all, err := r.LoadHitters(ctx)
	if err != nil {
		return domain.Hitter{}, err
	}
	want := domain.FoldName(name)
	for _, h := range all {
		if domain.FoldName(h.Name) == want {
			return h, nil
		}
	}
	return domain.Hitter{}, ports.ErrNotFound
}

func (r *PlayersRepository) ReplaceLookups(ctx context.Context, results []domain.LookupResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM eligibility_lookups`); err != nil {
		return err
	}
	for _, res := range results {
		// Later duplicates overwrite earlier ones, like the in-memory batch map.
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO eligibility_lookups(name, status, positions, detail)
			VALUES(?, ?, ?, ?)
		`, res.Name, string(res.Status), res.Positions.String(), res.Detail); err != nil {
			return fmt.Errorf("insert lookup %q: %w", res.Name, err)
		}
	}
	return tx.Commit()
}

func (r *PlayersRepository) LoadLookups(ctx context.Context) ([]domain.LookupResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, status, positions, detail FROM eligibility_lookups ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LookupResult{}
	for rows.Next() {
		var res domain.LookupResult
		var status, positions string
		if err := rows.Scan(&res.Name, &status, &positions, &res.Detail); err != nil {
			return nil, err
		}
		res.Status = domain.LookupStatus(status)
		if res.Positions, err = domain.ParseEligibilitySet(positions); err != nil {
			return nil, fmt.Errorf("lookup %q: %w", res.Name, err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
