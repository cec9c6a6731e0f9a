package cli

import (
	"context"

	"github.com/Guilhem-Bonnet/xdraft/internal/adapters/browser"
	"github.com/Guilhem-Bonnet/xdraft/internal/adapters/savant"
	"github.com/Guilhem-Bonnet/xdraft/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/xdraft/internal/app"
	"github.com/Guilhem-Bonnet/xdraft/internal/metrics"
)

// services is everything a command may need, built over one cache handle.
type services struct {
	db       *sqlite.DB
	recorder *metrics.Recorder

	players     *sqlite.PlayersRepository
	metadata    *sqlite.MetadataRepository
	runs        *sqlite.RunsRepository
	eligibility *app.EligibilityService
	initializer *app.Initializer
	reads       *app.PlayersService
	status      *app.StatusService
}

func (st *state) open(ctx context.Context) (*services, error) {
	db, err := sqlite.Open(ctx, st.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	st.logger.Debug().Str("db", st.cfg.DBPath).Msg("cache opened")

	rec := metrics.NewRecorder()
	s := &services{
		db:       db,
		recorder: rec,
		players:  sqlite.NewPlayersRepository(db.SQL),
		metadata: sqlite.NewMetadataRepository(db.SQL),
		runs:     sqlite.NewRunsRepository(db.SQL),
	}

	s.eligibility = st.newEligibility(rec)

	stats := app.NewStatsService(
		st.logger.With().Str("component", "stats").Logger(),
		savant.NewClient().WithBaseURL(st.cfg.SavantURL),
		st.cfg.Season,
		st.cfg.MinPA,
	)
	s.initializer = app.NewInitializer(st.logger.With().Str("component", "init").Logger(), app.InitializerDeps{
		Stats:       stats,
		Eligibility: s.eligibility,
		Players:     s.players,
		Metadata:    s.metadata,
		Runs:        s.runs,
		Recorder:    rec,
	}, st.cfg.Season, st.cfg.MinPA)
	s.reads = app.NewPlayersService(s.players, s.runs)
	s.status = app.NewStatusService(s.metadata, s.runs)
	return s, nil
}

func (st *state) newEligibility(rec *metrics.Recorder) *app.EligibilityService {
	chrome := browser.NewChrome(st.logger.With().Str("component", "chrome").Logger(), browser.Options{
		Headless:  st.cfg.Headless,
		ExecPath:  st.cfg.ChromePath,
		UserAgent: st.cfg.UserAgent,
	})
	return app.NewEligibilityService(
		st.logger.With().Str("component", "eligibility").Logger(),
		chrome,
		app.EligibilityOptions{URL: st.cfg.EligibilityURL, WaitTimeout: st.cfg.WaitTimeout},
	).WithRecorder(rec)
}

func (s *services) Close() error {
	return s.db.Close()
}
