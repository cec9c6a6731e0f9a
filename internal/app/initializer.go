package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

// EligibilityLookup is the batch side of EligibilityService.
type EligibilityLookup interface {
	LookupAll(ctx context.Context, names []string) (EligibilityBatch, error)
}

// StatsProvider is the normalised side of StatsService.
type StatsProvider interface {
	Batters(ctx context.Context) ([]domain.Hitter, error)
	Pitchers(ctx context.Context) ([]domain.Pitcher, error)
}

// RunRecorder receives the terminal state of every cold initialisation.
type RunRecorder interface {
	ObserveRun(run domain.InitRun)
}

type InitializerDeps struct {
	Stats       StatsProvider
	Eligibility EligibilityLookup
	Players     ports.PlayerCache
	Metadata    ports.MetadataStore
	Runs        ports.RunStore
	Recorder    RunRecorder
}

// Initializer fills the cache on first use and serves it afterwards. The cache
// is warm only while the latest run is recorded as complete, so a failed or
// interrupted initialisation (or refresh) is retried from scratch on the next
// call.
type Initializer struct {
	logger zerolog.Logger
	deps   InitializerDeps
	season int
	minPA  int
	now    func() time.Time
}

func NewInitializer(logger zerolog.Logger, deps InitializerDeps, season, minPA int) *Initializer {
	return &Initializer{logger: logger, deps: deps, season: season, minPA: minPA, now: time.Now}
}

// Warm reports whether the latest initialisation completed.
func (in *Initializer) Warm(ctx context.Context) (bool, error) {
	ok, err := in.deps.Runs.LatestRunComplete(ctx)
	if err != nil {
		return false, &CodedError{Code: CodeCacheRead, Message: "read init status", Err: err}
	}
	return ok, nil
}

// Initialize populates a cold cache, then loads both tables.
func (in *Initializer) Initialize(ctx context.Context) (domain.Tables, error) {
	warm, err := in.Warm(ctx)
	if err != nil {
		return domain.Tables{}, err
	}
	if !warm {
		if err := in.populate(ctx); err != nil {
			return domain.Tables{}, err
		}
	}
	return in.Load(ctx)
}

// Refresh repopulates the cache regardless of its state, then loads it.
func (in *Initializer) Refresh(ctx context.Context) (domain.Tables, error) {
	if err := in.populate(ctx); err != nil {
		return domain.Tables{}, err
	}
	return in.Load(ctx)
}

func (in *Initializer) Load(ctx context.Context) (domain.Tables, error) {
	hitters, err := in.deps.Players.LoadHitters(ctx)
	if err != nil {
		return domain.Tables{}, &CodedError{Code: CodeCacheRead, Message: "load hitters", Err: err}
	}
	pitchers, err := in.deps.Players.LoadPitchers(ctx)
	if err != nil {
		return domain.Tables{}, &CodedError{Code: CodeCacheRead, Message: "load pitchers", Err: err}
	}
	return domain.Tables{Hitters: hitters, Pitchers: pitchers}, nil
}

func (in *Initializer) populate(ctx context.Context) error {
	run, err := in.deps.Runs.CreateRun(ctx, domain.InitRun{
		ID:        xid.New().String(),
		State:     domain.RunRunning,
		Season:    in.season,
		MinPA:     in.minPA,
		StartedAt: in.now().UTC(),
	})
	if err != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "create init run", Err: err}
	}
	log := in.logger.With().Str("run", run.ID).Logger()
	log.Info().Int("season", in.season).Int("min_pa", in.minPA).Msg("cold cache, initializing")

	err = in.fill(ctx, &run)
	run.FinishedAt = in.now().UTC()
	if err != nil {
		run.State = domain.RunFailed
		run.ErrorMessage = err.Error()
	} else {
		run.State = domain.RunComplete
	}

	// Recording the outcome must survive a cancelled ctx.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	finished, finishErr := in.deps.Runs.FinishRun(finishCtx, run)
	if finishErr == nil {
		run = finished
	}
	if in.deps.Recorder != nil {
		in.deps.Recorder.ObserveRun(run)
	}

	if err != nil {
		log.Error().Err(err).Msg("initialization failed")
		return err
	}
	if finishErr != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "finish init run", Err: finishErr}
	}
	log.Info().
		Int("hitters", run.Hitters).
		Int("pitchers", run.Pitchers).
		Int("lookup_failures", run.LookupFailures).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("initialization complete")
	return nil
}

func (in *Initializer) fill(ctx context.Context, run *domain.InitRun) error {
	hitters, err := in.deps.Stats.Batters(ctx)
	if err != nil {
		return &CodedError{Code: CodeStatsFetch, Message: "batters", Err: err}
	}
	pitchers, err := in.deps.Stats.Pitchers(ctx)
	if err != nil {
		return &CodedError{Code: CodeStatsFetch, Message: "pitchers", Err: err}
	}

	names := make([]string, 0, len(hitters))
	for _, h := range hitters {
		names = append(names, h.Name)
	}
	batch, err := in.deps.Eligibility.LookupAll(ctx, names)
	if err != nil {
		var coded *CodedError
		if errors.As(err, &coded) {
			return err
		}
		return &CodedError{Code: CodeBrowser, Message: "eligibility", Err: err}
	}
	for i := range hitters {
		hitters[i].Positions = batch.Positions[hitters[i].Name]
	}

	if err := in.deps.Players.ReplaceHitters(ctx, hitters); err != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "save hitters", Err: err}
	}
	if err := in.deps.Players.ReplacePitchers(ctx, pitchers); err != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "save pitchers", Err: err}
	}
	if err := in.deps.Players.ReplaceLookups(ctx, batch.Results); err != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "save lookups", Err: err}
	}
	if _, err := in.deps.Metadata.TouchLastUpdated(ctx); err != nil {
		return &CodedError{Code: CodeCacheWrite, Message: "stamp last_updated", Err: err}
	}

	run.Hitters = len(hitters)
	run.Pitchers = len(pitchers)
	run.LookupFailures = batch.Failures
	return nil
}
