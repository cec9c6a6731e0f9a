package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/xdraft/internal/config"
	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)


type EligibilityOptions struct {
	URL         string
	WaitTimeout time.Duration
}

func DefaultEligibilityOptions() EligibilityOptions {
	return EligibilityOptions{URL: config.DefaultEligibilityURL, WaitTimeout: config.DefaultWaitTimeout}
}

// LookupRecorder receives one observation per player lookup.
type LookupRecorder interface {
	ObserveLookup(status domain.LookupStatus, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLookup(domain.LookupStatus, time.Duration) {}

// EligibilityService drives one browser page through a sequence of player
// searches. The page is shared state: lookups never run concurrently.
type EligibilityService struct {
	logger   zerolog.Logger
	browser  ports.Browser
	opts     EligibilityOptions
	recorder LookupRecorder
}

func NewEligibilityService(logger zerolog.Logger, browser ports.Browser, opts EligibilityOptions) *EligibilityService {
	def := DefaultEligibilityOptions()
	if opts.URL == "" {
		opts.URL = def.URL
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = def.WaitTimeout
	}
	return &EligibilityService{logger: logger, browser: browser, opts: opts, recorder: nopRecorder{}}
}

func (s *EligibilityService) WithRecorder(r LookupRecorder) *EligibilityService {
	if r != nil {
		s.recorder = r
	}
	return s
}

type EligibilityBatch struct {
	// Results is in input order, one entry per requested name.
	Results []domain.LookupResult
	// Positions maps each name to its decoded set; later duplicates overwrite.
	Positions map[string]domain.EligibilitySet
	Failures  int
}

// LookupAll opens one page session and looks up every name in order. Per-player
// failures are reported in the batch, never as an error; only a session that
// cannot be opened or a cancelled ctx aborts the batch.
func (s *EligibilityService) LookupAll(ctx context.Context, names []string) (EligibilityBatch, error) {
	batch := EligibilityBatch{
		Results:   make([]domain.LookupResult, 0, len(names)),
		Positions: make(map[string]domain.EligibilitySet, len(names)),
	}
	if len(names) == 0 {
		return batch, nil
	}

	page, err := s.browser.Open(ctx, s.opts.URL)
	if err != nil {
		return batch, &CodedError{Code: CodeBrowser, Message: "open eligibility page", Err: err}
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("closing eligibility page")
		}
	}()

	started := time.Now()
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		res := s.Lookup(ctx, page, name)
		batch.Results = append(batch.Results, res)
		batch.Positions[name] = res.Positions
		if !res.OK() {
			batch.Failures++
		}
		if (i+1)%50 == 0 {
			s.logger.Info().Int("done", i+1).Int("total", len(names)).Int("failures", batch.Failures).Msg("eligibility progress")
		}
	}
	s.logger.Info().
		Int("players", len(names)).
		Int("failures", batch.Failures).
		Dur("elapsed", time.Since(started)).
		Msg("eligibility batch done")
	return batch, nil
}

// Lookup runs the search, wait and decode protocol for one player on an open
// page. Every step is bounded by the configured wait.
func (s *EligibilityService) Lookup(ctx context.Context, page ports.SearchPage, name string) (res domain.LookupResult) {
	started := time.Now()
	log := s.logger.With().Str("player", name).Logger()

	defer func() {
		if p := recover(); p != nil {
			res = domain.LookupResult{Name: name, Status: domain.LookupBrowserError, Detail: fmt.Sprintf("panic: %v", p)}
			log.Error().Interface("panic", p).Msg("eligibility lookup panicked")
		}
		s.recorder.ObserveLookup(res.Status, time.Since(started))
	}()

	if err := s.bounded(ctx, func(ctx context.Context) error { return page.Search(ctx, name) }); err != nil {
		return s.failure(log, name, "search", err)
	}
	if err := s.bounded(ctx, page.WaitForRows); err != nil {
		return s.failure(log, name, "results wait", err)
	}

	var tableHTML string
	err := s.bounded(ctx, func(ctx context.Context) error {
		var err error
		tableHTML, err = page.ResultsHTML(ctx)
		return err
	})
	if err != nil {
		return s.failure(log, name, "results table", err)
	}

	decoded, err := DecodeEligibility(tableHTML)
	if err != nil {
		return s.failure(log, name, "decode", err)
	}
	if decoded.Skipped > 0 {
		log.Warn().Int("rows", decoded.Rows).Int("skipped", decoded.Skipped).Msg("short result rows skipped")
	}
	if decoded.Rows-decoded.Skipped > 1 {
		log.Warn().Int("rows", decoded.Rows-decoded.Skipped).Msg("multiple result rows, positions merged")
	}
	log.Debug().Str("positions", decoded.Positions.String()).Msg("eligibility found")
	return domain.LookupResult{Name: name, Status: domain.LookupOK, Positions: decoded.Positions}
}

func (s *EligibilityService) bounded(ctx context.Context, step func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	return step(stepCtx)
}

func (s *EligibilityService) failure(log zerolog.Logger, name, stage string, err error) domain.LookupResult {
	status := classifyLookupError(err)
	log.Warn().Err(err).Str("stage", stage).Str("status", string(status)).Msg("eligibility lookup failed")
	return domain.LookupResult{Name: name, Status: status, Detail: stage + ": " + err.Error()}
}

func classifyLookupError(err error) domain.LookupStatus {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.LookupTimeout
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ErrNoResultsTable),
		errors.Is(err, ErrNoResultRows),
		errors.Is(err, ErrShortRow):
		return domain.LookupParseError
	default:
		return domain.LookupBrowserError
	}
}
