package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

const (
	SearchInputSelector  = ".playersearch_ac.No-bdr.yui3-ysfplayersearch-input"
	ResultRowSelector    = "table.Tst-table tbody > tr"
	ResultsTableSelector = "table.Tst-table"
)

// clearRowsJS drops the previous player's rows so WaitForRows only sees
// results of the new search.
const clearRowsJS = `document.querySelectorAll(` + "'" + ResultRowSelector + "'" + `).forEach(function (r) { r.remove() })`

type Options struct {
	Headless bool
	// ExecPath overrides Chrome discovery; empty means chromedp's default lookup.
	ExecPath string
	// UserAgent is sent instead of the headless default when set.
	UserAgent string
}

func DefaultOptions() Options {
	return Options{Headless: true}
}

// Chrome launches one Chrome process per Open call.
type Chrome struct {
	logger zerolog.Logger
	opts   Options
}

func NewChrome(logger zerolog.Logger, opts Options) *Chrome {
	return &Chrome{logger: logger, opts: opts}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.WindowSize(1280, 1024),
	)
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}
	// Chrome refuses to start as root with its sandbox on (containers).
	if os.Geteuid() == 0 {
		opts = append(opts, chromedp.NoSandbox)
	}
	if c.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.opts.UserAgent))
	}
	return opts
}

// Open starts Chrome and navigates to url. The returned page owns the browser
// process; Close shuts it down, and so does ctx ending. Only the navigation
// is bounded by ctx's deadline.
func (c *Chrome) Open(ctx context.Context, url string) (ports.SearchPage, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), c.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.logger.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			c.logger.Warn().Msgf(format, args...)
		}),
	)

	p := &page{
		logger: c.logger,
		ctx:    browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}
	// The browser context itself carries no deadline; ctx ending still stops it.
	p.stop = context.AfterFunc(ctx, p.cancel)

	// The first Run starts Chrome and must use the browser context itself.
	if err := chromedp.Run(browserCtx); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	nav, cancelNav := stepContext(browserCtx, ctx)
	defer cancelNav()
	if err := chromedp.Run(nav, chromedp.Navigate(url)); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, stepErr(ctx, err))
	}
	c.logger.Info().Str("url", url).Bool("headless", c.opts.Headless).Msg("eligibility page opened")
	return p, nil
}

type page struct {
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool
	once   sync.Once
}

func (p *page) Search(ctx context.Context, query string) error {
	run, cancel := stepContext(p.ctx, ctx)
	defer cancel()
	err := chromedp.Run(run,
		chromedp.WaitReady(SearchInputSelector, chromedp.ByQuery),
		chromedp.Evaluate(clearRowsJS, nil),
		chromedp.Clear(SearchInputSelector, chromedp.ByQuery),
		chromedp.Click(SearchInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(SearchInputSelector, query+kb.Enter, chromedp.ByQuery),
	)
	return stepErr(ctx, err)
}

func (p *page) WaitForRows(ctx context.Context) error {
	run, cancel := stepContext(p.ctx, ctx)
	defer cancel()
	return stepErr(ctx, chromedp.Run(run, chromedp.WaitReady(ResultRowSelector, chromedp.ByQuery)))
}

func (p *page) ResultsHTML(ctx context.Context) (string, error) {
	run, cancel := stepContext(p.ctx, ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(run, chromedp.Nodes(ResultsTableSelector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return "", stepErr(ctx, err)
	}
	if len(nodes) == 0 {
		return "", ports.ErrNotFound
	}
	var html string
	if err := chromedp.Run(run, chromedp.OuterHTML([]cdp.NodeID{nodes[0].NodeID}, &html, chromedp.ByNodeID)); err != nil {
		return "", stepErr(ctx, err)
	}
	return html, nil
}

func (p *page) Close() error {
	p.once.Do(func() {
		if p.stop != nil {
			p.stop()
		}
		if err := chromedp.Cancel(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Debug().Err(err).Msg("chrome cancel")
		}
		p.cancel()
	})
	return nil
}

// stepContext derives a context from the browser context that carries the
// caller's deadline and ends when the caller's context does.
func stepContext(browserCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := callerCtx.Deadline(); ok {
		ctx, cancel = context.WithDeadline(browserCtx, deadline)
	} else {
		ctx, cancel = context.WithCancel(browserCtx)
	}
	stop := context.AfterFunc(callerCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// stepErr attaches the caller's context error so a step that ran out of time
// matches context.DeadlineExceeded.
func stepErr(callerCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if cerr := callerCtx.Err(); cerr != nil && !errors.Is(err, cerr) {
		return fmt.Errorf("%w: %v", cerr, err)
	}
	return err
}
