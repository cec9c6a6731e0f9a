package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

var testLogger = zerolog.Nop()

// resultsTable renders a results table with one row per entry. Every row has 29
// cells: the name, games-played filler and an "E" marker in the mapped cells
// for the listed positions. Cell 27 always carries an "E" to prove trailing
// columns are never decoded.
func resultsTable(rows ...[]domain.Position) string {
	var b strings.Builder
	b.WriteString(`<table class="Tst-table Table"><thead><tr><th>Player</th></tr></thead><tbody>`)
	for i, positions := range rows {
		set := domain.NewEligibilitySet(positions...)
		cells := make([]string, 29)
		cells[0] = fmt.Sprintf("Player %d", i)
		for c := 1; c < len(cells); c++ {
			cells[c] = "12"
		}
		for _, col := range eligibilityColumns {
			cells[col.Cell] = "-"
			if set.Has(col.Position) {
				cells[col.Cell] = " E "
			}
		}
		cells[27] = "E"
		b.WriteString("<tr>")
		for _, c := range cells {
			b.WriteString("<td>" + c + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// fakePage answers searches from a name → behaviour table.
type fakePage struct {
	mu       sync.Mutex
	tables   map[string]string
	stalls   map[string]bool // never produce rows
	noInput  map[string]bool // search field never appears
	current  string
	searches []string
	closed   bool
}

func newFakePage() *fakePage {
	return &fakePage{tables: map[string]string{}, stalls: map[string]bool{}, noInput: map[string]bool{}}
}

func (p *fakePage) Search(ctx context.Context, query string) error {
	p.mu.Lock()
	p.searches = append(p.searches, query)
	blocked := p.noInput[query]
	p.mu.Unlock()
	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	p.current = query
	p.mu.Unlock()
	return nil
}

func (p *fakePage) WaitForRows(ctx context.Context) error {
	p.mu.Lock()
	stall := p.stalls[p.current]
	p.mu.Unlock()
	if stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *fakePage) ResultsHTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	html, ok := p.tables[p.current]
	if !ok {
		return "", ports.ErrNotFound
	}
	return html, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page    *fakePage
	openErr error
	opens   int
	url     string
}

func (b *fakeBrowser) Open(ctx context.Context, url string) (ports.SearchPage, error) {
	b.opens++
	b.url = url
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.page, nil
}

type fakeSource struct {
	rows  map[domain.PlayerKind][]domain.RawStatRow
	err   error
	calls int
}

func (s *fakeSource) ExpectedStats(ctx context.Context, kind domain.PlayerKind, season, minPA int) ([]domain.RawStatRow, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[kind], nil
}

type recordedLookup struct {
	status  domain.LookupStatus
	elapsed time.Duration
}

type fakeRecorder struct {
	lookups []recordedLookup
	runs    []domain.InitRun
}

func (r *fakeRecorder) ObserveLookup(status domain.LookupStatus, elapsed time.Duration) {
	r.lookups = append(r.lookups, recordedLookup{status: status, elapsed: elapsed})
}

func (r *fakeRecorder) ObserveRun(run domain.InitRun) {
	r.runs = append(r.runs, run)
}
