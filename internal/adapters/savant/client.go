// Package savant reads the Baseball Savant expected-statistics leaderboard.
package savant

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

const DefaultBaseURL = "https://baseballsavant.mlb.com"

var ErrMissingColumn = errors.New("missing column")

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) WithBaseURL(base string) *Client {
	if strings.TrimSpace(base) != "" {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return c
}

func (c *Client) leaderboardURL(kind domain.PlayerKind, season, minPA int) string {
	q := url.Values{}
	q.Set("type", string(kind))
	q.Set("year", strconv.Itoa(season))
	q.Set("position", "")
	q.Set("team", "")
	q.Set("min", strconv.Itoa(minPA))
	q.Set("csv", "true")
	return c.baseURL + "/leaderboard/expected_statistics?" + q.Encode()
}

// ExpectedStats downloads one leaderboard. Names are returned exactly as
// published ("Last, First"); normalisation happens in the app layer.
func (c *Client) ExpectedStats(ctx context.Context, kind domain.PlayerKind, season, minPA int) ([]domain.RawStatRow, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.leaderboardURL(kind, season, minPA), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv,*/*;q=0.1")
	req.Header.Set("User-Agent", "xdraft")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("savant %s leaderboard: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("savant %s leaderboard http error: %s", kind, resp.Status)
	}
	rows, err := ParseExpectedStats(resp.Body, kind)
	if err != nil {
		return nil, fmt.Errorf("savant %s leaderboard: %w", kind, err)
	}
	return rows, nil
}

// ParseExpectedStats decodes the leaderboard CSV by header name. Identifier,
// year and batted-ball count columns are ignored.
func ParseExpectedStats(r io.Reader, kind domain.PlayerKind) ([]domain.RawStatRow, error) {
	br := bufio.NewReader(r)
	// Savant prefixes the file with a UTF-8 byte order mark.
	if ch, _, err := br.ReadRune(); err == nil && ch != '\ufeff' {
		_ = br.UnreadRune()
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	cols := indexColumns(header)

	required := []string{"pa", "ba", "est_ba", "est_ba_minus_ba_diff", "slg", "est_slg", "est_slg_minus_slg_diff", "woba", "est_woba", "est_woba_minus_woba_diff"}
	if kind == domain.KindPitcher {
		required = append(required, "era", "xera", "era_minus_xera_diff")
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	nameCol, ok := cols["last_name, first_name"]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, "last_name, first_name")
	}

	out := []domain.RawStatRow{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		p := fieldParser{rec: rec, cols: cols}
		row := domain.RawStatRow{}
		row.Name = p.str(nameCol)
		row.PA = p.int("pa")
		row.BA = p.float("ba")
		row.XBA = p.float("est_ba")
		row.XBADiff = p.float("est_ba_minus_ba_diff")
		row.SLG = p.float("slg")
		row.XSLG = p.float("est_slg")
		row.XSLGDiff = p.float("est_slg_minus_slg_diff")
		row.WOBA = p.float("woba")
		row.XWOBA = p.float("est_woba")
		row.XWOBADiff = p.float("est_woba_minus_woba_diff")
		if kind == domain.KindPitcher {
			row.ERA = p.float("era")
			row.XERA = p.float("xera")
			row.ERADiff = p.float("era_minus_xera_diff")
		}
		if p.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, p.err)
		}
		out = append(out, row)
	}
	return out, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// fieldParser keeps the first conversion error so a row is parsed in one pass.
type fieldParser struct {
	rec  []string
	cols map[string]int
	err  error
}

func (p *fieldParser) str(idx int) string {
	if idx >= len(p.rec) {
		return ""
	}
	return strings.TrimSpace(p.rec[idx])
}

func (p *fieldParser) float(col string) float64 {
	raw := p.str(p.cols[col])
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
		return 0
	}
	return v
}

func (p *fieldParser) int(col string) int {
	raw := p.str(p.cols[col])
	if raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
		return 0
	}
	return v
}
