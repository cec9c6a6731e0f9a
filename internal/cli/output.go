package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/app"
	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(raw string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	if f != FormatText && f != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", raw)
	}
	return f, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHitters(w io.Writer, hitters []domain.Hitter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tName\tPA\tBA\txBA\tSLG\txSLG\twOBA\txwOBA\txwOBA-wOBA\tPositions\t")
	for i, h := range hitters {
		pos := h.Positions.String()
		if pos == "" {
			pos = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%+.3f\t%s\t\n",
			i+1, h.Name, h.PA, h.BA, h.XBA, h.SLG, h.XSLG, h.WOBA, h.XWOBA, h.XWOBADiff, pos)
	}
	return tw.Flush()
}

func writePitchers(w io.Writer, pitchers []domain.Pitcher) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tName\tPA\twOBA\txwOBA\txwOBA-wOBA\tERA\txERA\tERA-xERA\t")
	for i, p := range pitchers {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.3f\t%+.3f\t%.2f\t%.2f\t%+.2f\t\n",
			i+1, p.Name, p.PA, p.WOBA, p.XWOBA, p.XWOBADiff, p.ERA, p.XERA, p.ERADiff)
	}
	return tw.Flush()
}

func writeLookups(w io.Writer, results []domain.LookupResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tStatus\tPositions\tDetail")
	for _, r := range results {
		pos := r.Positions.String()
		if pos == "" {
			pos = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Status, pos, r.Detail)
	}
	return tw.Flush()
}

func writeStatus(w io.Writer, st app.CacheStatus) error {
	state := "cold"
	if st.Warm {
		state = "warm"
	}
	fmt.Fprintf(w, "Cache:        %s\n", state)
	fmt.Fprintf(w, "Last updated: %s\n", st.LastUpdated)
	if st.LatestRun == nil {
		fmt.Fprintln(w, "Latest run:   none")
		return nil
	}
	r := st.LatestRun
	fmt.Fprintf(w, "Latest run:   %s (%s)\n", r.ID, r.State)
	fmt.Fprintf(w, "  season %d, min PA %d, started %s\n", r.Season, r.MinPA, r.StartedAt.Format("2006-01-02 15:04:05"))
	if r.FinishedAt != nil {
		fmt.Fprintf(w, "  finished %s after %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"), r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(w, "  hitters %d, pitchers %d, lookup failures %d\n", r.Hitters, r.Pitchers, r.LookupFailures)
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
	return nil
}
