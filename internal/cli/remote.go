package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var remoteEndpoints = map[string]string{
	"health":   "/api/v1/health",
	"version":  "/api/v1/version",
	"status":   "/api/v1/status",
	"hitters":  "/api/v1/hitters",
	"pitchers": "/api/v1/pitchers",
	"lookups":  "/api/v1/lookups",
}

func newRemoteCmd(st *state) *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:       "remote [health|version|status|hitters|pitchers|lookups] [NAME]",
		Short:     "Query a running xdraft server",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"health", "version", "status", "hitters", "pitchers", "lookups"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := remoteEndpoints[args[0]]
			if !ok {
				return fmt.Errorf("unknown endpoint %q", args[0])
			}
			if len(args) == 2 {
				if args[0] != "hitters" {
					return fmt.Errorf("only 'hitters' takes a name")
				}
				path += "/" + url.PathEscape(args[1])
			}
			client := &http.Client{Timeout: timeout}
			return fetchPretty(cmd, client, strings.TrimRight(server, "/")+path, st.stdout)
		},
	}
	cmd.Flags().StringVar(&server, "server", envOr("XDRAFT_SERVER_URL", "http://127.0.0.1:8080"), "Server URL (ex: http://127.0.0.1:8080)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP timeout")
	return cmd
}

func fetchPretty(cmd *cobra.Command, client *http.Client, target string, w io.Writer) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty any
	if err := json.Unmarshal(b, &pretty); err == nil {
		if err := writeJSON(w, pretty); err != nil {
			return err
		}
	} else {
		w.Write(b)
		w.Write([]byte("\n"))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
