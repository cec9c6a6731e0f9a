package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/xdraft/internal/buildinfo"
	"github.com/Guilhem-Bonnet/xdraft/internal/config"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// state is shared by the subcommands of one root command.
type state struct {
	cfg     config.Config
	logJSON bool
	logger  zerolog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCmd builds the command tree. Output goes to stdout, logs to stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	st := &state{cfg: config.Default(), stdout: stdout, stderr: stderr, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "xdraft",
		Short: "Draft board of Statcast expected stats with fantasy position eligibility",
		Long: `xdraft fetches Baseball Savant expected statistics for hitters and pitchers,
looks up each hitter's fantasy position eligibility in a headless browser and
keeps both tables in a local SQLite cache.`,
		Version:       buildinfo.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := st.cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(st.stderr, st.cfg.LogLevel, st.logJSON)
			if err != nil {
				return err
			}
			st.logger = logger
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.PersistentFlags()
	f.StringVar(&st.cfg.DBPath, "db", st.cfg.DBPath, "SQLite cache file")
	f.IntVar(&st.cfg.Season, "season", st.cfg.Season, "Season to fetch")
	f.IntVar(&st.cfg.MinPA, "min-pa", st.cfg.MinPA, "Keep players with strictly more plate appearances")
	f.StringVar(&st.cfg.SavantURL, "savant-url", st.cfg.SavantURL, "Baseball Savant base URL")
	f.StringVar(&st.cfg.EligibilityURL, "eligibility-url", st.cfg.EligibilityURL, "Position eligibility page")
	f.DurationVar(&st.cfg.WaitTimeout, "wait-timeout", st.cfg.WaitTimeout, "Bound on each browser step")
	f.BoolVar(&st.cfg.Headless, "headless", st.cfg.Headless, "Run Chrome headless")
	f.StringVar(&st.cfg.ChromePath, "chrome-path", st.cfg.ChromePath, "Chrome executable (default: auto-detect)")
	f.StringVar(&st.cfg.UserAgent, "user-agent", st.cfg.UserAgent, "User-Agent sent by Chrome (default: Chrome's own)")
	f.StringVar(&st.cfg.LogLevel, "log-level", st.cfg.LogLevel, "Log level: debug, info, warn, error")
	f.BoolVar(&st.logJSON, "log-json", false, "Write logs as JSON instead of console text")

	cmd.AddCommand(
		newInitCmd(st),
		newHittersCmd(st),
		newPitchersCmd(st),
		newLookupsCmd(st),
		newStatusCmd(st),
		newEligibilityCmd(st),
		newServeCmd(st),
		newRemoteCmd(st),
		newVersionCmd(st),
	)
	return cmd
}

func newLogger(w io.Writer, level string, asJSON bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := w
	if !asJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "xdraft").Logger(), nil
}

// Execute runs the CLI against the process streams and exits on error.
func Execute() {
	if err := NewRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
