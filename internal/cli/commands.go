package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/xdraft/internal/app"
	"github.com/Guilhem-Bonnet/xdraft/internal/buildinfo"
	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/metrics"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func coldHint(err error) error {
	if errors.Is(err, app.ErrCacheCold) {
		return fmt.Errorf("%w: run 'xdraft init' first", err)
	}
	return err
}

type initSummary struct {
	Hitters  int             `json:"hitters"`
	Pitchers int             `json:"pitchers"`
	Status   app.CacheStatus `json:"status"`
}

func newInitCmd(st *state) *cobra.Command {
	var (
		refresh bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Populate the cache if it is cold, then summarise it",
		Long: `init fetches expected stats and scrapes position eligibility when the cache
has never been completed. A warm cache is returned as is unless --refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			svc, err := st.open(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			var tables domain.Tables
			if refresh {
				tables, err = svc.initializer.Refresh(ctx)
			} else {
				tables, err = svc.initializer.Initialize(ctx)
			}
			if err != nil {
				return err
			}
			status, err := svc.status.Status(ctx)
			if err != nil {
				return err
			}

			summary := initSummary{Hitters: len(tables.Hitters), Pitchers: len(tables.Pitchers), Status: status}
			if out == FormatJSON {
				return writeJSON(st.stdout, summary)
			}
			fmt.Fprintf(st.stdout, "%d hitters, %d pitchers cached\n", summary.Hitters, summary.Pitchers)
			return writeStatus(st.stdout, status)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Repopulate even if the cache is warm")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newHittersCmd(st *state) *cobra.Command {
	var (
		limit    int
		position string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "hitters [NAME]",
		Short: "List cached hitters by xwOBA, or show one hitter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			var pos domain.Position
			if position != "" {
				pos = domain.Position(position)
				if !pos.Valid() {
					return fmt.Errorf("unknown position %q", position)
				}
			}

			svc, err := st.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			var hitters []domain.Hitter
			if len(args) == 1 {
				h, err := svc.reads.Hitter(cmd.Context(), args[0])
				if errors.Is(err, app.ErrNotFound) {
					return fmt.Errorf("no cached hitter named %q", args[0])
				}
				if err != nil {
					return coldHint(err)
				}
				hitters = []domain.Hitter{h}
			} else {
				hitters, err = svc.reads.Hitters(cmd.Context(), pos, limit)
				if err != nil {
					return coldHint(err)
				}
			}
			if out == FormatJSON {
				return writeJSON(st.stdout, hitters)
			}
			return writeHitters(st.stdout, hitters)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most N hitters (0 = all)")
	cmd.Flags().StringVar(&position, "position", "", "Only hitters eligible at this position (e.g. SS, OF)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newPitchersCmd(st *state) *cobra.Command {
	var (
		limit  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "pitchers",
		Short: "List cached pitchers by xwOBA allowed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			svc, err := st.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			pitchers, err := svc.reads.Pitchers(cmd.Context(), limit)
			if err != nil {
				return coldHint(err)
			}
			if out == FormatJSON {
				return writeJSON(st.stdout, pitchers)
			}
			return writePitchers(st.stdout, pitchers)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most N pitchers (0 = all)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newLookupsCmd(st *state) *cobra.Command {
	var (
		status string
		format string
	)
	cmd := &cobra.Command{
		Use:   "lookups",
		Short: "Show eligibility lookup outcomes from the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			svc, err := st.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			results, err := svc.reads.Lookups(cmd.Context(), domain.LookupStatus(status))
			if err != nil {
				return coldHint(err)
			}
			if out == FormatJSON {
				return writeJSON(st.stdout, results)
			}
			return writeLookups(st.stdout, results)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only this outcome: ok, timeout, parse_error, browser_error")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newStatusCmd(st *state) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the cache is warm and the latest run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			svc, err := st.open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			status, err := svc.status.Status(cmd.Context())
			if err != nil {
				return err
			}
			if out == FormatJSON {
				return writeJSON(st.stdout, status)
			}
			return writeStatus(st.stdout, status)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newEligibilityCmd(st *state) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "eligibility NAME...",
		Short: "Look up position eligibility for players without touching the cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			batch, err := st.newEligibility(metrics.NewRecorder()).LookupAll(ctx, args)
			if err != nil {
				return err
			}
			if out == FormatJSON {
				return writeJSON(st.stdout, batch.Results)
			}
			return writeLookups(st.stdout, batch.Results)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newVersionCmd(st *state) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			info := buildinfo.Current()
			if out == FormatJSON {
				return writeJSON(st.stdout, info)
			}
			fmt.Fprintf(st.stdout, "xdraft %s\n", info)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
