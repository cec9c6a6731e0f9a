package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/xdraft/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/xdraft/internal/buildinfo"
)

func newServeCmd(st *state) *cobra.Command {
	var (
		noInit  bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Initialise the cache if needed, then serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := st.logger.With().Str("component", "server").Logger()
			shutdownCtx, stop := signalContext(cmd.Context())
			defer stop()

			logger.Info().Interface("build", buildinfo.Current()).Str("db", st.cfg.DBPath).Msg("starting")

			svc, err := st.open(shutdownCtx)
			if err != nil {
				return err
			}
			defer svc.Close()

			// Un cache froid reste servi (503) si l'initialisation échoue.
			switch {
			case refresh:
				if _, err := svc.initializer.Refresh(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("refresh failed")
				}
			case !noInit:
				if _, err := svc.initializer.Initialize(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("initialization failed")
				}
			}
			if shutdownCtx.Err() != nil {
				return nil
			}

			srv := httpapi.NewServer(logger, svc.reads, svc.status, svc.recorder.Handler(), st.cfg.CORSOrigins)
			httpServer := &http.Server{
				Addr:              st.cfg.Addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", st.cfg.Addr).Msg("listening")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("http server crashed")
					errCh <- err
					stop()
				}
			}()

			<-shutdownCtx.Done()
			logger.Info().Msg("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(ctx)
			logger.Info().Msg("bye")

			select {
			case err := <-errCh:
				return err
			default:
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&st.cfg.Addr, "addr", st.cfg.Addr, "Listen address (ex: 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noInit, "no-init", false, "Serve the cache as is, even if cold")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Repopulate the cache before serving")
	return cmd
}
