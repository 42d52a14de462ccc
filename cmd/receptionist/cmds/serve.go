package cmds

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/sudo-god/AI-Receptionist/pkg/server"
	"golang.org/x/sync/errgroup"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the receptionist over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("address"); addr != "" {
				cfg.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(context.Background()); err != nil {
					log.Warn().Err(err).Msg("failed to close app")
				}
			}()

			srv := &http.Server{
				Addr:         cfg.Server.Address,
				Handler:      server.NewHandler(app.Supervisor),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				return app.Events.Run(ctx)
			})
			eg.Go(func() error {
				log.Info().Str("address", srv.Addr).Msg("Starting receptionist server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				log.Info().Msg("Shutting down receptionist server")
				return srv.Shutdown(shutdownCtx)
			})
			return eg.Wait()
		},
	}
	cmd.Flags().String("address", "", "Listen address (overrides server.address)")
	return cmd
}
