package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/adapters/auth"
	"github.com/example/editorial/internal/adapters/httpapi"
	"github.com/example/editorial/internal/wire"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor and reviewer API over HTTP",
	Long: `Serve the editor and reviewer API. Every /api/v1 route needs a bearer token
signed with http.jwt_secret; mint one with "editorial token".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := wire.Default()
		if err != nil {
			return err
		}
		bind := a.Config.HTTP.Bind
		if cmd.Flags().Changed("bind") {
			bind, _ = cmd.Flags().GetString("bind")
		}
		tokens, err := auth.NewJWTProvider(a.Config.HTTP.JWTSecret)
		if err != nil {
			return fmt.Errorf("http.jwt_secret: %w", err)
		}

		gin.SetMode(gin.ReleaseMode)
		router := httpapi.NewRouter(httpapi.Services{
			Submissions:  a.Submissions,
			Rounds:       a.Rounds,
			Assignments:  a.Assignments,
			Participants: a.Participants,
			Queues:       a.Queues,
			Ledger:       a.Ledger,
			Forms:        a.Forms,
		}, tokens, httpapi.Options{Logger: a.Logger, Metrics: a.Metrics})

		srv := &http.Server{
			Addr:              bind,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.Logger.Info("http server listening", "addr", bind)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	serveCmd.Flags().String("bind", "", "Listen address (default from config)")
	return serveCmd
}
