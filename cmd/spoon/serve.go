package spoon

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/api"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/app"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger = app.NewLogger(cmd.ErrOrStderr(), env.LogLevel, true)
		addr := env.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		gin.SetMode(gin.ReleaseMode)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			store, state, err := newState(ctx, sqldb)
			if err != nil {
				return err
			}
			barcode, err := barcodeProviders(ctx, sqldb)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           (&api.Server{Store: store, State: state, Barcode: barcode, Logger: logger}).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.ListenAndServe() }()
			logger.Info("listening", "addr", addr)

			select {
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
			}

			// The signal context is already done; shutdown gets a fresh deadline.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("shutting down")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown failed", "error", err)
			}
			return state.Close(shutdownCtx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default $SPOON_ADDR or localhost:8080)")
}
