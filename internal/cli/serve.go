package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadp "loan-backoffice/internal/adapter/http"
	mw "loan-backoffice/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			e := echo.New()
			e.HideBanner = true
			e.Validator = httpadp.NewValidator()
			e.Use(middleware.Logger(), middleware.Recover(), mw.Metrics())

			var mutating []echo.MiddlewareFunc
			if a.rdb != nil {
				mutating = append(mutating, mw.Idempotency(a.rdb, a.cfg.IdempotencyTTL()))
			}
			httpadp.Register(e, a.handlers(), mutating...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := ":" + a.cfg.AppPort
			go func() {
				log.Printf("listening on %s", addr)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("server: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
