package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/httpapi"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/scheduler"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the volunteer portal API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := httpapi.New(app.Database, app.Registry, app.Notifier, app.Clock, app.Logger, httpapi.Config{
				MealsPerShift:  app.Cfg.MealsPerShiftEstimate,
				SurveyTokenTTL: app.Cfg.SurveyTokenTTL(),
			})

			// Background sweeps: no-show marking and survey assignment expiry.
			sched := scheduler.New(app.Database, app.Clock, app.Logger,
				app.Cfg.SchedulerInterval(), app.Cfg.NoShowGrace())
			go sched.Run(ctx)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Listen(app.Cfg.ListenAddr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				app.Logger.Info("Shutting down")
				return server.Shutdown()
			}
		},
	}
}
