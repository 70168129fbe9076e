package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/survey"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/scheduler"
)

// MarkNoShowsCmd creates the markNoShows command
func MarkNoShowsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "markNoShows",
		Short: "Run the lapse sweeps once: mark no-shows and expire lapsed survey assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grace := app.Cfg.NoShowGrace()
			if grace <= 0 {
				grace = scheduler.DefaultNoShowGrace
			}

			noShows, err := signup.MarkNoShows(app.Ctx, app.Database, app.Clock, app.Logger, grace)
			if err != nil {
				return err
			}

			expired, err := survey.ExpireLapsed(app.Ctx, app.Database, app.Clock, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Sweep complete\n\n")
			fmt.Printf("Signups marked NO_SHOW:      %d\n", noShows)
			fmt.Printf("Survey assignments expired:  %d\n\n", expired)

			return nil
		},
	}
}
