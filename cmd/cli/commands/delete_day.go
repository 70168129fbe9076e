package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
)

// DeleteDayCmd creates the deleteDay command
func DeleteDayCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteDay <date> <location>",
		Short: "Delete every shift on a civil day at a location, with its signups",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, location := args[0], args[1]

			result, err := signup.DeleteShiftsByDayLocation(
				app.Ctx, app.Database, app.Notifier, app.Clock, app.Logger, date, location)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Deleted %d shifts on %s at %s\n\n", result.DeletedShifts, date, location)
			fmt.Printf("Signups removed:     %d\n", result.DeletedSignups)
			fmt.Printf("Volunteers affected: %d\n", len(result.AffectedVolunteers))
			for _, userID := range result.AffectedVolunteers {
				fmt.Printf("  - %s\n", userID)
			}
			fmt.Println()

			return nil
		},
	}
}
