package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/signup"
)

// PromoteWaitlistCmd creates the promoteWaitlist command
func PromoteWaitlistCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "promoteWaitlist <shift_id>",
		Short: "Fill a shift's free places from its waitlist, oldest signup first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			promoted, err := signup.PromoteFromWaitlist(
				app.Ctx, app.Database, app.Notifier, app.Clock, app.Logger, args[0], nil)
			if err != nil {
				return err
			}

			if len(promoted) == 0 {
				fmt.Println("\nNo waitlisted volunteers to promote.")
				return nil
			}

			fmt.Printf("\n✓ Promoted %d volunteers:\n\n", len(promoted))
			for _, s := range promoted {
				fmt.Printf("  - %s (signup %s)\n", s.UserID, s.ID)
			}
			fmt.Println()

			return nil
		},
	}
}
