package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/achievement"
)

// CheckAchievementsCmd creates the checkAchievements command
func CheckAchievementsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkAchievements <user_id>",
		Short: "Evaluate a volunteer's achievements and unlock any newly earned ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unlocked, err := achievement.CheckAndUnlock(
				app.Ctx, app.Database, app.Notifier, app.Clock, app.Logger,
				args[0], app.Cfg.MealsPerShiftEstimate)
			if err != nil {
				return err
			}

			if len(unlocked) == 0 {
				fmt.Println("\nNo new achievements unlocked.")
				return nil
			}

			fmt.Printf("\n✓ Unlocked %d achievements:\n\n", len(unlocked))
			for _, a := range unlocked {
				fmt.Printf("  - %s (%d points)\n", a.Name, a.Points)
			}
			fmt.Println()

			return nil
		},
	}
}
