package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/survey"
)

// AssignSurveyCmd creates the assignSurvey command
func AssignSurveyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignSurvey <survey_id> <user_id>...",
		Short: "Assign a survey to the given volunteers, issuing one token each",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := survey.ManuallyAssign(
				app.Ctx, app.Database, app.Notifier, app.Clock, app.Logger,
				args[0], args[1:], app.Cfg.SurveyTokenTTL())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Survey assignment finished\n\n")
			fmt.Printf("Assigned: %d\n", len(result.Assigned))
			for _, userID := range result.Assigned {
				fmt.Printf("  - %s\n", userID)
			}
			if len(result.Skipped) > 0 {
				fmt.Printf("Skipped (unknown or already assigned): %d\n", len(result.Skipped))
				for _, userID := range result.Skipped {
					fmt.Printf("  - %s\n", userID)
				}
			}
			fmt.Println()

			return nil
		},
	}
}

// EligibleUsersCmd creates the eligibleUsers command
func EligibleUsersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "eligibleUsers <survey_id>",
		Short: "Preview which volunteers a trigger survey would reach, without assigning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := survey.FindEligibleUsers(app.Ctx, app.Database, app.Clock, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n%d volunteers eligible:\n\n", result.TotalEligible)
			for _, userID := range result.EligibleUserIDs {
				fmt.Printf("  - %s\n", userID)
			}
			fmt.Println()

			return nil
		},
	}
}
