package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/roster"
)

// GenerateShiftsCmd creates the generateShifts command
func GenerateShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generateShifts <from> <to>",
		Short: "Expand the configured roster templates into shifts over a date window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _, err := app.Clock.BoundsForDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			to, _, err := app.Clock.BoundsForDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}

			if len(app.Cfg.RosterTemplates) == 0 {
				return fmt.Errorf("no rosterTemplates configured")
			}

			totalCreated, totalSkipped := 0, 0
			fmt.Printf("\nGenerating shifts from %s to %s:\n\n", args[0], args[1])

			for _, tmpl := range app.Cfg.RosterTemplates {
				shiftType, err := app.Database.GetShiftTypeByName(app.Ctx, tmpl.ShiftType)
				if err != nil {
					return fmt.Errorf("unknown shift type %q: %w", tmpl.ShiftType, err)
				}

				result, err := roster.Generate(app.Ctx, app.Database, app.Clock, app.Logger, roster.Template{
					ShiftTypeID: shiftType.ID,
					Location:    tmpl.Location,
					RRule:       tmpl.RRule,
					StartTime:   tmpl.StartTime,
					EndTime:     tmpl.EndTime,
					Capacity:    tmpl.Capacity,
				}, from, to)
				if err != nil {
					return err
				}

				fmt.Printf("  %-25s %-15s created %d, skipped %d\n",
					tmpl.ShiftType, tmpl.Location, len(result.Created), result.Skipped)
				totalCreated += len(result.Created)
				totalSkipped += result.Skipped
			}

			fmt.Printf("\n✓ Done: %d shifts created, %d dates already staffed\n\n", totalCreated, totalSkipped)
			return nil
		},
	}
}
