package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/internal/config"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/clients/calendarclient"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/core/roster"
)

// PublishCalendarCmd creates the publishCalendar command
func PublishCalendarCmd(app *AppContext) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "publishCalendar <from> <to>",
		Short: "Publish the shift roster to the configured Google Calendar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.Calendar == nil {
				return fmt.Errorf("no calendar configured (set calendar.calendarID in the config file)")
			}

			from, _, err := app.Clock.BoundsForDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			to, _, err := app.Clock.BoundsForDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}

			pub, err := roster.BuildPublication(app.Ctx, app.Database, app.Clock, app.Logger, from, to, location)
			if err != nil {
				return err
			}
			if len(pub.Entries) == 0 {
				fmt.Println("\nNo shifts in the window - nothing to publish.")
				return nil
			}

			// The calendar client is built here rather than at startup so
			// only this command triggers the OAuth flow.
			oauthCfg, err := config.LoadOAuthClient(app.Cfg.Calendar.OAuthClientPath)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}
			client, err := calendarclient.NewClient(app.Ctx, oauthCfg, app.Cfg.Calendar.TokenPath)
			if err != nil {
				return fmt.Errorf("failed to create calendar client: %w", err)
			}

			events := make([]calendarclient.ShiftEvent, len(pub.Entries))
			for i, e := range pub.Entries {
				events[i] = calendarclient.ShiftEvent{
					ShiftID:     e.ShiftID,
					Summary:     fmt.Sprintf("%s @ %s", e.ShiftType, e.Location),
					Location:    e.Location,
					Description: fmt.Sprintf("%d of %d places filled", e.Confirmed, e.Capacity),
					Start:       e.Start,
					End:         e.End,
					Timezone:    app.Cfg.Timezone,
				}
			}

			result, err := client.PublishShifts(app.Cfg.Calendar.CalendarID, events)
			if err != nil {
				return fmt.Errorf("failed to publish shifts: %w", err)
			}

			fmt.Printf("\n✓ Roster published to calendar\n\n")
			fmt.Printf("Calendar ID:    %s\n", app.Cfg.Calendar.CalendarID)
			fmt.Printf("Events created: %d\n", result.Created)
			fmt.Printf("Events updated: %d\n\n", result.Updated)

			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Restrict publishing to one location")

	return cmd
}
