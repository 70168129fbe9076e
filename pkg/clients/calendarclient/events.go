package calendarclient

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// shiftIDProperty keys calendar events back to the shift that produced them.
const shiftIDProperty = "volunteerShiftID"

// ShiftEvent is one shift rendered as a calendar event.
type ShiftEvent struct {
	ShiftID     string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// PublishResult reports what PublishShifts changed.
type PublishResult struct {
	Created int
	Updated int
}

// PublishShifts upserts one calendar event per shift. Events are matched by
// the shift ID stored in the event's private extended properties, so
// republishing a window updates events in place instead of duplicating them.
func (c *Client) PublishShifts(calendarID string, events []ShiftEvent) (*PublishResult, error) {
	result := &PublishResult{}

	for _, ev := range events {
		event := &calendar.Event{
			Summary:     ev.Summary,
			Location:    ev.Location,
			Description: ev.Description,
			Start: &calendar.EventDateTime{
				DateTime: ev.Start.Format(time.RFC3339),
				TimeZone: ev.Timezone,
			},
			End: &calendar.EventDateTime{
				DateTime: ev.End.Format(time.RFC3339),
				TimeZone: ev.Timezone,
			},
			ExtendedProperties: &calendar.EventExtendedProperties{
				Private: map[string]string{shiftIDProperty: ev.ShiftID},
			},
		}

		existing, err := c.findEventByShiftID(calendarID, ev.ShiftID)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			if _, err := c.service.Events.Insert(calendarID, event).Do(); err != nil {
				return nil, fmt.Errorf("failed to insert event for shift %s: %w", ev.ShiftID, err)
			}
			result.Created++
			continue
		}

		if _, err := c.service.Events.Update(calendarID, existing.Id, event).Do(); err != nil {
			return nil, fmt.Errorf("failed to update event for shift %s: %w", ev.ShiftID, err)
		}
		result.Updated++
	}

	return result, nil
}

// findEventByShiftID looks up the event previously published for a shift.
// Returns nil when the shift has never been published.
func (c *Client) findEventByShiftID(calendarID, shiftID string) (*calendar.Event, error) {
	list, err := c.service.Events.List(calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", shiftIDProperty, shiftID)).
		MaxResults(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events for shift %s: %w", shiftID, err)
	}

	if len(list.Items) == 0 {
		return nil, nil
	}
	return list.Items[0], nil
}
