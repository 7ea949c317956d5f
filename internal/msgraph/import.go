package msgraph

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// Importer files requests for the current user.
type Importer interface {
	RequestByExternalID(externalID string) (model.RequestItem, bool)
	CreateRequest(d request.Draft, opts request.CreateOptions) (model.RequestItem, error)
	UpdateRequest(id string, d request.Draft, version int) (model.RequestItem, error)
}

// ImportResult holds counters for an import run.
type ImportResult struct {
	Imported int
	Updated  int
	Skipped  int
	Errors   int
}

// ImportOptions configures an import run.
type ImportOptions struct {
	// Timezone is the IANA timezone event times are expressed in.
	Timezone string
	DryRun   bool
	// Out receives one progress line per event.
	Out io.Writer
}

// parseGraphTime parses a Graph dateTime. Graph omits the zone suffix when
// a Prefer: outlook.timezone header is set, e.g. "2026-02-27T09:00:00.0000000".
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip reports events that do not describe an absence: cancelled,
// private, or shown as anything but out-of-office or working elsewhere.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled:
		return true
	case event.Sensitivity == "private":
		return true
	case event.ShowAs != "oof" && event.ShowAs != "workingElsewhere":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

func buildReason(event CalendarEvent) string {
	parts := []string{}
	if s := strings.TrimSpace(event.Subject); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(event.BodyPreview); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "Imported from Outlook"
	}
	return strings.Join(parts, ": ")
}

func remoteLocation(displayName string) model.LocationType {
	name := strings.ToLower(displayName)
	if name == "" || strings.Contains(name, "home") || strings.Contains(name, "remote") {
		return model.LocationHome
	}
	return model.LocationCustomerSite
}

// MapEvent converts an out-of-office or working-elsewhere event into a
// request draft. Out-of-office time within one day becomes a Permission,
// longer absences a Leave; working elsewhere becomes a Location Exception.
func MapEvent(event CalendarEvent, timezone string) (request.Draft, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return request.Draft{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return request.Draft{}, fmt.Errorf("parsing end time: %w", err)
	}
	if !end.After(start) {
		return request.Draft{}, fmt.Errorf("event ends at %s before it starts at %s", event.End.DateTime, event.Start.DateTime)
	}

	// The end is exclusive: an all-day event ends at midnight of the next day.
	lastDay := end.Add(-time.Nanosecond)
	wholeDays := event.IsAllDay || !timecalc.SameDay(start, lastDay)
	d := request.Draft{
		StartDate: timecalc.DayKey(start),
		Reason:    buildReason(event),
	}
	if wholeDays && !timecalc.SameDay(start, lastDay) {
		d.EndDate = timecalc.DayKey(lastDay)
	}

	switch event.ShowAs {
	case "oof":
		if wholeDays {
			d.Type = model.RequestLeave
			d.Details = model.LeaveDetails{Duration: model.FullDay}
		} else {
			d.Type = model.RequestPermission
			d.Details = model.PermissionDetails{StartTime: start.Format("15:04"), EndTime: end.Format("15:04")}
		}
	case "workingElsewhere":
		duration := model.FullDay
		if !wholeDays {
			duration = start.Format("15:04") + "-" + end.Format("15:04")
		}
		d.Type = model.RequestLocationException
		d.Details = model.LocationExceptionDetails{LocationType: remoteLocation(event.Location.DisplayName), Duration: duration}
	default:
		return request.Draft{}, fmt.Errorf("event shown as %q is not an absence", event.ShowAs)
	}
	return d, nil
}

func sameDraft(item model.RequestItem, d request.Draft) bool {
	return item.Type == d.Type && item.StartDate == d.StartDate && item.EndDate == d.EndDate &&
		item.Reason == d.Reason && item.Details == d.Details
}

// ImportEvents files a request for every absence event. Events already
// imported are matched by their Graph ID: unchanged ones are skipped and
// changed ones update the request while it is still pending.
func ImportEvents(imp Importer, events []CalendarEvent, opts ImportOptions) ImportResult {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	var result ImportResult

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		d, err := MapEvent(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		existing, found := imp.RequestByExternalID(event.ID)
		switch {
		case found && sameDraft(existing, d):
			fmt.Fprintf(out, "  - Skipped:  %s (already imported)\n", event.Subject)
			result.Skipped++
			continue
		case found && !existing.Status.Editable():
			fmt.Fprintf(out, "  - Skipped:  %s (request %s is %s)\n", event.Subject, existing.ID, existing.Status)
			result.Skipped++
			continue
		case found:
			if !opts.DryRun {
				if _, err := imp.UpdateRequest(existing.ID, d, existing.Version); err != nil {
					fmt.Fprintf(out, "  ! Error updating %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			fmt.Fprintf(out, "  ^ Updated:  %s (%s %s)\n", event.Subject, d.Type, d.StartDate)
			result.Updated++
			continue
		}

		if !opts.DryRun {
			if _, err := imp.CreateRequest(d, request.CreateOptions{ExternalID: event.ID, IdempotencyKey: "outlook:" + event.ID}); err != nil {
				fmt.Fprintf(out, "  ! Error importing %q: %v\n", event.Subject, err)
				result.Errors++
				continue
			}
		}
		fmt.Fprintf(out, "  + Imported: %s (%s %s)\n", event.Subject, d.Type, d.StartDate)
		result.Imported++
	}
	return result
}
