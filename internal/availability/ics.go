package availability

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

const icsProductID = "-//stay-booking//availability//EN"

// ExportICS renders a snapshot as an iCalendar feed of all-day events, one
// per approved stay and per block, so hosts can mirror availability in
// external calendars. Guest identities are not exported.
func ExportICS(snap *Snapshot, calendarName string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	if calendarName != "" {
		cal.SetXWRCalName(calendarName)
	}

	for _, r := range snap.Approved {
		event := cal.AddEvent(fmt.Sprintf("booking-%s@%s", r.BookingID, snap.PropertyID))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(r.Interval.Start)
		event.SetAllDayEndAt(r.Interval.End)
		event.SetSummary("Booked")
		event.SetStatus(ical.ObjectStatusConfirmed)
	}

	for i, b := range snap.Blocked {
		event := cal.AddEvent(fmt.Sprintf("block-%d-%s@%s", i, b.Interval.Start.Format("20060102"), snap.PropertyID))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(b.Interval.Start)
		event.SetAllDayEndAt(b.Interval.End)
		summary := "Blocked"
		if b.Reason != "" {
			summary = "Blocked: " + b.Reason
		}
		event.SetSummary(summary)
	}

	return cal.Serialize()
}
