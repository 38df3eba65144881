package availability

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportICS(t *testing.T) {
	snap := &Snapshot{
		PropertyID: "p1",
		Approved:   []Reservation{{BookingID: "b1", GuestID: "g1", Interval: iv("2025-01-01", "2025-01-05")}},
		Blocked:    []Block{{Interval: iv("2025-02-01", "2025-02-03"), Reason: "maintenance"}},
	}

	out := ExportICS(snap, "Cabin", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NotContains(t, out, "g1")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, "booking-b1@p1", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Booked", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20250101", events[0].GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20250105", events[0].GetProperty(ical.ComponentPropertyDtEnd).Value)

	assert.Equal(t, "Blocked: maintenance", events[1].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20250201", events[1].GetProperty(ical.ComponentPropertyDtStart).Value)
}
