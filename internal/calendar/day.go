package calendar

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/availability"
)

// InvalidTimeLabel is shown for a slot time that fails to parse.
const InvalidTimeLabel = "Invalid time"

// displayFormat is the 12-hour clock used in the day sidebar.
const displayFormat = "3:04 PM"

// DaySlot is one row of the day-view sidebar.
type DaySlot struct {
	Time     string                  `json:"time"`
	Label    string                  `json:"label"`
	Status   availability.SlotStatus `json:"status"`
	Bookable bool                    `json:"bookable"`
}

// FormatTimeLabel renders an HH:MM:SS time on the 12-hour clock.
func FormatTimeLabel(t string) string {
	parsed, err := time.Parse("15:04:05", t)
	if err != nil {
		return InvalidTimeLabel
	}
	return parsed.Format(displayFormat)
}

// DayView maps resolved slots to display rows. Pure transformation,
// no I/O.
func DayView(slots []availability.Slot) []DaySlot {
	out := make([]DaySlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, DaySlot{
			Time:     s.Time,
			Label:    FormatTimeLabel(s.Time),
			Status:   s.Status,
			Bookable: s.Status == availability.SlotFree,
		})
	}
	return out
}
