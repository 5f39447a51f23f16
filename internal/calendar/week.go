package calendar

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/appointments"
)

const (
	// dayStartMinutes anchors the week grid at 07:00.
	dayStartMinutes = 7 * 60

	// PixelsPerMinute is the vertical scale of the week grid.
	PixelsPerMinute = 1
)

// WeekBlock positions one appointment on the week grid.
type WeekBlock struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Label         string `json:"label"`
	TopPx         int    `json:"top_px"`
	HeightPx      int    `json:"height_px"`
}

// WeekView lays out appointments on the pixel grid. End times come from
// the doctor's resolved visit duration in minutes rather than a
// hard-coded hour. Appointments starting before the 07:00 anchor clamp
// to the top of the grid.
func WeekView(appts []*appointments.Appointment, durationMin int) []WeekBlock {
	if durationMin <= 0 {
		durationMin = 60
	}
	out := make([]WeekBlock, 0, len(appts))
	for _, a := range appts {
		start, err := time.Parse(appointments.TimeFormat, a.StartTime)
		if err != nil {
			continue
		}
		end, err := a.EndTime(durationMin)
		if err != nil {
			continue
		}
		startMin := start.Hour()*60 + start.Minute()
		top := (startMin - dayStartMinutes) * PixelsPerMinute
		if top < 0 {
			top = 0
		}
		out = append(out, WeekBlock{
			AppointmentID: a.ID,
			Date:          a.Date,
			StartTime:     a.StartTime,
			EndTime:       end,
			Label:         FormatTimeLabel(a.StartTime) + " " + a.PatientName,
			TopPx:         top,
			HeightPx:      durationMin * PixelsPerMinute,
		})
	}
	return out
}
