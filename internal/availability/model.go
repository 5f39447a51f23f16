package availability

import (
	"errors"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/appointments"
)

var (
	// ErrBadDate is returned when a date is absent or malformed
	ErrBadDate = errors.New("a valid date is required")

	// ErrBadTime is returned when a slot time is malformed
	ErrBadTime = errors.New("slot times must be HH:MM:SS")

	// ErrMissingDoctor is returned when the doctor reference is absent
	ErrMissingDoctor = errors.New("a doctor is required")
)

// SlotStatus marks a slot as bookable or taken.
type SlotStatus string

const (
	SlotFree     SlotStatus = "free"
	SlotOccupied SlotStatus = "occupied"
)

// Slot is one bookable start time for a doctor's day.
type Slot struct {
	Time   string     `json:"time"`
	Status SlotStatus `json:"status"`
}

// DayState classifies a calendar day for the monthly overview.
type DayState string

const (
	// DayPast is any day before today.
	DayPast DayState = "past"
	// DayClear has no availability configured or nothing booked.
	DayClear DayState = "clear"
	// DayFull has every configured slot booked.
	DayFull DayState = "full"
	// DayPartial has some, but not all, slots booked.
	DayPartial DayState = "partial"
)

// DaySummary is one day of the monthly overview.
type DaySummary struct {
	Date  string   `json:"date"`
	State DayState `json:"state"`
}

// SetAvailabilityRequest replaces a doctor's bookable times for one date.
type SetAvailabilityRequest struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// Validate checks the date and every slot time are well formed.
func (r *SetAvailabilityRequest) Validate() error {
	if _, err := time.Parse(appointments.DateFormat, r.Date); err != nil {
		return ErrBadDate
	}
	for _, t := range r.Times {
		if _, err := time.Parse(appointments.TimeFormat, t); err != nil {
			return ErrBadTime
		}
	}
	return nil
}

// DefaultTemplate returns the fallback working-hours slots used when a
// doctor has not configured availability for a date: nine hourly starts
// from 09:00 through 17:00. It applies to past dates too.
func DefaultTemplate() []string {
	return TemplateBetween("09:00:00", "17:00:00")
}

// TemplateBetween generates hourly slot starts from first through last
// inclusive. Malformed or inverted bounds fall back to the default
// working hours.
func TemplateBetween(first, last string) []string {
	start, err := time.Parse(appointments.TimeFormat, first)
	end, err2 := time.Parse(appointments.TimeFormat, last)
	if err != nil || err2 != nil || end.Before(start) {
		start, _ = time.Parse(appointments.TimeFormat, "09:00:00")
		end, _ = time.Parse(appointments.TimeFormat, "17:00:00")
	}
	out := make([]string, 0, 9)
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		out = append(out, t.Format(appointments.TimeFormat))
	}
	return out
}
