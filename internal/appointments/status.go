package appointments

import "fmt"

// Status is the closed set of appointment states. The zero value is not
// valid; use ParseStatus for untrusted input.
type Status string

const (
	// StatusPending awaits doctor confirmation.
	StatusPending Status = "pending"
	// StatusScheduled is a directly booked, confirmed appointment.
	StatusScheduled Status = "scheduled"
	// StatusAccepted is a pending request the doctor confirmed.
	StatusAccepted Status = "accepted"
	// StatusRefused is a pending request the doctor declined.
	StatusRefused Status = "refused"
	// StatusCompleted is a visit that took place.
	StatusCompleted Status = "completed"
	// StatusCancelled was called off before the visit.
	StatusCancelled Status = "cancelled"
	// StatusNoShow is a confirmed visit the patient missed.
	StatusNoShow Status = "no_show"
)

var allStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusScheduled: {},
	StatusAccepted:  {},
	StatusRefused:   {},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

// transitions encodes the legal status state machine. Statuses absent
// from the map are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRefused, StatusCancelled},
	StatusScheduled: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusAccepted:  {StatusCompleted, StatusCancelled, StatusNoShow},
}

// ParseStatus validates an untrusted status string.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := allStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Blocks reports whether an appointment in this status occupies its slot.
// Cancelled and refused appointments free the slot for rebooking.
func (s Status) Blocks() bool {
	return s != StatusCancelled && s != StatusRefused
}

// blockingStatuses lists every status that keeps a slot occupied,
// for SQL `status = ANY(...)` predicates.
func blockingStatuses() []string {
	out := make([]string, 0, len(allStatuses))
	for s := range allStatuses {
		if s.Blocks() {
			out = append(out, string(s))
		}
	}
	return out
}
