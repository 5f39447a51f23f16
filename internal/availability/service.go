package availability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/appointments"
	"github.com/clinicdesk/clinicdesk/internal/observability/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// Service is the availability resolver: it derives bookable slots for a
// doctor's day and the monthly overview, and writes slot configuration.
type Service struct {
	repo     Repository
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	nowFunc  func() time.Time
	template []string
}

// NewService constructs an availability resolver.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("availability: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, nowFunc: time.Now, template: DefaultTemplate()}
}

// WithMetrics registers resolve-latency metrics.
func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// WithWorkingHours replaces the fallback template's working hours, both
// bounds inclusive HH:MM:SS.
func (s *Service) WithWorkingHours(first, last string) *Service {
	s.template = TemplateBetween(first, last)
	return s
}

// Resolve computes the ordered slot list for (doctor, date). Configured
// times are de-duplicated; with none configured the default template
// applies, past dates included. Each slot is occupied iff an active
// appointment holds its start time. Recomputed in full on every call.
func (s *Service) Resolve(ctx context.Context, doctorID, date string) ([]Slot, error) {
	started := s.nowFunc()
	if strings.TrimSpace(doctorID) == "" {
		return nil, ErrMissingDoctor
	}
	if _, err := time.Parse(appointments.DateFormat, date); err != nil {
		return nil, ErrBadDate
	}

	times, err := s.repo.SlotTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		times = s.template
	}

	booked, err := s.repo.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	occupied := make(map[string]bool, len(booked))
	for _, t := range booked {
		occupied[t] = true
	}

	seen := make(map[string]bool, len(times))
	slots := make([]Slot, 0, len(times))
	for _, t := range times {
		if seen[t] {
			continue
		}
		seen[t] = true
		status := SlotFree
		if occupied[t] {
			status = SlotOccupied
		}
		slots = append(slots, Slot{Time: t, Status: status})
	}
	// HH:MM:SS sorts chronologically as a plain string.
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })

	s.metrics.ObserveResolveLatency("day", s.nowFunc().Sub(started).Seconds())
	return slots, nil
}

// SetForDate validates and stores a doctor's slot configuration for one
// date as a diff against the current rows.
func (s *Service) SetForDate(ctx context.Context, doctorID string, req *SetAvailabilityRequest) error {
	if strings.TrimSpace(doctorID) == "" {
		return ErrMissingDoctor
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.repo.SetForDate(ctx, doctorID, req.Date, req.Times); err != nil {
		return err
	}
	s.logger.Info("availability saved",
		"doctor_id", doctorID,
		"date", req.Date,
		"slots", len(req.Times),
	)
	return nil
}

// MonthOverview classifies every day of the given month. Days before
// today are past regardless of slot counts; days with no configured
// availability or nothing booked are clear; fully booked days are full;
// the rest partial.
func (s *Service) MonthOverview(ctx context.Context, doctorID string, year int, month time.Month) ([]DaySummary, error) {
	started := s.nowFunc()
	if strings.TrimSpace(doctorID) == "" {
		return nil, ErrMissingDoctor
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrBadDate, month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	fromDate := first.Format(appointments.DateFormat)
	toDate := last.Format(appointments.DateFormat)

	slotCounts, err := s.repo.MonthSlotCounts(ctx, doctorID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	bookedCounts, err := s.repo.MonthBookedCounts(ctx, doctorID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	today := s.nowFunc().Format(appointments.DateFormat)
	out := make([]DaySummary, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(appointments.DateFormat)
		out = append(out, DaySummary{
			Date:  date,
			State: classifyDay(date, today, slotCounts[date], bookedCounts[date]),
		})
	}

	s.metrics.ObserveResolveLatency("month", s.nowFunc().Sub(started).Seconds())
	return out, nil
}

func classifyDay(date, today string, available, booked int) DayState {
	if date < today {
		return DayPast
	}
	if available == 0 || booked == 0 {
		return DayClear
	}
	if booked >= available {
		return DayFull
	}
	return DayPartial
}
