package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinicdesk/internal/availability"
)

func TestFormatTimeLabel(t *testing.T) {
	cases := map[string]string{
		"09:00:00": "9:00 AM",
		"12:00:00": "12:00 PM",
		"13:30:00": "1:30 PM",
		"00:15:00": "12:15 AM",
		"9am":      InvalidTimeLabel,
		"":         InvalidTimeLabel,
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimeLabel(in), "input %q", in)
	}
}

func TestDayView(t *testing.T) {
	slots := []availability.Slot{
		{Time: "09:00:00", Status: availability.SlotFree},
		{Time: "10:00:00", Status: availability.SlotOccupied},
	}

	rows := DayView(slots)
	require.Len(t, rows, 2)
	assert.Equal(t, "9:00 AM", rows[0].Label)
	assert.True(t, rows[0].Bookable)
	assert.Equal(t, "10:00 AM", rows[1].Label)
	assert.False(t, rows[1].Bookable)
}
