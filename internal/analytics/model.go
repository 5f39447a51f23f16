package analytics

// StatusCount is the number of appointments in one status over a range.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DayCount is the number of bookings taken on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the per-doctor dashboard payload.
type Summary struct {
	DoctorID string        `json:"doctor_id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Total    int           `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
	PerDay   []DayCount    `json:"per_day"`
}
