package utils

import "time"

// SlotLabels derives the human-readable start and end labels for an
// hour-long slot from its canonical date and time strings, e.g.
// ("2025-03-01", "18:00:00") -> ("6:00 PM", "7:00 PM"). Labels are a
// pure derived view; they are never persisted. Malformed input yields
// empty labels rather than an error, matching the display-only role.
func SlotLabels(date, clock string) (start, end string) {
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return "", ""
	}
	return clockLabel(t), clockLabel(t.Add(time.Hour))
}

// clockLabel formats a time as 12-hour clock without a leading zero.
func clockLabel(t time.Time) string {
	return t.Format("3:04 PM")
}
