// Package pm implements preventive-maintenance scheduling: due-date
// arithmetic and the overdue-asset job generator.
package pm

import "time"

// A month is approximated as exactly 30 days for all interval arithmetic.
// Not calendar-accurate; carried over unchanged from the existing scheme.
const daysPerMonth = 30

// intervalDuration converts a month count into the 30-day approximation.
func intervalDuration(months int) time.Duration {
	return time.Duration(months) * daysPerMonth * 24 * time.Hour
}

// parseInstallDate accepts the ISO-8601 shapes asset records carry: a bare
// date, a date-time, or a full RFC3339 timestamp (Z suffix included).
func parseInstallDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NextDue computes the next due date from an install date string and an
// interval in months. An absent or unparsable install date yields nil: no
// due date is tracked for the asset. The same rule serves general PM and
// F-Gas leak-check scheduling.
func NextDue(installDate string, intervalMonths int) *time.Time {
	if installDate == "" {
		return nil
	}
	install, ok := parseInstallDate(installDate)
	if !ok {
		return nil
	}
	due := install.Add(intervalDuration(intervalMonths))
	return &due
}

// DueFromNow computes the next due date counted from the given moment,
// used when a job completes: due dates drift forward from actual service
// time rather than snapping to a fixed grid off the install date.
func DueFromNow(now time.Time, intervalMonths int) time.Time {
	return now.Add(intervalDuration(intervalMonths))
}
