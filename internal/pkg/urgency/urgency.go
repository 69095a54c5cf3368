// Package urgency classifies order deadlines into the severity tiers shown
// on the dashboard. The creation form and the dashboard filter both call
// Classify, there is deliberately no second classification anywhere.
package urgency

import (
	"math"
	"time"
)

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityOverdue  Severity = "overdue"
)

// Day thresholds for the tiers. The dashboard filter builds its deadline
// windows from these same constants so it can never disagree with Classify.
const (
	CriticalWithinDays = 5
	WarningWithinDays  = 10
)

// Valid reports whether s is a known severity, used to validate the
// dashboard filter parameter.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNormal, SeverityWarning, SeverityCritical, SeverityOverdue:
		return true
	}
	return false
}

// Classify maps a deadline against the current time. A missing deadline is
// normal. A deadline already in the past is overdue. Otherwise the number of
// days remaining (rounded up) decides: 5 or fewer is critical, 10 or fewer
// is warning, everything else is normal.
func Classify(deadline *time.Time, now time.Time) Severity {
	if deadline == nil {
		return SeverityNormal
	}

	diff := deadline.Sub(now)
	if diff < 0 {
		return SeverityOverdue
	}

	days := int64(math.Ceil(diff.Hours() / 24))
	switch {
	case days <= CriticalWithinDays:
		return SeverityCritical
	case days <= WarningWithinDays:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}
