package urgency

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	deadline := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name     string
		deadline *time.Time
		want     Severity
	}{
		{name: "no deadline", deadline: nil, want: SeverityNormal},
		{name: "one hour past", deadline: deadline(-time.Hour), want: SeverityOverdue},
		{name: "far past", deadline: deadline(-30 * 24 * time.Hour), want: SeverityOverdue},
		{name: "exactly now", deadline: deadline(0), want: SeverityCritical},
		{name: "one hour ahead", deadline: deadline(time.Hour), want: SeverityCritical},
		{name: "exactly five days", deadline: deadline(5 * 24 * time.Hour), want: SeverityCritical},
		{name: "just over five days", deadline: deadline(5*24*time.Hour + time.Hour), want: SeverityWarning},
		{name: "exactly ten days", deadline: deadline(10 * 24 * time.Hour), want: SeverityWarning},
		{name: "just over ten days", deadline: deadline(10*24*time.Hour + time.Hour), want: SeverityNormal},
		{name: "far future", deadline: deadline(90 * 24 * time.Hour), want: SeverityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.deadline, now); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityNormal, SeverityWarning, SeverityCritical, SeverityOverdue} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Severity("urgent").Valid() {
		t.Error("'urgent' is not a severity and must be rejected")
	}
	if Severity("").Valid() {
		t.Error("empty severity must be rejected")
	}
}
