package domain

import "time"

// ReportingMode selects how much of the section catalog a period materializes.
type ReportingMode string

const (
	ModeSimplified ReportingMode = "simplified"
	ModeExtended   ReportingMode = "extended"
)

func (m ReportingMode) IsValid() bool {
	return m == ModeSimplified || m == ModeExtended
}

// PeriodStatus tracks whether a period is the one currently collecting data.
type PeriodStatus string

const (
	PeriodActive PeriodStatus = "active"
	PeriodClosed PeriodStatus = "closed"
)

// ReportingPeriod is a bounded date range during which disclosures are
// collected.
//
// Invariants:
//   - StartDate is strictly before EndDate
//   - no two periods overlap (a.start < b.end && b.start < a.end)
//   - at most one period is active; creating a new one closes the rest
//   - dates, mode, and scope freeze once any of its sections owns a data point
type ReportingPeriod struct {
	ID             string
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	Mode           ReportingMode
	Scope          string
	Status         PeriodStatus
	OwnerID        string
	OrganizationID string
	CreatedAt      time.Time
}

// Overlaps reports whether two periods' date ranges intersect, using the
// half-open interval test.
func (p ReportingPeriod) Overlaps(other ReportingPeriod) bool {
	return p.StartDate.Before(other.EndDate) && other.StartDate.Before(p.EndDate)
}

// Contains reports whether t falls within the period's inclusive range.
func (p ReportingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
