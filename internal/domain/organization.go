package domain

import "time"

// Organization is the reporting entity. At most one exists per workspace;
// it is mutated in place by update and never deleted.
type Organization struct {
	ID                    string
	Name                  string
	LegalForm             string
	Country               string
	Identifier            string
	CoverageType          string
	CoverageJustification string
	CreatedBy             string
	CreatedAt             time.Time
}

// OrganizationalUnit is one node in the organization's unit forest.
//
// Invariants:
//   - ParentID, when set, references an existing unit
//   - no unit is its own ancestor (the forest stays acyclic)
//   - a unit with children cannot be deleted
type OrganizationalUnit struct {
	ID          string
	Name        string
	ParentID    string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}
