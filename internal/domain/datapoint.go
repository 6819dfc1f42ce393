package domain

import "time"

// InformationType qualifies the epistemic status of a disclosed value.
type InformationType string

const (
	InfoFact        InformationType = "fact"
	InfoEstimate    InformationType = "estimate"
	InfoDeclaration InformationType = "declaration"
	InfoPlan        InformationType = "plan"
)

func (t InformationType) IsValid() bool {
	switch t {
	case InfoFact, InfoEstimate, InfoDeclaration, InfoPlan:
		return true
	}
	return false
}

// CompletenessStatus is the per-data-point fill state.
type CompletenessStatus string

const (
	CompletenessMissing       CompletenessStatus = "missing"
	CompletenessIncomplete    CompletenessStatus = "incomplete"
	CompletenessComplete      CompletenessStatus = "complete"
	CompletenessNotApplicable CompletenessStatus = "not-applicable"
)

func (s CompletenessStatus) IsValid() bool {
	switch s {
	case CompletenessMissing, CompletenessIncomplete, CompletenessComplete, CompletenessNotApplicable:
		return true
	}
	return false
}

// ReviewStatus is the approval workflow state.
//
// Transitions: draft → ready-for-review → {approved | changes-requested};
// changes-requested → ready-for-review through a normal update. Once approved,
// only updates whose sole change is the review status are accepted.
type ReviewStatus string

const (
	ReviewDraft            ReviewStatus = "draft"
	ReviewReady            ReviewStatus = "ready-for-review"
	ReviewApproved         ReviewStatus = "approved"
	ReviewChangesRequested ReviewStatus = "changes-requested"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewDraft, ReviewReady, ReviewApproved, ReviewChangesRequested:
		return true
	}
	return false
}

// DataPoint is an individual disclosed fact, estimate, declaration, or plan
// within a section.
type DataPoint struct {
	ID              string
	SectionID       string
	Type            string
	Classification  string
	Title           string
	Content         string
	Value           string
	Unit            string
	OwnerID         string
	ContributorIDs  []string
	Source          string
	InformationType InformationType
	Assumptions     string
	Completeness    CompletenessStatus
	ReviewStatus    ReviewStatus
	EvidenceIDs     []string
	Deadline        string
	Blocked         bool
	BlockedReason   string
	BlockedDueDate  string
	ReviewerID      string
	ReviewedAt      time.Time
	ReviewComments  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasEvidence reports whether at least one evidence item is linked.
func (d DataPoint) HasEvidence() bool { return len(d.EvidenceIDs) > 0 }
