package domain

// ProgressStatus is derived per section from its data points; it is never
// stored.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not-started"
	ProgressInProgress ProgressStatus = "in-progress"
	ProgressBlocked    ProgressStatus = "blocked"
	ProgressCompleted  ProgressStatus = "completed"
)

// SectionStatus is the stored lifecycle state of a generated section.
type SectionStatus string

const SectionOpen SectionStatus = "open"

// ReportSection is one disclosure area of a period, materialized from the
// catalog when the period is created. Sections are generated, never created
// directly.
type ReportSection struct {
	ID          string
	PeriodID    string
	Title       string
	Category    Category
	Description string
	OwnerID     string
	Status      SectionStatus
	Complete    bool
	OrderIndex  int
}

// SectionSummary is a read-time projection over one section. All counts are
// recomputed on every read.
type SectionSummary struct {
	SectionID       string
	Title           string
	Category        Category
	OwnerID         string
	OwnerName       string
	DataPointCount  int
	EvidenceCount   int
	GapCount        int
	AssumptionCount int
	CompletenessPct float64
	Progress        ProgressStatus
	OrderIndex      int
}
