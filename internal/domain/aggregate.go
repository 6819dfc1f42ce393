package domain

// CompletenessBreakdown is a single-pass tally of data points by completeness
// status. Percentage is complete/total as a percentage rounded to one
// decimal, 0 for an empty set.
type CompletenessBreakdown struct {
	Missing       int
	Incomplete    int
	Complete      int
	NotApplicable int
	Total         int
	Percentage    float64
}

// ResponsibilityRow groups one owner's sections in the responsibility matrix.
// The unassigned row (empty OwnerID) sorts first, the rest alphabetically by
// owner name.
type ResponsibilityRow struct {
	OwnerID        string
	OwnerName      string
	SectionTitles  []string
	SectionCount   int
	DataPointCount int
	Completeness   CompletenessBreakdown
}
