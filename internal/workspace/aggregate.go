package workspace

import (
	"context"
	"math"
	"sort"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

// progressOf derives a section's progress status from its data points. The
// blocked test runs before the not-started test: a section whose only point
// has changes requested is blocked, not fresh.
func progressOf(dps []domain.DataPoint) domain.ProgressStatus {
	for _, dp := range dps {
		if dp.ReviewStatus == domain.ReviewChangesRequested {
			return domain.ProgressBlocked
		}
	}
	allMissing := true
	for _, dp := range dps {
		if dp.Completeness != domain.CompletenessMissing {
			allMissing = false
			break
		}
	}
	if len(dps) == 0 || allMissing {
		return domain.ProgressNotStarted
	}
	for _, dp := range dps {
		if dp.Completeness != domain.CompletenessComplete && dp.Completeness != domain.CompletenessNotApplicable {
			return domain.ProgressInProgress
		}
	}
	return domain.ProgressCompleted
}

// tallyCompleteness buckets a data-point set by completeness status in one
// pass. Percentage is complete/total, rounded to one decimal, 0 for an empty
// set.
func tallyCompleteness(dps []domain.DataPoint) domain.CompletenessBreakdown {
	var b domain.CompletenessBreakdown
	for _, dp := range dps {
		switch dp.Completeness {
		case domain.CompletenessMissing:
			b.Missing++
		case domain.CompletenessIncomplete:
			b.Incomplete++
		case domain.CompletenessComplete:
			b.Complete++
		case domain.CompletenessNotApplicable:
			b.NotApplicable++
		}
		b.Total++
	}
	if b.Total > 0 {
		b.Percentage = math.Round(float64(b.Complete)/float64(b.Total)*1000) / 10
	}
	return b
}

// SectionProgress derives one section's progress status.
func (s *Store) SectionProgress(_ context.Context, sectionID string) (domain.ProgressStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sections[sectionID]; !ok {
		return "", dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	return progressOf(s.dataPointsOfSection(sectionID)), nil
}

// CompletenessStats tallies every data point of the period.
func (s *Store) CompletenessStats(_ context.Context, periodID string) (domain.CompletenessBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.periods[periodID]; !ok {
		return domain.CompletenessBreakdown{}, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}
	var dps []domain.DataPoint
	for _, sec := range s.sectionsOfPeriod(periodID) {
		dps = append(dps, s.dataPointsOfSection(sec.ID)...)
	}
	return tallyCompleteness(dps), nil
}

// CompletenessByCategory tallies the period's data points per ESG category.
func (s *Store) CompletenessByCategory(_ context.Context, periodID string) (map[domain.Category]domain.CompletenessBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.periods[periodID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}
	grouped := make(map[domain.Category][]domain.DataPoint)
	for _, sec := range s.sectionsOfPeriod(periodID) {
		grouped[sec.Category] = append(grouped[sec.Category], s.dataPointsOfSection(sec.ID)...)
	}
	out := make(map[domain.Category]domain.CompletenessBreakdown, len(grouped))
	for category, dps := range grouped {
		out[category] = tallyCompleteness(dps)
	}
	return out, nil
}

// CompletenessByOwner tallies the period's data points per assigned owner.
// The empty key collects unassigned points.
func (s *Store) CompletenessByOwner(_ context.Context, periodID string) (map[string]domain.CompletenessBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.periods[periodID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}
	grouped := make(map[string][]domain.DataPoint)
	for _, sec := range s.sectionsOfPeriod(periodID) {
		for _, dp := range s.dataPointsOfSection(sec.ID) {
			grouped[dp.OwnerID] = append(grouped[dp.OwnerID], dp)
		}
	}
	out := make(map[string]domain.CompletenessBreakdown, len(grouped))
	for owner, dps := range grouped {
		out[owner] = tallyCompleteness(dps)
	}
	return out, nil
}

// ResponsibilityMatrix groups the period's sections by assigned owner. The
// unassigned row sorts first, then rows sort alphabetically by owner name.
func (s *Store) ResponsibilityMatrix(_ context.Context, periodID string) ([]domain.ResponsibilityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.periods[periodID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}

	rows := make(map[string]*domain.ResponsibilityRow)
	pointsByOwner := make(map[string][]domain.DataPoint)
	for _, sec := range s.sectionsOfPeriod(periodID) {
		row, ok := rows[sec.OwnerID]
		if !ok {
			row = &domain.ResponsibilityRow{OwnerID: sec.OwnerID}
			if owner, found := s.users[sec.OwnerID]; found {
				row.OwnerName = owner.Name
			}
			rows[sec.OwnerID] = row
		}
		dps := s.dataPointsOfSection(sec.ID)
		row.SectionTitles = append(row.SectionTitles, sec.Title)
		row.SectionCount++
		row.DataPointCount += len(dps)
		pointsByOwner[sec.OwnerID] = append(pointsByOwner[sec.OwnerID], dps...)
	}

	out := make([]domain.ResponsibilityRow, 0, len(rows))
	for ownerID, row := range rows {
		row.Completeness = tallyCompleteness(pointsByOwner[ownerID])
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].OwnerID == "") != (out[j].OwnerID == "") {
			return out[i].OwnerID == ""
		}
		return out[i].OwnerName < out[j].OwnerName
	})
	return out, nil
}
