package workspace

import (
	"context"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

func (s *Store) GetSection(_ context.Context, sectionID string) (domain.ReportSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sections[sectionID]
	if !ok {
		return domain.ReportSection{}, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	return sec, nil
}

// ListSections returns the period's sections in generation order.
func (s *Store) ListSections(_ context.Context, periodID string) ([]domain.ReportSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.periods[periodID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}
	return s.sectionsOfPeriod(periodID), nil
}

// AssignSectionOwner sets or clears the responsible user for a section.
// Ownership changes are audited like any other field change.
func (s *Store) AssignSectionOwner(_ context.Context, sectionID, ownerID, actorID string) (domain.ReportSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.sections[sectionID]
	if !ok {
		return domain.ReportSection{}, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	if ownerID != "" {
		if _, ok := s.users[ownerID]; !ok {
			return domain.ReportSection{}, dErrors.Newf(dErrors.CodeNotFound, "owner %s not found", ownerID)
		}
	}
	if old.OwnerID == ownerID {
		return old, nil
	}
	updated := old
	updated.OwnerID = ownerID
	s.sections[sectionID] = updated
	s.appendAudit(actorID, actionUpdated, entitySection, sectionID,
		[]domain.FieldChange{{Field: "owner_id", Old: old.OwnerID, New: ownerID}}, "")
	return updated, nil
}

// SectionSummaries recomputes the per-section projection for a period. The
// counts and progress status are derived on every call and never stored.
func (s *Store) SectionSummaries(_ context.Context, periodID string) ([]domain.SectionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.periods[periodID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}

	sections := s.sectionsOfPeriod(periodID)
	out := make([]domain.SectionSummary, 0, len(sections))
	for _, sec := range sections {
		dps := s.dataPointsOfSection(sec.ID)

		evidenceCount := 0
		for _, ev := range s.evidence {
			if ev.SectionID == sec.ID {
				evidenceCount++
			}
		}
		gaps, assumptions := 0, 0
		for _, dp := range dps {
			if dp.Completeness == domain.CompletenessMissing || dp.Completeness == domain.CompletenessIncomplete {
				gaps++
			}
			if dp.Assumptions != "" {
				assumptions++
			}
		}

		summary := domain.SectionSummary{
			SectionID:       sec.ID,
			Title:           sec.Title,
			Category:        sec.Category,
			OwnerID:         sec.OwnerID,
			DataPointCount:  len(dps),
			EvidenceCount:   evidenceCount,
			GapCount:        gaps,
			AssumptionCount: assumptions,
			CompletenessPct: tallyCompleteness(dps).Percentage,
			Progress:        progressOf(dps),
			OrderIndex:      sec.OrderIndex,
		}
		if owner, ok := s.users[sec.OwnerID]; ok {
			summary.OwnerName = owner.Name
		}
		out = append(out, summary)
	}
	return out, nil
}
