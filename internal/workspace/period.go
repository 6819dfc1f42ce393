package workspace

import (
	"context"
	"strings"
	"time"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type CreatePeriodRequest struct {
	Name      string
	StartDate string
	EndDate   string
	Mode      domain.ReportingMode
	Scope     string
	OwnerID   string
	ActorID   string
}

func (r *CreatePeriodRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Mode = domain.ReportingMode(strings.TrimSpace(string(r.Mode)))
	r.Scope = strings.TrimSpace(r.Scope)
	r.OwnerID = strings.TrimSpace(r.OwnerID)
}

func (r *CreatePeriodRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "period name is required")
	}
	if !r.Mode.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "reporting mode must be simplified or extended")
	}
	return nil
}

// CreatePeriod opens a new reporting period and materializes its sections
// from the catalog. Every existing period is force-closed first, so at most
// one period is ever active.
func (s *Store) CreatePeriod(_ context.Context, req CreatePeriodRequest) (domain.ReportingPeriod, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.ReportingPeriod{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.org == nil {
		return domain.ReportingPeriod{}, dErrors.New(dErrors.CodeFailedPrecondition, "an organization must be created before reporting periods")
	}
	if len(s.units) == 0 {
		return domain.ReportingPeriod{}, dErrors.New(dErrors.CodeFailedPrecondition, "at least one organizational unit is required before reporting periods")
	}
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return domain.ReportingPeriod{}, err
	}
	if err := s.checkOverlap(start, end, ""); err != nil {
		return domain.ReportingPeriod{}, err
	}
	if req.OwnerID != "" {
		if _, ok := s.users[req.OwnerID]; !ok {
			return domain.ReportingPeriod{}, dErrors.Newf(dErrors.CodeNotFound, "owner %s not found", req.OwnerID)
		}
	}

	for id, p := range s.periods {
		if p.Status == domain.PeriodActive {
			p.Status = domain.PeriodClosed
			s.periods[id] = p
		}
	}

	period := domain.ReportingPeriod{
		ID:             newID(),
		Name:           req.Name,
		StartDate:      start,
		EndDate:        end,
		Mode:           req.Mode,
		Scope:          req.Scope,
		Status:         domain.PeriodActive,
		OwnerID:        req.OwnerID,
		OrganizationID: s.org.ID,
		CreatedAt:      s.now(),
	}
	s.periods[period.ID] = period
	s.periodOrder = append(s.periodOrder, period.ID)
	s.generateSections(period)

	s.metrics.IncPeriodsCreated()
	s.appendAudit(req.ActorID, actionCreated, entityPeriod, period.ID,
		diffPeriod(domain.ReportingPeriod{}, period), "")
	s.logger.Info("reporting period created", "period_id", period.ID, "mode", string(period.Mode))
	return period, nil
}

// generateSections materializes one section per surviving catalog item, in
// catalog order with a zero-based index. Callers hold the lock.
func (s *Store) generateSections(period domain.ReportingPeriod) {
	idx := 0
	for _, item := range s.catalog {
		if item.Deprecated {
			continue
		}
		if period.Mode == domain.ModeSimplified && !simplifiedCodes[item.Code] {
			continue
		}
		section := domain.ReportSection{
			ID:          newID(),
			PeriodID:    period.ID,
			Title:       item.Title,
			Category:    item.Category,
			Description: item.Description,
			Status:      domain.SectionOpen,
			OrderIndex:  idx,
		}
		s.sections[section.ID] = section
		idx++
	}
}

type UpdatePeriodRequest struct {
	PeriodID  string
	Name      string
	StartDate string
	EndDate   string
	Mode      domain.ReportingMode
	Scope     string
	ActorID   string
}

func (r *UpdatePeriodRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Mode = domain.ReportingMode(strings.TrimSpace(string(r.Mode)))
	r.Scope = strings.TrimSpace(r.Scope)
}

// UpdatePeriod changes a period's configuration. The configuration freezes
// the moment any of the period's sections owns a data point.
func (s *Store) UpdatePeriod(_ context.Context, req UpdatePeriodRequest) (domain.ReportingPeriod, error) {
	req.Normalize()
	if req.Name == "" {
		return domain.ReportingPeriod{}, dErrors.New(dErrors.CodeValidation, "period name is required")
	}
	if !req.Mode.IsValid() {
		return domain.ReportingPeriod{}, dErrors.New(dErrors.CodeValidation, "reporting mode must be simplified or extended")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.periods[req.PeriodID]
	if !ok {
		return domain.ReportingPeriod{}, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", req.PeriodID)
	}
	if s.reportingStarted(req.PeriodID) {
		return domain.ReportingPeriod{}, dErrors.New(dErrors.CodeConflict, "reporting has started; the period configuration is frozen")
	}
	start, end, err := parsePeriodDates(req.StartDate, req.EndDate)
	if err != nil {
		return domain.ReportingPeriod{}, err
	}
	if err := s.checkOverlap(start, end, req.PeriodID); err != nil {
		return domain.ReportingPeriod{}, err
	}

	updated := old
	updated.Name = req.Name
	updated.StartDate = start
	updated.EndDate = end
	updated.Mode = req.Mode
	updated.Scope = req.Scope

	changes := diffPeriod(old, updated)
	s.periods[req.PeriodID] = updated
	if len(changes) > 0 {
		s.appendAudit(req.ActorID, actionUpdated, entityPeriod, updated.ID, changes, "")
	}
	return updated, nil
}

func (s *Store) GetPeriod(_ context.Context, periodID string) (domain.ReportingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[periodID]
	if !ok {
		return domain.ReportingPeriod{}, dErrors.Newf(dErrors.CodeNotFound, "period %s not found", periodID)
	}
	return p, nil
}

// ListPeriods returns all periods in creation order.
func (s *Store) ListPeriods(_ context.Context) []domain.ReportingPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReportingPeriod, 0, len(s.periodOrder))
	for _, id := range s.periodOrder {
		out = append(out, s.periods[id])
	}
	return out
}

// ActivePeriod returns the one active period, if any.
func (s *Store) ActivePeriod(_ context.Context) (domain.ReportingPeriod, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.periods {
		if p.Status == domain.PeriodActive {
			return p, true
		}
	}
	return domain.ReportingPeriod{}, false
}

// HasReportingStarted reports whether any section of the period owns at
// least one data point.
func (s *Store) HasReportingStarted(_ context.Context, periodID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportingStarted(periodID)
}

func (s *Store) reportingStarted(periodID string) bool {
	for _, sec := range s.sections {
		if sec.PeriodID != periodID {
			continue
		}
		for _, dp := range s.dataPoints {
			if dp.SectionID == sec.ID {
				return true
			}
		}
	}
	return false
}

func parsePeriodDates(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeValidation, "start and end dates are required")
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.Newf(dErrors.CodeValidation, "start date %q is not a valid date", startDate)
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.Newf(dErrors.CodeValidation, "end date %q is not a valid date", endDate)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeValidation, "start date must be before end date")
	}
	return start, end, nil
}

// checkOverlap tests the candidate range against every period regardless of
// status, excluding excludeID on update. Callers hold the lock.
func (s *Store) checkOverlap(start, end time.Time, excludeID string) error {
	candidate := domain.ReportingPeriod{StartDate: start, EndDate: end}
	for _, id := range s.periodOrder {
		if id == excludeID {
			continue
		}
		existing := s.periods[id]
		if candidate.Overlaps(existing) {
			return dErrors.Newf(dErrors.CodeValidation, "period dates overlap existing period %q", existing.Name)
		}
	}
	return nil
}
