package workspace

import (
	"context"
	"strings"

	"canopy/internal/domain"
	"canopy/internal/workspace/rules"
	dErrors "canopy/pkg/domain-errors"
	pstrings "canopy/pkg/platform/strings"
)

// DataPointFields carries every caller-mutable data-point field. Create and
// update share it: update is a full replacement of these fields, with the
// evidence edge set managed exclusively by the evidence operations.
type DataPointFields struct {
	Type            string
	Classification  string
	Title           string
	Content         string
	Value           string
	Unit            string
	OwnerID         string
	ContributorIDs  []string
	Source          string
	InformationType domain.InformationType
	Assumptions     string
	Completeness    domain.CompletenessStatus
	ReviewStatus    domain.ReviewStatus
	Deadline        string
	Blocked         bool
	BlockedReason   string
	BlockedDueDate  string
}

func (f *DataPointFields) Normalize() {
	f.Type = strings.TrimSpace(f.Type)
	f.Classification = strings.TrimSpace(f.Classification)
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
	f.Value = strings.TrimSpace(f.Value)
	f.Unit = strings.TrimSpace(f.Unit)
	f.OwnerID = strings.TrimSpace(f.OwnerID)
	f.Source = strings.TrimSpace(f.Source)
	f.InformationType = domain.InformationType(strings.TrimSpace(string(f.InformationType)))
	f.Assumptions = strings.TrimSpace(f.Assumptions)
	f.Deadline = strings.TrimSpace(f.Deadline)
	f.BlockedReason = strings.TrimSpace(f.BlockedReason)
	f.BlockedDueDate = strings.TrimSpace(f.BlockedDueDate)
	if f.ReviewStatus == "" {
		f.ReviewStatus = domain.ReviewDraft
	}
	f.ContributorIDs = pstrings.DedupeAndTrim(f.ContributorIDs)
}

type CreateDataPointRequest struct {
	SectionID string
	DataPointFields
	ActorID string
}

type UpdateDataPointRequest struct {
	DataPointID string
	DataPointFields
	ActorID string
}

// CreateDataPoint validates the candidate against field rules and the
// section's configured validation rules, derives its completeness status
// when none is supplied, and commits it in draft (or the requested review
// state) atomically with its audit entry.
func (s *Store) CreateDataPoint(_ context.Context, req CreateDataPointRequest) (domain.DataPoint, error) {
	req.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	sec, ok := s.sections[req.SectionID]
	if !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", req.SectionID)
	}
	if err := s.validateDataPointFields(req.DataPointFields); err != nil {
		return domain.DataPoint{}, err
	}

	now := s.now()
	dp := domain.DataPoint{
		ID:        newID(),
		SectionID: req.SectionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(&dp, req.DataPointFields)
	if req.Completeness == "" {
		dp.Completeness = deriveCompleteness(dp)
	} else if err := checkExplicitComplete(dp); err != nil {
		return domain.DataPoint{}, err
	}
	if err := s.evaluateRules(sec, dp); err != nil {
		return domain.DataPoint{}, err
	}

	s.dataPoints[dp.ID] = dp
	s.metrics.IncDataPointsCreated()
	s.appendAudit(req.ActorID, actionCreated, entityDataPoint, dp.ID,
		diffDataPoint(domain.DataPoint{}, dp), "")
	return s.copyDataPoint(dp), nil
}

// UpdateDataPoint replaces the caller-mutable fields of a data point. Once a
// point is approved, the only change the store accepts is to the review
// status itself: every other field must compare equal to the stored value.
func (s *Store) UpdateDataPoint(_ context.Context, req UpdateDataPointRequest) (domain.DataPoint, error) {
	req.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.dataPoints[req.DataPointID]
	if !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", req.DataPointID)
	}
	if err := s.validateDataPointFields(req.DataPointFields); err != nil {
		return domain.DataPoint{}, err
	}

	candidate := old
	candidate.ContributorIDs = copyStrings(old.ContributorIDs)
	candidate.EvidenceIDs = copyStrings(old.EvidenceIDs)
	applyFields(&candidate, req.DataPointFields)
	if req.Completeness == "" {
		candidate.Completeness = deriveCompleteness(candidate)
	} else if err := checkExplicitComplete(candidate); err != nil {
		return domain.DataPoint{}, err
	}

	changes := diffDataPoint(old, candidate)
	if old.ReviewStatus == domain.ReviewApproved {
		for _, c := range changes {
			if c.Field != "review_status" {
				return domain.DataPoint{}, dErrors.New(dErrors.CodeConflict, "approved data points are read-only")
			}
		}
	}
	if len(changes) == 0 {
		return s.copyDataPoint(old), nil
	}

	sec := s.sections[old.SectionID]
	if err := s.evaluateRules(sec, candidate); err != nil {
		return domain.DataPoint{}, err
	}

	candidate.UpdatedAt = s.now()
	s.dataPoints[candidate.ID] = candidate
	s.appendAudit(req.ActorID, actionUpdated, entityDataPoint, candidate.ID, changes, "")
	return s.copyDataPoint(candidate), nil
}

// validateDataPointFields enforces the field-level rules shared by create and
// update. Callers hold the lock.
func (s *Store) validateDataPointFields(f DataPointFields) error {
	if f.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "Title is required.")
	}
	if f.Content == "" {
		return dErrors.New(dErrors.CodeValidation, "Content is required.")
	}
	if f.Source == "" {
		return dErrors.New(dErrors.CodeValidation, "Source is required.")
	}
	if f.InformationType == "" {
		return dErrors.New(dErrors.CodeValidation, "Information type is required.")
	}
	if !f.InformationType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Information type must be one of fact, estimate, declaration, plan.")
	}
	if f.InformationType == domain.InfoEstimate && f.Assumptions == "" {
		return dErrors.New(dErrors.CodeValidation, "Assumptions are required for estimates.")
	}
	if s.requireOwner && f.OwnerID == "" {
		return dErrors.New(dErrors.CodeValidation, "Owner is required.")
	}
	if f.OwnerID != "" {
		if _, ok := s.users[f.OwnerID]; !ok {
			return dErrors.Newf(dErrors.CodeNotFound, "owner %s not found", f.OwnerID)
		}
	}
	for _, id := range f.ContributorIDs {
		if _, ok := s.users[id]; !ok {
			return dErrors.Newf(dErrors.CodeNotFound, "contributor %s not found", id)
		}
		if id == f.OwnerID {
			return dErrors.New(dErrors.CodeValidation, "Owner cannot also be a contributor.")
		}
	}
	if !f.ReviewStatus.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Review status must be one of draft, ready-for-review, approved, changes-requested.")
	}
	if f.Completeness != "" && !f.Completeness.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "Completeness status must be one of missing, incomplete, complete, not-applicable.")
	}
	if f.Blocked && f.BlockedReason == "" {
		return dErrors.New(dErrors.CodeValidation, "A reason is required when a data point is blocked.")
	}
	return nil
}

func applyFields(dp *domain.DataPoint, f DataPointFields) {
	dp.Type = f.Type
	dp.Classification = f.Classification
	dp.Title = f.Title
	dp.Content = f.Content
	dp.Value = f.Value
	dp.Unit = f.Unit
	dp.OwnerID = f.OwnerID
	dp.ContributorIDs = copyStrings(f.ContributorIDs)
	dp.Source = f.Source
	dp.InformationType = f.InformationType
	dp.Assumptions = f.Assumptions
	if f.Completeness != "" {
		dp.Completeness = f.Completeness
	}
	dp.ReviewStatus = f.ReviewStatus
	dp.Deadline = f.Deadline
	dp.Blocked = f.Blocked
	dp.BlockedReason = f.BlockedReason
	dp.BlockedDueDate = f.BlockedDueDate
}

// deriveCompleteness computes the automatic fill state: complete only when
// the narrative fields, an owner, and at least one linked evidence item are
// all present; otherwise incomplete.
func deriveCompleteness(dp domain.DataPoint) domain.CompletenessStatus {
	if dp.Title != "" && dp.Content != "" && dp.Source != "" &&
		dp.InformationType != "" && dp.HasEvidence() && dp.OwnerID != "" {
		return domain.CompletenessComplete
	}
	return domain.CompletenessIncomplete
}

// evaluateRules runs the section's active rules in insertion order against
// the candidate. The first failing rule aborts the operation with its
// configured message. Callers hold the lock.
func (s *Store) evaluateRules(sec domain.ReportSection, dp domain.DataPoint) error {
	active := s.rules[sec.ID]
	if len(active) == 0 {
		return nil
	}
	in := rules.Input{Value: dp.Value, Unit: dp.Unit}
	if period, ok := s.periods[sec.PeriodID]; ok {
		in.PeriodStart = period.StartDate
		in.PeriodEnd = period.EndDate
		in.HasPeriod = true
	}
	for _, rec := range active {
		if !rec.Active {
			continue
		}
		if !rules.FromRecord(rec).Evaluate(in) {
			s.metrics.IncRuleFailure(string(rec.Type))
			return dErrors.New(dErrors.CodeValidation, rec.Message)
		}
	}
	return nil
}

type ApproveDataPointRequest struct {
	DataPointID string
	ReviewerID  string
	Comments    string
	ActorID     string
}

// ApproveDataPoint moves a ready-for-review point to approved, recording the
// reviewer and time. Approved is terminal for every field but the review
// status itself.
func (s *Store) ApproveDataPoint(_ context.Context, req ApproveDataPointRequest) (domain.DataPoint, error) {
	return s.review(req.DataPointID, req.ReviewerID, strings.TrimSpace(req.Comments), req.ActorID, domain.ReviewApproved)
}

type RequestChangesRequest struct {
	DataPointID string
	ReviewerID  string
	Comments    string
	ActorID     string
}

// RequestChanges sends a ready-for-review point back to its author with
// mandatory review comments.
func (s *Store) RequestChanges(_ context.Context, req RequestChangesRequest) (domain.DataPoint, error) {
	comments := strings.TrimSpace(req.Comments)
	if comments == "" {
		return domain.DataPoint{}, dErrors.New(dErrors.CodeValidation, "Review comments are required when requesting changes.")
	}
	return s.review(req.DataPointID, req.ReviewerID, comments, req.ActorID, domain.ReviewChangesRequested)
}

func (s *Store) review(dataPointID, reviewerID, comments, actorID string, target domain.ReviewStatus) (domain.DataPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.dataPoints[dataPointID]
	if !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", dataPointID)
	}
	if _, ok := s.users[reviewerID]; !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "reviewer %s not found", reviewerID)
	}
	if old.ReviewStatus != domain.ReviewReady {
		return domain.DataPoint{}, dErrors.New(dErrors.CodeConflict, "data point is not ready for review")
	}

	updated := old
	updated.ReviewStatus = target
	updated.ReviewerID = reviewerID
	updated.ReviewedAt = s.now()
	if comments != "" {
		updated.ReviewComments = comments
	}
	updated.UpdatedAt = updated.ReviewedAt
	s.dataPoints[dataPointID] = updated

	action := actionApproved
	if target == domain.ReviewChangesRequested {
		action = actionChangesRequested
	}
	s.appendAudit(actorID, action, entityDataPoint, dataPointID,
		[]domain.FieldChange{{Field: "review_status", Old: string(old.ReviewStatus), New: string(target)}},
		comments)
	return s.copyDataPoint(updated), nil
}

// SetCompletenessStatus applies an explicit completeness transition. Marking
// a point complete is validated structurally: the error enumerates every
// missing field so a caller can render all deficiencies at once.
func (s *Store) SetCompletenessStatus(_ context.Context, dataPointID string, status domain.CompletenessStatus, actorID string) (domain.DataPoint, error) {
	if !status.IsValid() {
		return domain.DataPoint{}, dErrors.New(dErrors.CodeValidation, "Completeness status must be one of missing, incomplete, complete, not-applicable.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.dataPoints[dataPointID]
	if !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", dataPointID)
	}
	if status == domain.CompletenessComplete {
		if missing := missingForCompletion(old); len(missing) > 0 {
			return domain.DataPoint{}, dErrors.NewMissingFields("data point cannot be marked complete", missing)
		}
	}
	if old.Completeness == status {
		return s.copyDataPoint(old), nil
	}

	updated := old
	updated.Completeness = status
	updated.UpdatedAt = s.now()
	s.dataPoints[dataPointID] = updated
	s.appendAudit(actorID, actionUpdated, entityDataPoint, dataPointID,
		[]domain.FieldChange{{Field: "completeness_status", Old: string(old.Completeness), New: string(status)}}, "")
	return s.copyDataPoint(updated), nil
}

// checkExplicitComplete guards every path that writes an explicit complete
// status: a caller-supplied complete passes the same structural gate as
// SetCompletenessStatus, regardless of which operation carries it.
func checkExplicitComplete(dp domain.DataPoint) error {
	if dp.Completeness != domain.CompletenessComplete {
		return nil
	}
	if missing := missingForCompletion(dp); len(missing) > 0 {
		return dErrors.NewMissingFields("data point cannot be marked complete", missing)
	}
	return nil
}

// missingForCompletion enumerates everything still blocking an explicit
// transition to complete.
func missingForCompletion(dp domain.DataPoint) []string {
	var missing []string
	if dp.Title == "" {
		missing = append(missing, "Title")
	}
	if dp.Content == "" {
		missing = append(missing, "Content")
	}
	if dp.Value == "" {
		missing = append(missing, "Value")
	}
	if dp.Source == "" {
		missing = append(missing, "Source")
	}
	if dp.Deadline == "" {
		missing = append(missing, "Deadline")
	}
	if dp.OwnerID == "" {
		missing = append(missing, "Owner")
	}
	if !dp.HasEvidence() {
		missing = append(missing, "Evidence")
	}
	return missing
}

func (s *Store) GetDataPoint(_ context.Context, dataPointID string) (domain.DataPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dp, ok := s.dataPoints[dataPointID]
	if !ok {
		return domain.DataPoint{}, dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", dataPointID)
	}
	return s.copyDataPoint(dp), nil
}

// ListDataPoints returns the section's data points in creation order.
func (s *Store) ListDataPoints(_ context.Context, sectionID string) ([]domain.DataPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sections[sectionID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	dps := s.dataPointsOfSection(sectionID)
	for i := range dps {
		dps[i] = s.copyDataPoint(dps[i])
	}
	return dps, nil
}

// copyDataPoint snapshots a data point so callers never alias internal
// slices.
func (s *Store) copyDataPoint(dp domain.DataPoint) domain.DataPoint {
	dp.ContributorIDs = copyStrings(dp.ContributorIDs)
	dp.EvidenceIDs = copyStrings(dp.EvidenceIDs)
	return dp
}
