package workspace

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

const maxSourceURLLength = 2048

type AddEvidenceRequest struct {
	SectionID   string
	Title       string
	Description string
	FileRef     string
	SourceURL   string
	UploadedBy  string
	ActorID     string
}

func (r *AddEvidenceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.FileRef = strings.TrimSpace(r.FileRef)
	r.SourceURL = strings.TrimSpace(r.SourceURL)
	r.UploadedBy = strings.TrimSpace(r.UploadedBy)
}

func (r *AddEvidenceRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "Evidence title is required.")
	}
	if r.FileRef == "" && r.SourceURL == "" {
		return dErrors.New(dErrors.CodeValidation, "A file reference or source URL is required.")
	}
	if r.SourceURL != "" {
		if len(r.SourceURL) > maxSourceURLLength {
			return dErrors.Newf(dErrors.CodeValidation, "Source URL must be %d characters or less.", maxSourceURLLength)
		}
		u, err := url.Parse(r.SourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return dErrors.New(dErrors.CodeValidation, "Source URL must be an http or https URL.")
		}
	}
	return nil
}

// AddEvidence registers a supporting document or link against a section.
// Data-point linkage happens separately through LinkEvidence.
func (s *Store) AddEvidence(_ context.Context, req AddEvidenceRequest) (domain.Evidence, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Evidence{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[req.SectionID]; !ok {
		return domain.Evidence{}, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", req.SectionID)
	}
	if _, ok := s.users[req.UploadedBy]; !ok {
		return domain.Evidence{}, dErrors.Newf(dErrors.CodeNotFound, "uploader %s not found", req.UploadedBy)
	}

	ev := domain.Evidence{
		ID:          newID(),
		SectionID:   req.SectionID,
		Title:       req.Title,
		Description: req.Description,
		FileRef:     req.FileRef,
		SourceURL:   req.SourceURL,
		UploadedBy:  req.UploadedBy,
		UploadedAt:  s.now(),
	}
	s.evidence[ev.ID] = ev
	s.appendAudit(req.ActorID, actionCreated, entityEvidence, ev.ID,
		[]domain.FieldChange{
			{Field: "title", New: ev.Title},
			{Field: "file_ref", New: ev.FileRef},
			{Field: "source_url", New: ev.SourceURL},
		}, "")
	return s.copyEvidence(ev), nil
}

// LinkEvidence connects evidence and data point in both directions. Linking
// an already-linked pair is a no-op.
func (s *Store) LinkEvidence(_ context.Context, evidenceID, dataPointID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.evidence[evidenceID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "evidence %s not found", evidenceID)
	}
	dp, ok := s.dataPoints[dataPointID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", dataPointID)
	}
	if containsString(dp.EvidenceIDs, evidenceID) {
		return nil
	}

	oldIDs := copyStrings(dp.EvidenceIDs)
	dp.EvidenceIDs = append(copyStrings(dp.EvidenceIDs), evidenceID)
	ev.DataPointIDs = append(copyStrings(ev.DataPointIDs), dataPointID)
	s.dataPoints[dataPointID] = dp
	s.evidence[evidenceID] = ev

	s.appendAudit(actorID, actionLinked, entityDataPoint, dataPointID,
		[]domain.FieldChange{{Field: "evidence_ids", Old: strings.Join(oldIDs, ","), New: strings.Join(dp.EvidenceIDs, ",")}},
		"linked evidence "+ev.Title)
	return nil
}

// UnlinkEvidence removes the edge in both directions. Unlinking a pair that
// is not linked is a no-op.
func (s *Store) UnlinkEvidence(_ context.Context, evidenceID, dataPointID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.evidence[evidenceID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "evidence %s not found", evidenceID)
	}
	dp, ok := s.dataPoints[dataPointID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "data point %s not found", dataPointID)
	}
	if !containsString(dp.EvidenceIDs, evidenceID) {
		return nil
	}

	oldIDs := copyStrings(dp.EvidenceIDs)
	dp.EvidenceIDs = removeString(dp.EvidenceIDs, evidenceID)
	ev.DataPointIDs = removeString(ev.DataPointIDs, dataPointID)

	changes := []domain.FieldChange{{Field: "evidence_ids", Old: strings.Join(oldIDs, ","), New: strings.Join(dp.EvidenceIDs, ",")}}
	if downgraded, ok := downgradeWithoutEvidence(dp); ok {
		changes = append(changes, domain.FieldChange{
			Field: "completeness_status", Old: string(dp.Completeness), New: string(downgraded.Completeness),
		})
		dp = downgraded
	}
	s.dataPoints[dataPointID] = dp
	s.evidence[evidenceID] = ev

	s.appendAudit(actorID, actionUnlinked, entityDataPoint, dataPointID, changes,
		"unlinked evidence "+ev.Title)
	return nil
}

// downgradeWithoutEvidence revokes a complete status whose evidence set just
// emptied. Complete implies at least one linked evidence item, so evidence
// removal re-derives the status.
func downgradeWithoutEvidence(dp domain.DataPoint) (domain.DataPoint, bool) {
	if dp.Completeness != domain.CompletenessComplete || dp.HasEvidence() {
		return dp, false
	}
	dp.Completeness = domain.CompletenessIncomplete
	return dp, true
}

// DeleteEvidence removes an evidence record and cascades the removal to every
// linked data point's evidence set.
func (s *Store) DeleteEvidence(_ context.Context, evidenceID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.evidence[evidenceID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "evidence %s not found", evidenceID)
	}
	for _, dpID := range ev.DataPointIDs {
		dp, ok := s.dataPoints[dpID]
		if !ok {
			continue
		}
		dp.EvidenceIDs = removeString(dp.EvidenceIDs, evidenceID)
		dp, _ = downgradeWithoutEvidence(dp)
		s.dataPoints[dpID] = dp
	}
	delete(s.evidence, evidenceID)
	s.appendAudit(actorID, actionDeleted, entityEvidence, evidenceID, nil, "deleted evidence "+ev.Title)
	return nil
}

func (s *Store) GetEvidence(_ context.Context, evidenceID string) (domain.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.evidence[evidenceID]
	if !ok {
		return domain.Evidence{}, dErrors.Newf(dErrors.CodeNotFound, "evidence %s not found", evidenceID)
	}
	return s.copyEvidence(ev), nil
}

// ListEvidence returns the section's evidence in upload order.
func (s *Store) ListEvidence(_ context.Context, sectionID string) ([]domain.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sections[sectionID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	var out []domain.Evidence
	for _, ev := range s.evidence {
		if ev.SectionID == sectionID {
			out = append(out, s.copyEvidence(ev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *Store) copyEvidence(ev domain.Evidence) domain.Evidence {
	ev.DataPointIDs = copyStrings(ev.DataPointIDs)
	return ev
}

func containsString(in []string, v string) bool {
	for _, s := range in {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(in []string, v string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
