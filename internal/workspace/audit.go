package workspace

import (
	"context"
	"strconv"
	"strings"
	"time"

	"canopy/internal/domain"
)

// Audit entity types and action verbs used across the store.
const (
	entityOrganization = "organization"
	entityUnit         = "organizational-unit"
	entityCatalogItem  = "catalog-item"
	entityPeriod       = "reporting-period"
	entitySection      = "report-section"
	entityDataPoint    = "data-point"
	entityEvidence     = "evidence"
	entityRule         = "validation-rule"

	actionCreated          = "created"
	actionUpdated          = "updated"
	actionDeleted          = "deleted"
	actionDeprecated       = "deprecated"
	actionApproved         = "approved"
	actionChangesRequested = "changes-requested"
	actionLinked           = "linked"
	actionUnlinked         = "unlinked"
	actionDeactivated      = "deactivated"
)

// appendAudit writes one immutable entry to the trail. Callers hold the lock,
// so the entry commits atomically with the mutation it records.
func (s *Store) appendAudit(actorID, action, entityType, entityID string, changes []domain.FieldChange, note string) {
	entry := domain.AuditEntry{
		ID:         newID(),
		Timestamp:  s.now(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Note:       note,
	}
	if actor, ok := s.users[actorID]; ok {
		entry.ActorName = actor.Name
	}
	s.audit = append(s.audit, entry)
	s.metrics.IncAuditEntries()
	s.logger.Debug("audit entry appended",
		"action", action, "entity_type", entityType, "entity_id", entityID)
}

// AuditTrail returns entries matching the filter, newest first. Entries are
// copied out; the trail itself is never mutated after append.
func (s *Store) AuditTrail(_ context.Context, filter domain.AuditFilter) []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		e := s.audit[i]
		if !filter.Matches(e) {
			continue
		}
		e.Changes = append([]domain.FieldChange{}, e.Changes...)
		out = append(out, e)
	}
	return out
}

// diff builds the ordered field-change list between two snapshots of the same
// entity, represented as aligned (field, old, new) triples.
type fieldDiff struct {
	changes []domain.FieldChange
}

func (d *fieldDiff) str(field, old, new string) {
	if old != new {
		d.changes = append(d.changes, domain.FieldChange{Field: field, Old: old, New: new})
	}
}

func (d *fieldDiff) boolean(field string, old, new bool) {
	d.str(field, strconv.FormatBool(old), strconv.FormatBool(new))
}

func (d *fieldDiff) date(field string, old, new time.Time) {
	d.str(field, formatDate(old), formatDate(new))
}

func (d *fieldDiff) list(field string, old, new []string) {
	d.str(field, strings.Join(old, ","), strings.Join(new, ","))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func diffOrganization(old, new domain.Organization) []domain.FieldChange {
	var d fieldDiff
	d.str("name", old.Name, new.Name)
	d.str("legal_form", old.LegalForm, new.LegalForm)
	d.str("country", old.Country, new.Country)
	d.str("identifier", old.Identifier, new.Identifier)
	d.str("coverage_type", old.CoverageType, new.CoverageType)
	d.str("coverage_justification", old.CoverageJustification, new.CoverageJustification)
	return d.changes
}

func diffUnit(old, new domain.OrganizationalUnit) []domain.FieldChange {
	var d fieldDiff
	d.str("name", old.Name, new.Name)
	d.str("parent_id", old.ParentID, new.ParentID)
	d.str("description", old.Description, new.Description)
	return d.changes
}

func diffPeriod(old, new domain.ReportingPeriod) []domain.FieldChange {
	var d fieldDiff
	d.str("name", old.Name, new.Name)
	d.date("start_date", old.StartDate, new.StartDate)
	d.date("end_date", old.EndDate, new.EndDate)
	d.str("reporting_mode", string(old.Mode), string(new.Mode))
	d.str("scope", old.Scope, new.Scope)
	d.str("status", string(old.Status), string(new.Status))
	d.str("owner_id", old.OwnerID, new.OwnerID)
	return d.changes
}

func diffDataPoint(old, new domain.DataPoint) []domain.FieldChange {
	var d fieldDiff
	d.str("type", old.Type, new.Type)
	d.str("classification", old.Classification, new.Classification)
	d.str("title", old.Title, new.Title)
	d.str("content", old.Content, new.Content)
	d.str("value", old.Value, new.Value)
	d.str("unit", old.Unit, new.Unit)
	d.str("owner_id", old.OwnerID, new.OwnerID)
	d.list("contributor_ids", old.ContributorIDs, new.ContributorIDs)
	d.str("source", old.Source, new.Source)
	d.str("information_type", string(old.InformationType), string(new.InformationType))
	d.str("assumptions", old.Assumptions, new.Assumptions)
	d.str("completeness_status", string(old.Completeness), string(new.Completeness))
	d.str("review_status", string(old.ReviewStatus), string(new.ReviewStatus))
	d.list("evidence_ids", old.EvidenceIDs, new.EvidenceIDs)
	d.str("deadline", old.Deadline, new.Deadline)
	d.boolean("blocked", old.Blocked, new.Blocked)
	d.str("blocked_reason", old.BlockedReason, new.BlockedReason)
	d.str("blocked_due_date", old.BlockedDueDate, new.BlockedDueDate)
	d.str("review_comments", old.ReviewComments, new.ReviewComments)
	return d.changes
}
