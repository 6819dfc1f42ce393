package domain

import "time"

// FieldChange records one field-level delta inside an audit entry.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// AuditEntry is one immutable record in the append-only trail. Every mutating
// operation that changes at least one field writes exactly one entry covering
// all of its deltas.
type AuditEntry struct {
	ID         string
	Timestamp  time.Time
	ActorID    string
	ActorName  string
	Action     string
	EntityType string
	EntityID   string
	Changes    []FieldChange
	Note       string
}

// AuditFilter narrows trail retrieval. Zero values match everything.
type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	From       time.Time
	To         time.Time
}

// Matches reports whether the entry passes every set filter field.
func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}
