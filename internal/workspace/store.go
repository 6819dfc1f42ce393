// Package workspace holds the authoritative in-memory state for an
// organization's ESG reporting structure and enforces every business rule
// governing how that state may evolve. One store instance owns all entities;
// one lock guards every read and write, so each operation observes a
// consistent snapshot and commits atomically with its audit records.
package workspace

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"canopy/internal/domain"
	"canopy/internal/workspace/metrics"
)

// Store is the single domain store. All public operations acquire mu for
// their full duration: validation, mutation, and audit-append are one atomic
// unit, and no operation does I/O while holding the lock. Collections handed
// to callers are defensive copies.
type Store struct {
	mu sync.RWMutex

	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
	requireOwner bool

	org           *domain.Organization
	users         map[string]domain.User
	units         map[string]domain.OrganizationalUnit
	catalog       []domain.SectionCatalogItem
	periods       map[string]domain.ReportingPeriod
	periodOrder   []string
	sections      map[string]domain.ReportSection
	dataPoints    map[string]domain.DataPoint
	evidence      map[string]domain.Evidence
	rules         map[string][]domain.ValidationRule
	audit         []domain.AuditEntry
	reminderCfgs  map[string]domain.ReminderConfig
	reminderSends []domain.ReminderRecord
	notifications []domain.Notification
}

// Option configures a Store.
type Option func(s *Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock replaces the store's time source; tests use it to pin "today"
// for the reminder idempotency query.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOwnerRequired makes the data-point owner mandatory at creation time.
// Off by default: ownership may arrive later in the workflow.
func WithOwnerRequired(required bool) Option {
	return func(s *Store) { s.requireOwner = required }
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]domain.User),
		units:        make(map[string]domain.OrganizationalUnit),
		periods:      make(map[string]domain.ReportingPeriod),
		sections:     make(map[string]domain.ReportSection),
		dataPoints:   make(map[string]domain.DataPoint),
		evidence:     make(map[string]domain.Evidence),
		rules:        make(map[string][]domain.ValidationRule),
		reminderCfgs: make(map[string]domain.ReminderConfig),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func newID() string { return uuid.NewString() }

// sectionsOfPeriod returns the period's sections in generation order.
// Callers hold the lock.
func (s *Store) sectionsOfPeriod(periodID string) []domain.ReportSection {
	var out []domain.ReportSection
	for _, sec := range s.sections {
		if sec.PeriodID == periodID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// dataPointsOfSection returns the section's data points in creation order.
// Callers hold the lock.
func (s *Store) dataPointsOfSection(sectionID string) []domain.DataPoint {
	var out []domain.DataPoint
	for _, dp := range s.dataPoints {
		if dp.SectionID == sectionID {
			out = append(out, dp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func copyInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int{}, in...)
}
