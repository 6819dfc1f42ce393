package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"canopy/internal/domain"
)

// fakeClock is a settable time source that advances one second per reading,
// so records created in sequence stay ordered.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// fixture bootstraps a workspace far enough to exercise one concern.
type fixture struct {
	store *Store
	clock *fakeClock
	ctx   context.Context

	admin domain.User
	owner domain.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := newFakeClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	f := &fixture{
		clock: clock,
		ctx:   context.Background(),
	}
	f.store = New(append([]Option{WithClock(clock.Now)}, opts...)...)

	var err error
	f.admin, err = f.store.RegisterUser(f.ctx, RegisterUserRequest{
		Name: "Ada Admin", Email: "ada@acme.example", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	f.owner, err = f.store.RegisterUser(f.ctx, RegisterUserRequest{
		Name: "Otto Owner", Email: "otto@acme.example", Role: domain.RoleReportOwner,
	})
	require.NoError(t, err)
	return f
}

// withOrganization creates the singleton organization and one unit.
func (f *fixture) withOrganization(t *testing.T) {
	t.Helper()
	_, err := f.store.CreateOrganization(f.ctx, CreateOrganizationRequest{
		Name: "Acme", LegalForm: "GmbH", Country: "DE", Identifier: "HRB 12345", ActorID: f.admin.ID,
	})
	require.NoError(t, err)
	_, err = f.store.CreateUnit(f.ctx, CreateUnitRequest{Name: "HQ", ActorID: f.admin.ID})
	require.NoError(t, err)
}

// withPeriod seeds the catalog and opens a simplified 2024 period, returning
// it with its generated sections.
func (f *fixture) withPeriod(t *testing.T) (domain.ReportingPeriod, []domain.ReportSection) {
	t.Helper()
	f.withOrganization(t)
	f.store.SeedDefaultCatalog(f.ctx)
	period, err := f.store.CreatePeriod(f.ctx, CreatePeriodRequest{
		Name:      "FY 2024",
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
		Mode:      domain.ModeSimplified,
		ActorID:   f.admin.ID,
	})
	require.NoError(t, err)
	sections, err := f.store.ListSections(f.ctx, period.ID)
	require.NoError(t, err)
	return period, sections
}

// validDataPoint returns creatable fields for the given section.
func validDataPoint(sectionID string) CreateDataPointRequest {
	return CreateDataPointRequest{
		SectionID: sectionID,
		DataPointFields: DataPointFields{
			Title:           "Total energy consumption",
			Content:         "Aggregated consumption across all sites.",
			Value:           "1250",
			Unit:            "MWh",
			Source:          "Utility invoices",
			InformationType: domain.InfoFact,
		},
	}
}
