package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"canopy/internal/domain"
)

func dpWith(completeness domain.CompletenessStatus, review domain.ReviewStatus) domain.DataPoint {
	return domain.DataPoint{Completeness: completeness, ReviewStatus: review}
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name string
		dps  []domain.DataPoint
		want domain.ProgressStatus
	}{
		{"no data points", nil, domain.ProgressNotStarted},
		{"all missing", []domain.DataPoint{
			dpWith(domain.CompletenessMissing, domain.ReviewDraft),
			dpWith(domain.CompletenessMissing, domain.ReviewDraft),
		}, domain.ProgressNotStarted},
		{"changes requested wins over not-started", []domain.DataPoint{
			dpWith(domain.CompletenessMissing, domain.ReviewChangesRequested),
		}, domain.ProgressBlocked},
		{"changes requested wins over completed", []domain.DataPoint{
			dpWith(domain.CompletenessComplete, domain.ReviewChangesRequested),
		}, domain.ProgressBlocked},
		{"all complete or not applicable", []domain.DataPoint{
			dpWith(domain.CompletenessComplete, domain.ReviewApproved),
			dpWith(domain.CompletenessNotApplicable, domain.ReviewDraft),
		}, domain.ProgressCompleted},
		{"mixed is in progress", []domain.DataPoint{
			dpWith(domain.CompletenessComplete, domain.ReviewDraft),
			dpWith(domain.CompletenessIncomplete, domain.ReviewDraft),
		}, domain.ProgressInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressOf(tt.dps))
		})
	}
}

func TestTallyCompleteness(t *testing.T) {
	t.Run("empty set yields zero percentage", func(t *testing.T) {
		b := tallyCompleteness(nil)
		assert.Zero(t, b.Total)
		assert.Zero(t, b.Percentage)
	})

	t.Run("percentage rounds to one decimal", func(t *testing.T) {
		dps := []domain.DataPoint{
			dpWith(domain.CompletenessComplete, domain.ReviewDraft),
			dpWith(domain.CompletenessIncomplete, domain.ReviewDraft),
			dpWith(domain.CompletenessMissing, domain.ReviewDraft),
		}
		b := tallyCompleteness(dps)
		require.Equal(t, 3, b.Total)
		assert.Equal(t, 1, b.Complete)
		assert.Equal(t, 33.3, b.Percentage)
	})
}

type AggregateSuite struct {
	suite.Suite
	f        *fixture
	period   domain.ReportingPeriod
	sections []domain.ReportSection
}

func (s *AggregateSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.period, s.sections = s.f.withPeriod(s.T())
}

func TestAggregateSuite(t *testing.T) {
	suite.Run(t, new(AggregateSuite))
}

func (s *AggregateSuite) TestCompletenessGranularities() {
	env := s.sections[1] // Climate & Energy (environmental)
	gov := s.sections[0] // General Information (governance)

	req := validDataPoint(env.ID)
	req.OwnerID = s.f.owner.ID
	_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)
	_, err = s.f.store.CreateDataPoint(s.f.ctx, validDataPoint(gov.ID))
	s.Require().NoError(err)

	overall, err := s.f.store.CompletenessStats(s.f.ctx, s.period.ID)
	s.Require().NoError(err)
	s.Equal(2, overall.Total)
	s.Equal(2, overall.Incomplete)

	byCategory, err := s.f.store.CompletenessByCategory(s.f.ctx, s.period.ID)
	s.Require().NoError(err)
	s.Equal(1, byCategory[domain.CategoryEnvironmental].Total)
	s.Equal(1, byCategory[domain.CategoryGovernance].Total)

	byOwner, err := s.f.store.CompletenessByOwner(s.f.ctx, s.period.ID)
	s.Require().NoError(err)
	s.Equal(1, byOwner[s.f.owner.ID].Total)
	s.Equal(1, byOwner[""].Total)
}

func (s *AggregateSuite) TestResponsibilityMatrixOrdering() {
	zoe, err := s.f.store.RegisterUser(s.f.ctx, RegisterUserRequest{
		Name: "Zoe Zimmer", Email: "zoe@acme.example", Role: domain.RoleReportOwner,
	})
	s.Require().NoError(err)

	// Assign two sections to Zoe and one to Otto; the rest stay unassigned.
	_, err = s.f.store.AssignSectionOwner(s.f.ctx, s.sections[0].ID, zoe.ID, s.f.admin.ID)
	s.Require().NoError(err)
	_, err = s.f.store.AssignSectionOwner(s.f.ctx, s.sections[1].ID, zoe.ID, s.f.admin.ID)
	s.Require().NoError(err)
	_, err = s.f.store.AssignSectionOwner(s.f.ctx, s.sections[2].ID, s.f.owner.ID, s.f.admin.ID)
	s.Require().NoError(err)

	_, err = s.f.store.CreateDataPoint(s.f.ctx, validDataPoint(s.sections[1].ID))
	s.Require().NoError(err)

	matrix, err := s.f.store.ResponsibilityMatrix(s.f.ctx, s.period.ID)
	s.Require().NoError(err)
	s.Require().Len(matrix, 3)

	s.Empty(matrix[0].OwnerID, "unassigned row sorts first")
	s.Equal(3, matrix[0].SectionCount)
	s.Equal("Otto Owner", matrix[1].OwnerName)
	s.Equal("Zoe Zimmer", matrix[2].OwnerName)
	s.Equal(2, matrix[2].SectionCount)
	s.Equal(1, matrix[2].DataPointCount)
}

func (s *AggregateSuite) TestSectionSummaries() {
	env := s.sections[1]
	_, err := s.f.store.AssignSectionOwner(s.f.ctx, env.ID, s.f.owner.ID, s.f.admin.ID)
	s.Require().NoError(err)

	req := validDataPoint(env.ID)
	req.InformationType = domain.InfoEstimate
	req.Assumptions = "Extrapolated."
	_, err = s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)

	_, err = s.f.store.AddEvidence(s.f.ctx, AddEvidenceRequest{
		SectionID: env.ID, Title: "Bills", FileRef: "bills.pdf",
		UploadedBy: s.f.owner.ID, ActorID: s.f.owner.ID,
	})
	s.Require().NoError(err)

	summaries, err := s.f.store.SectionSummaries(s.f.ctx, s.period.ID)
	s.Require().NoError(err)
	s.Require().Len(summaries, 6)

	sum := summaries[1]
	s.Equal(env.ID, sum.SectionID)
	s.Equal("Otto Owner", sum.OwnerName)
	s.Equal(1, sum.DataPointCount)
	s.Equal(1, sum.EvidenceCount)
	s.Equal(1, sum.GapCount)
	s.Equal(1, sum.AssumptionCount)
	s.Equal(domain.ProgressInProgress, sum.Progress)
	s.Zero(sum.CompletenessPct)

	s.Equal(domain.ProgressNotStarted, summaries[0].Progress)
}
