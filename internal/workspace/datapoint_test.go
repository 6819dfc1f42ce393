package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type DataPointSuite struct {
	suite.Suite
	f       *fixture
	section domain.ReportSection
}

func (s *DataPointSuite) SetupTest() {
	s.f = newFixture(s.T())
	_, sections := s.f.withPeriod(s.T())
	s.section = sections[1] // Climate & Energy
}

func TestDataPointSuite(t *testing.T) {
	suite.Run(t, new(DataPointSuite))
}

// TestCreationValidation walks the rejection chain a data point passes
// through before it is accepted.
func (s *DataPointSuite) TestCreationValidation() {
	s.Run("requires a source", func() {
		req := validDataPoint(s.section.ID)
		req.Source = ""
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.Equal("validation: Source is required.", err.Error())
	})

	s.Run("estimates need assumptions", func() {
		req := validDataPoint(s.section.ID)
		req.InformationType = domain.InfoEstimate
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.Contains(err.Error(), "Assumptions are required")
	})

	s.Run("estimate with assumptions is accepted as incomplete", func() {
		req := validDataPoint(s.section.ID)
		req.InformationType = domain.InfoEstimate
		req.Assumptions = "Extrapolated from eleven months of invoices."
		dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().NoError(err)
		s.Equal(domain.CompletenessIncomplete, dp.Completeness)
		s.Equal(domain.ReviewDraft, dp.ReviewStatus)
	})

	s.Run("rejects unknown information type", func() {
		req := validDataPoint(s.section.ID)
		req.InformationType = "guess"
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("owner cannot also contribute", func() {
		req := validDataPoint(s.section.ID)
		req.OwnerID = s.f.owner.ID
		req.ContributorIDs = []string{s.f.owner.ID}
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.Contains(err.Error(), "Owner cannot also be a contributor.")
	})

	s.Run("blocked data points need a reason", func() {
		req := validDataPoint(s.section.ID)
		req.Blocked = true
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.Contains(err.Error(), "reason is required")
	})

	s.Run("unknown section fails", func() {
		_, err := s.f.store.CreateDataPoint(s.f.ctx, validDataPoint("missing-section"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DataPointSuite) TestOwnerRequiredMode() {
	f := newFixture(s.T(), WithOwnerRequired(true))
	_, sections := f.withPeriod(s.T())

	_, err := f.store.CreateDataPoint(f.ctx, validDataPoint(sections[0].ID))
	s.Require().Error(err)
	s.Equal("validation: Owner is required.", err.Error())

	req := validDataPoint(sections[0].ID)
	req.OwnerID = f.owner.ID
	_, err = f.store.CreateDataPoint(f.ctx, req)
	s.NoError(err)
}

func (s *DataPointSuite) TestReviewWorkflow() {
	req := validDataPoint(s.section.ID)
	req.OwnerID = s.f.owner.ID
	dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)

	submit := func() domain.DataPoint {
		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.owner.ID}
		upd.ReviewStatus = domain.ReviewReady
		got, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().NoError(err)
		return got
	}

	s.Run("approve requires ready-for-review", func() {
		_, err := s.f.store.ApproveDataPoint(s.f.ctx, ApproveDataPointRequest{
			DataPointID: dp.ID, ReviewerID: s.f.admin.ID, ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("request changes needs comments", func() {
		submit()
		_, err := s.f.store.RequestChanges(s.f.ctx, RequestChangesRequest{
			DataPointID: dp.ID, ReviewerID: s.f.admin.ID, ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "Review comments are required")
	})

	s.Run("changes-requested flows back through update", func() {
		got, err := s.f.store.RequestChanges(s.f.ctx, RequestChangesRequest{
			DataPointID: dp.ID, ReviewerID: s.f.admin.ID,
			Comments: "Split by site.", ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.Equal(domain.ReviewChangesRequested, got.ReviewStatus)
		s.Equal("Split by site.", got.ReviewComments)

		resubmitted := submit()
		s.Equal(domain.ReviewReady, resubmitted.ReviewStatus)
	})

	s.Run("approval records the reviewer", func() {
		got, err := s.f.store.ApproveDataPoint(s.f.ctx, ApproveDataPointRequest{
			DataPointID: dp.ID, ReviewerID: s.f.admin.ID, ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.Equal(domain.ReviewApproved, got.ReviewStatus)
		s.Equal(s.f.admin.ID, got.ReviewerID)
		s.False(got.ReviewedAt.IsZero())
	})

	s.Run("approved data points are read-only", func() {
		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.owner.ID}
		upd.ReviewStatus = domain.ReviewApproved
		upd.Value = "9999"
		_, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().Error(err)
		s.Equal("conflict: approved data points are read-only", err.Error())
	})

	s.Run("review-status-only updates are the one escape hatch", func() {
		stored, err := s.f.store.GetDataPoint(s.f.ctx, dp.ID)
		s.Require().NoError(err)

		upd := UpdateDataPointRequest{
			DataPointID: dp.ID,
			DataPointFields: DataPointFields{
				Type:            stored.Type,
				Classification:  stored.Classification,
				Title:           stored.Title,
				Content:         stored.Content,
				Value:           stored.Value,
				Unit:            stored.Unit,
				OwnerID:         stored.OwnerID,
				ContributorIDs:  stored.ContributorIDs,
				Source:          stored.Source,
				InformationType: stored.InformationType,
				Assumptions:     stored.Assumptions,
				Completeness:    stored.Completeness,
				ReviewStatus:    domain.ReviewDraft,
				Deadline:        stored.Deadline,
			},
			ActorID: s.f.owner.ID,
		}
		got, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().NoError(err)
		s.Equal(domain.ReviewDraft, got.ReviewStatus)
		s.Equal(stored.Value, got.Value)
	})
}

func (s *DataPointSuite) TestExplicitCompletion() {
	req := validDataPoint(s.section.ID)
	dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)

	s.Run("missing fields are enumerated at once", func() {
		_, err := s.f.store.SetCompletenessStatus(s.f.ctx, dp.ID, domain.CompletenessComplete, s.f.admin.ID)
		s.Require().Error(err)
		missing := dErrors.MissingFields(err)
		s.Contains(missing, "Owner")
		s.Contains(missing, "Evidence")
		s.Contains(missing, "Deadline")
	})

	s.Run("succeeds once owner, evidence, and deadline are in place", func() {
		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.admin.ID}
		upd.OwnerID = s.f.owner.ID
		upd.Deadline = "2024-11-30"
		_, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().NoError(err)

		ev, err := s.f.store.AddEvidence(s.f.ctx, AddEvidenceRequest{
			SectionID: s.section.ID, Title: "Invoice bundle",
			FileRef: "invoices-2024.pdf", UploadedBy: s.f.owner.ID, ActorID: s.f.owner.ID,
		})
		s.Require().NoError(err)
		s.Require().NoError(s.f.store.LinkEvidence(s.f.ctx, ev.ID, dp.ID, s.f.owner.ID))

		got, err := s.f.store.SetCompletenessStatus(s.f.ctx, dp.ID, domain.CompletenessComplete, s.f.admin.ID)
		s.Require().NoError(err)
		s.Equal(domain.CompletenessComplete, got.Completeness)
	})

	s.Run("not-applicable needs no structural check", func() {
		other, err := s.f.store.CreateDataPoint(s.f.ctx, validDataPoint(s.section.ID))
		s.Require().NoError(err)
		got, err := s.f.store.SetCompletenessStatus(s.f.ctx, other.ID, domain.CompletenessNotApplicable, s.f.admin.ID)
		s.Require().NoError(err)
		s.Equal(domain.CompletenessNotApplicable, got.Completeness)
	})
}

// TestExplicitCompleteOnWrite covers the other road to a complete status:
// supplying it directly on create or update must pass the same structural
// gate as the explicit transition.
func (s *DataPointSuite) TestExplicitCompleteOnWrite() {
	s.Run("create cannot claim complete without owner and evidence", func() {
		req := validDataPoint(s.section.ID)
		req.Completeness = domain.CompletenessComplete
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		missing := dErrors.MissingFields(err)
		s.Contains(missing, "Owner")
		s.Contains(missing, "Evidence")
	})

	s.Run("update cannot smuggle complete in either", func() {
		dp, err := s.f.store.CreateDataPoint(s.f.ctx, validDataPoint(s.section.ID))
		s.Require().NoError(err)

		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: validDataPoint(s.section.ID).DataPointFields, ActorID: s.f.admin.ID}
		upd.Completeness = domain.CompletenessComplete
		_, err = s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().Error(err)
		s.NotEmpty(dErrors.MissingFields(err))

		got, err := s.f.store.GetDataPoint(s.f.ctx, dp.ID)
		s.Require().NoError(err)
		s.Equal(domain.CompletenessIncomplete, got.Completeness)
	})

	s.Run("a fully furnished point may claim complete on update", func() {
		req := validDataPoint(s.section.ID)
		req.OwnerID = s.f.owner.ID
		req.Deadline = "2024-11-30"
		dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().NoError(err)

		ev, err := s.f.store.AddEvidence(s.f.ctx, AddEvidenceRequest{
			SectionID: s.section.ID, Title: "Audit workpapers",
			FileRef: "workpapers.pdf", UploadedBy: s.f.owner.ID, ActorID: s.f.owner.ID,
		})
		s.Require().NoError(err)
		s.Require().NoError(s.f.store.LinkEvidence(s.f.ctx, ev.ID, dp.ID, s.f.owner.ID))

		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.admin.ID}
		upd.Completeness = domain.CompletenessComplete
		got, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().NoError(err)
		s.Equal(domain.CompletenessComplete, got.Completeness)
	})
}

func (s *DataPointSuite) TestAutoCompleteness() {
	req := validDataPoint(s.section.ID)
	req.OwnerID = s.f.owner.ID
	dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.CompletenessIncomplete, dp.Completeness)

	ev, err := s.f.store.AddEvidence(s.f.ctx, AddEvidenceRequest{
		SectionID: s.section.ID, Title: "Meter readings",
		SourceURL: "https://meters.acme.example/2024", UploadedBy: s.f.owner.ID, ActorID: s.f.owner.ID,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.f.store.LinkEvidence(s.f.ctx, ev.ID, dp.ID, s.f.owner.ID))

	// A subsequent update re-derives completeness now that evidence exists.
	upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.owner.ID}
	upd.Value = "1300"
	got, err := s.f.store.UpdateDataPoint(s.f.ctx, upd)
	s.Require().NoError(err)
	s.Equal(domain.CompletenessComplete, got.Completeness)
}

func (s *DataPointSuite) TestRuleEnforcement() {
	_, err := s.f.store.AddValidationRule(s.f.ctx, AddValidationRuleRequest{
		SectionID: s.section.ID, Type: domain.RuleNonNegative,
		Message: "Energy figures cannot be negative.", ActorID: s.f.admin.ID,
	})
	s.Require().NoError(err)
	_, err = s.f.store.AddValidationRule(s.f.ctx, AddValidationRuleRequest{
		SectionID: s.section.ID, Type: domain.RuleAllowedUnits,
		Params: `["MWh","GJ"]`, Message: "Unit must be MWh or GJ.", ActorID: s.f.admin.ID,
	})
	s.Require().NoError(err)

	s.Run("first failing rule aborts with its message", func() {
		req := validDataPoint(s.section.ID)
		req.Value = "-5"
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.Require().Error(err)
		s.Equal("validation: Energy figures cannot be negative.", err.Error())
	})

	s.Run("allowed units match case-insensitively", func() {
		req := validDataPoint(s.section.ID)
		req.Unit = "mwh"
		_, err := s.f.store.CreateDataPoint(s.f.ctx, req)
		s.NoError(err)
	})

	s.Run("disallowed unit is rejected on update too", func() {
		dp, err := s.f.store.CreateDataPoint(s.f.ctx, validDataPoint(s.section.ID))
		s.Require().NoError(err)

		upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: validDataPoint(s.section.ID).DataPointFields, ActorID: s.f.admin.ID}
		upd.Unit = "barrels"
		_, err = s.f.store.UpdateDataPoint(s.f.ctx, upd)
		s.Require().Error(err)
		s.Equal("validation: Unit must be MWh or GJ.", err.Error())
	})

	s.Run("deactivated rules stop firing", func() {
		rules, err := s.f.store.ListValidationRules(s.f.ctx, s.section.ID)
		s.Require().NoError(err)
		s.Require().Len(rules, 2)
		_, err = s.f.store.DeactivateValidationRule(s.f.ctx, rules[1].ID, s.f.admin.ID)
		s.Require().NoError(err)

		req := validDataPoint(s.section.ID)
		req.Unit = "barrels"
		_, err = s.f.store.CreateDataPoint(s.f.ctx, req)
		s.NoError(err)
	})
}

// TestAuditDeltas checks the one-entry-per-mutation property: the entry's
// change list matches the actual field deltas.
func (s *DataPointSuite) TestAuditDeltas() {
	req := validDataPoint(s.section.ID)
	dp, err := s.f.store.CreateDataPoint(s.f.ctx, req)
	s.Require().NoError(err)

	before := len(s.f.store.AuditTrail(s.f.ctx, domain.AuditFilter{EntityID: dp.ID}))
	s.Equal(1, before)

	upd := UpdateDataPointRequest{DataPointID: dp.ID, DataPointFields: req.DataPointFields, ActorID: s.f.admin.ID}
	upd.Value = "1400"
	upd.Unit = "GJ"
	_, err = s.f.store.UpdateDataPoint(s.f.ctx, upd)
	s.Require().NoError(err)

	trail := s.f.store.AuditTrail(s.f.ctx, domain.AuditFilter{EntityID: dp.ID})
	s.Require().Len(trail, 2)
	s.Equal("updated", trail[0].Action)
	s.ElementsMatch([]domain.FieldChange{
		{Field: "value", Old: "1250", New: "1400"},
		{Field: "unit", Old: "MWh", New: "GJ"},
	}, trail[0].Changes)

	s.Run("a no-op update appends nothing", func() {
		_, err := s.f.store.UpdateDataPoint(s.f.ctx, UpdateDataPointRequest{
			DataPointID: dp.ID, DataPointFields: upd.DataPointFields, ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.Len(s.f.store.AuditTrail(s.f.ctx, domain.AuditFilter{EntityID: dp.ID}), 2)
	})
}

func TestNormalizeTrimsEveryStringField(t *testing.T) {
	f := DataPointFields{
		Title:          "  Scope 1 emissions ",
		BlockedReason:  " awaiting supplier data ",
		BlockedDueDate: "  2024-10-01  ",
		Deadline:       " 2024-11-30 ",
	}
	f.Normalize()
	assert.Equal(t, "Scope 1 emissions", f.Title)
	assert.Equal(t, "awaiting supplier data", f.BlockedReason)
	assert.Equal(t, "2024-10-01", f.BlockedDueDate)
	assert.Equal(t, "2024-11-30", f.Deadline)
}
