package workspace

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type OrganizationSuite struct {
	suite.Suite
	f *fixture
}

func (s *OrganizationSuite) SetupTest() {
	s.f = newFixture(s.T())
}

func TestOrganizationSuite(t *testing.T) {
	suite.Run(t, new(OrganizationSuite))
}

func (s *OrganizationSuite) TestSingletonOrganization() {
	s.Run("creates and reads back the organization", func() {
		org, err := s.f.store.CreateOrganization(s.f.ctx, CreateOrganizationRequest{
			Name: "Acme", Country: "DE", ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.NotEmpty(org.ID)

		got, err := s.f.store.GetOrganization(s.f.ctx)
		s.Require().NoError(err)
		s.Equal("Acme", got.Name)
	})

	s.Run("rejects a second organization", func() {
		_, err := s.f.store.CreateOrganization(s.f.ctx, CreateOrganizationRequest{
			Name: "Acme Two", ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("update mutates in place and audits the delta", func() {
		updated, err := s.f.store.UpdateOrganization(s.f.ctx, UpdateOrganizationRequest{
			Name: "Acme", Country: "AT", ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.Equal("AT", updated.Country)

		trail := s.f.store.AuditTrail(s.f.ctx, domain.AuditFilter{EntityType: "organization"})
		s.Require().NotEmpty(trail)
		s.Equal("updated", trail[0].Action)
		s.Contains(trail[0].Changes, domain.FieldChange{Field: "country", Old: "DE", New: "AT"})
	})
}

func (s *OrganizationSuite) TestUnitHierarchy() {
	mkUnit := func(name, parent string) domain.OrganizationalUnit {
		unit, err := s.f.store.CreateUnit(s.f.ctx, CreateUnitRequest{
			Name: name, ParentID: parent, ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		return unit
	}

	root := mkUnit("HQ", "")
	child := mkUnit("Operations", root.ID)
	grandchild := mkUnit("Plant North", child.ID)

	s.Run("rejects an unknown parent", func() {
		_, err := s.f.store.CreateUnit(s.f.ctx, CreateUnitRequest{
			Name: "Ghost", ParentID: "nope", ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects a direct self-cycle", func() {
		_, err := s.f.store.UpdateUnit(s.f.ctx, UpdateUnitRequest{
			UnitID: root.ID, Name: "HQ", ParentID: root.ID, ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects a transitive cycle", func() {
		_, err := s.f.store.UpdateUnit(s.f.ctx, UpdateUnitRequest{
			UnitID: root.ID, Name: "HQ", ParentID: grandchild.ID, ActorID: s.f.admin.ID,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("refuses to delete a unit with children", func() {
		err := s.f.store.DeleteUnit(s.f.ctx, child.ID, s.f.admin.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("deletes a leaf and audits it", func() {
		s.Require().NoError(s.f.store.DeleteUnit(s.f.ctx, grandchild.ID, s.f.admin.ID))
		_, err := s.f.store.GetUnit(s.f.ctx, grandchild.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		trail := s.f.store.AuditTrail(s.f.ctx, domain.AuditFilter{
			EntityType: "organizational-unit", EntityID: grandchild.ID,
		})
		s.Require().NotEmpty(trail)
		s.Equal("deleted", trail[0].Action)
	})

	s.Run("reparenting to a valid unit succeeds", func() {
		moved, err := s.f.store.UpdateUnit(s.f.ctx, UpdateUnitRequest{
			UnitID: child.ID, Name: "Operations", ParentID: "", ActorID: s.f.admin.ID,
		})
		s.Require().NoError(err)
		s.Empty(moved.ParentID)
	})
}

func (s *OrganizationSuite) TestUserRegistration() {
	s.Run("derives a display name from the email", func() {
		user, err := s.f.store.RegisterUser(s.f.ctx, RegisterUserRequest{
			Email: "jane.doe@acme.example", Role: domain.RoleContributor,
		})
		s.Require().NoError(err)
		s.Equal("Jane Doe", user.Name)
	})

	s.Run("rejects an unknown role", func() {
		_, err := s.f.store.RegisterUser(s.f.ctx, RegisterUserRequest{
			Email: "x@acme.example", Role: "superuser",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
