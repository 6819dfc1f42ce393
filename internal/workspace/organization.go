package workspace

import (
	"context"
	"sort"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type CreateOrganizationRequest struct {
	Name                  string
	LegalForm             string
	Country               string
	Identifier            string
	CoverageType          string
	CoverageJustification string
	ActorID               string
}

func (r *CreateOrganizationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.LegalForm = strings.TrimSpace(r.LegalForm)
	r.Country = strings.TrimSpace(r.Country)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.CoverageType = strings.TrimSpace(r.CoverageType)
}

func (r *CreateOrganizationRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "organization name is required")
	}
	return nil
}

// CreateOrganization installs the singleton reporting entity. A second create
// is a conflict; use UpdateOrganization to change it.
func (s *Store) CreateOrganization(_ context.Context, req CreateOrganizationRequest) (domain.Organization, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Organization{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.org != nil {
		return domain.Organization{}, dErrors.New(dErrors.CodeConflict, "an organization already exists")
	}
	org := domain.Organization{
		ID:                    newID(),
		Name:                  req.Name,
		LegalForm:             req.LegalForm,
		Country:               req.Country,
		Identifier:            req.Identifier,
		CoverageType:          req.CoverageType,
		CoverageJustification: req.CoverageJustification,
		CreatedBy:             req.ActorID,
		CreatedAt:             s.now(),
	}
	s.org = &org
	s.appendAudit(req.ActorID, actionCreated, entityOrganization, org.ID,
		diffOrganization(domain.Organization{}, org), "")
	return org, nil
}

type UpdateOrganizationRequest struct {
	Name                  string
	LegalForm             string
	Country               string
	Identifier            string
	CoverageType          string
	CoverageJustification string
	ActorID               string
}

func (r *UpdateOrganizationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.LegalForm = strings.TrimSpace(r.LegalForm)
	r.Country = strings.TrimSpace(r.Country)
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.CoverageType = strings.TrimSpace(r.CoverageType)
}

// UpdateOrganization mutates the singleton in place. Organizations are never
// deleted.
func (s *Store) UpdateOrganization(_ context.Context, req UpdateOrganizationRequest) (domain.Organization, error) {
	req.Normalize()
	if req.Name == "" {
		return domain.Organization{}, dErrors.New(dErrors.CodeValidation, "organization name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.org == nil {
		return domain.Organization{}, dErrors.New(dErrors.CodeNotFound, "no organization exists")
	}
	old := *s.org
	updated := old
	updated.Name = req.Name
	updated.LegalForm = req.LegalForm
	updated.Country = req.Country
	updated.Identifier = req.Identifier
	updated.CoverageType = req.CoverageType
	updated.CoverageJustification = req.CoverageJustification

	changes := diffOrganization(old, updated)
	s.org = &updated
	if len(changes) > 0 {
		s.appendAudit(req.ActorID, actionUpdated, entityOrganization, updated.ID, changes, "")
	}
	return updated, nil
}

func (s *Store) GetOrganization(_ context.Context) (domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.org == nil {
		return domain.Organization{}, dErrors.New(dErrors.CodeNotFound, "no organization exists")
	}
	return *s.org, nil
}

type CreateUnitRequest struct {
	Name        string
	ParentID    string
	Description string
	ActorID     string
}

func (r *CreateUnitRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ParentID = strings.TrimSpace(r.ParentID)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateUnitRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "unit name is required")
	}
	return nil
}

// CreateUnit adds a node to the unit forest. A declared parent must exist and
// must not place the new unit on a cycle.
func (s *Store) CreateUnit(_ context.Context, req CreateUnitRequest) (domain.OrganizationalUnit, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.OrganizationalUnit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unit := domain.OrganizationalUnit{
		ID:          newID(),
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
		CreatedBy:   req.ActorID,
		CreatedAt:   s.now(),
	}
	if req.ParentID != "" {
		if _, ok := s.units[req.ParentID]; !ok {
			return domain.OrganizationalUnit{}, dErrors.Newf(dErrors.CodeNotFound, "parent unit %s not found", req.ParentID)
		}
		if err := s.checkUnitCycle(unit.ID, req.ParentID); err != nil {
			return domain.OrganizationalUnit{}, err
		}
	}
	s.units[unit.ID] = unit
	s.appendAudit(req.ActorID, actionCreated, entityUnit, unit.ID,
		diffUnit(domain.OrganizationalUnit{}, unit), "")
	return unit, nil
}

type UpdateUnitRequest struct {
	UnitID      string
	Name        string
	ParentID    string
	Description string
	ActorID     string
}

func (r *UpdateUnitRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ParentID = strings.TrimSpace(r.ParentID)
	r.Description = strings.TrimSpace(r.Description)
}

func (s *Store) UpdateUnit(_ context.Context, req UpdateUnitRequest) (domain.OrganizationalUnit, error) {
	req.Normalize()
	if req.Name == "" {
		return domain.OrganizationalUnit{}, dErrors.New(dErrors.CodeValidation, "unit name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.units[req.UnitID]
	if !ok {
		return domain.OrganizationalUnit{}, dErrors.Newf(dErrors.CodeNotFound, "unit %s not found", req.UnitID)
	}
	if req.ParentID != "" {
		if _, ok := s.units[req.ParentID]; !ok {
			return domain.OrganizationalUnit{}, dErrors.Newf(dErrors.CodeNotFound, "parent unit %s not found", req.ParentID)
		}
		if err := s.checkUnitCycle(req.UnitID, req.ParentID); err != nil {
			return domain.OrganizationalUnit{}, err
		}
	}

	updated := old
	updated.Name = req.Name
	updated.ParentID = req.ParentID
	updated.Description = req.Description

	changes := diffUnit(old, updated)
	s.units[req.UnitID] = updated
	if len(changes) > 0 {
		s.appendAudit(req.ActorID, actionUpdated, entityUnit, updated.ID, changes, "")
	}
	return updated, nil
}

// DeleteUnit removes a leaf unit. Units that are still referenced as a parent
// cannot be deleted.
func (s *Store) DeleteUnit(_ context.Context, unitID, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.units[unitID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "unit %s not found", unitID)
	}
	for _, other := range s.units {
		if other.ParentID == unitID {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "unit %s still has child units", unitID)
		}
	}
	delete(s.units, unitID)
	s.appendAudit(actorID, actionDeleted, entityUnit, unitID, nil, "deleted unit "+unit.Name)
	return nil
}

func (s *Store) GetUnit(_ context.Context, unitID string) (domain.OrganizationalUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[unitID]
	if !ok {
		return domain.OrganizationalUnit{}, dErrors.Newf(dErrors.CodeNotFound, "unit %s not found", unitID)
	}
	return unit, nil
}

func (s *Store) ListUnits(_ context.Context) []domain.OrganizationalUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OrganizationalUnit, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// checkUnitCycle walks the parent chain upward from the proposed parent and
// fails if it reaches the unit being modified or revisits any node. Callers
// hold the lock.
func (s *Store) checkUnitCycle(unitID, parentID string) error {
	visited := map[string]bool{unitID: true}
	current := parentID
	for current != "" {
		if visited[current] {
			return dErrors.New(dErrors.CodeInvariantViolation, "assigning this parent would create a cycle in the unit hierarchy")
		}
		visited[current] = true
		parent, ok := s.units[current]
		if !ok {
			return nil
		}
		current = parent.ParentID
	}
	return nil
}
