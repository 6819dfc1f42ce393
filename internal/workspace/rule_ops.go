package workspace

import (
	"context"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

type AddValidationRuleRequest struct {
	SectionID string
	Type      domain.RuleType
	Field     string
	Params    string
	Message   string
	ActorID   string
}

func (r *AddValidationRuleRequest) Normalize() {
	r.Type = domain.RuleType(strings.TrimSpace(string(r.Type)))
	r.Field = strings.TrimSpace(r.Field)
	r.Params = strings.TrimSpace(r.Params)
	r.Message = strings.TrimSpace(r.Message)
}

func (r *AddValidationRuleRequest) Validate() error {
	if !r.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "rule type must be one of non-negative, required-unit, allowed-units, value-within-period")
	}
	if r.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "a rule error message is required")
	}
	return nil
}

// AddValidationRule appends an active rule to the section's rule list. Rules
// evaluate in insertion order against every data point written to the
// section. Parameters are stored as-is: malformed JSON degrades to a passing
// rule at evaluation time, never to a hard failure.
func (s *Store) AddValidationRule(_ context.Context, req AddValidationRuleRequest) (domain.ValidationRule, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.ValidationRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[req.SectionID]; !ok {
		return domain.ValidationRule{}, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", req.SectionID)
	}

	rule := domain.ValidationRule{
		ID:        newID(),
		SectionID: req.SectionID,
		Type:      req.Type,
		Field:     req.Field,
		Params:    req.Params,
		Message:   req.Message,
		Active:    true,
		CreatedBy: req.ActorID,
		CreatedAt: s.now(),
	}
	s.rules[req.SectionID] = append(s.rules[req.SectionID], rule)
	s.appendAudit(req.ActorID, actionCreated, entityRule, rule.ID,
		[]domain.FieldChange{
			{Field: "rule_type", New: string(rule.Type)},
			{Field: "message", New: rule.Message},
		}, "")
	return rule, nil
}

// DeactivateValidationRule switches a rule off without removing it, so its
// history stays visible. Deactivating twice is a conflict.
func (s *Store) DeactivateValidationRule(_ context.Context, ruleID, actorID string) (domain.ValidationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sectionID, sectionRules := range s.rules {
		for i, rule := range sectionRules {
			if rule.ID != ruleID {
				continue
			}
			if !rule.Active {
				return domain.ValidationRule{}, dErrors.Newf(dErrors.CodeConflict, "rule %s is already inactive", ruleID)
			}
			rule.Active = false
			s.rules[sectionID][i] = rule
			s.appendAudit(actorID, actionDeactivated, entityRule, ruleID,
				[]domain.FieldChange{{Field: "active", Old: "true", New: "false"}}, "")
			return rule, nil
		}
	}
	return domain.ValidationRule{}, dErrors.Newf(dErrors.CodeNotFound, "rule %s not found", ruleID)
}

// ListValidationRules returns the section's rules in insertion order.
func (s *Store) ListValidationRules(_ context.Context, sectionID string) ([]domain.ValidationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sections[sectionID]; !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "section %s not found", sectionID)
	}
	return append([]domain.ValidationRule{}, s.rules[sectionID]...), nil
}
