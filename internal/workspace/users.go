package workspace

import (
	"context"
	"sort"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/email"
)

// RegisterUserRequest loads one reference user into the workspace. Users are
// reference data, so registration is not audited.
type RegisterUserRequest struct {
	Name  string
	Email string
	Role  domain.Role
}

func (r *RegisterUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Role = domain.Role(strings.TrimSpace(string(r.Role)))
}

func (r *RegisterUserRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email must contain '@'")
	}
	if !r.Role.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "role must be one of admin, report-owner, contributor, auditor")
	}
	return nil
}

// RegisterUser adds a reference user. When no display name is supplied one is
// derived from the email address.
func (s *Store) RegisterUser(_ context.Context, req RegisterUserRequest) (domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := req.Name
	if name == "" {
		name = email.DisplayName(req.Email)
	}
	user := domain.User{ID: newID(), Name: name, Email: req.Email, Role: req.Role}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, dErrors.Newf(dErrors.CodeNotFound, "user %s not found", id)
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
