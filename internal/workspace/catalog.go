package workspace

import (
	"context"
	"strings"

	"canopy/internal/domain"
	dErrors "canopy/pkg/domain-errors"
)

// simplifiedCodes is the fixed catalog subset a simplified-mode period
// materializes. Extended mode takes the whole non-deprecated catalog.
var simplifiedCodes = map[string]bool{
	"GEN":           true,
	"ENV-CLIMATE":   true,
	"ENV-RESOURCES": true,
	"SOC-WORKFORCE": true,
	"GOV-CONDUCT":   true,
	"GOV-RISK":      true,
}

// defaultCatalog is the standard disclosure-topic library installed by
// SeedDefaultCatalog. Order here is catalog order and therefore section order.
var defaultCatalog = []domain.SectionCatalogItem{
	{Code: "GEN", Title: "General Information", Category: domain.CategoryGovernance, Description: "Basis of preparation, reporting boundaries, and company profile."},
	{Code: "ENV-CLIMATE", Title: "Climate & Energy", Category: domain.CategoryEnvironmental, Description: "Energy consumption, greenhouse gas emissions, and transition measures."},
	{Code: "ENV-RESOURCES", Title: "Resource Use & Circular Economy", Category: domain.CategoryEnvironmental, Description: "Material flows, waste, and circularity measures."},
	{Code: "ENV-POLLUTION", Title: "Pollution", Category: domain.CategoryEnvironmental, Description: "Emissions to air, water, and soil beyond greenhouse gases."},
	{Code: "ENV-WATER", Title: "Water & Marine Resources", Category: domain.CategoryEnvironmental, Description: "Water withdrawal, consumption, and discharge."},
	{Code: "ENV-BIODIVERSITY", Title: "Biodiversity & Ecosystems", Category: domain.CategoryEnvironmental, Description: "Sites in or near sensitive areas and impacts on ecosystems."},
	{Code: "SOC-WORKFORCE", Title: "Own Workforce", Category: domain.CategorySocial, Description: "Headcount, working conditions, health and safety, training."},
	{Code: "SOC-VALUECHAIN", Title: "Workers in the Value Chain", Category: domain.CategorySocial, Description: "Labour conditions and due diligence across the supply chain."},
	{Code: "GOV-CONDUCT", Title: "Business Conduct", Category: domain.CategoryGovernance, Description: "Anti-corruption, payment practices, and political engagement."},
	{Code: "GOV-RISK", Title: "Risk & Controls", Category: domain.CategoryGovernance, Description: "Governance bodies, internal controls, and sustainability risk management."},
}

// SeedDefaultCatalog installs the standard section catalog. It is a no-op
// when any catalog item already exists, so repeated bootstrap is safe.
func (s *Store) SeedDefaultCatalog(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.catalog) > 0 {
		return 0
	}
	for _, item := range defaultCatalog {
		item.ID = newID()
		s.catalog = append(s.catalog, item)
	}
	s.logger.Info("seeded default section catalog", "items", len(s.catalog))
	return len(s.catalog)
}

type AddCatalogItemRequest struct {
	Title       string
	Code        string
	Category    domain.Category
	Description string
	ActorID     string
}

func (r *AddCatalogItemRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Category = domain.Category(strings.TrimSpace(string(r.Category)))
}

func (r *AddCatalogItemRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "catalog item title is required")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "catalog item code is required")
	}
	if !r.Category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "category must be one of environmental, social, governance")
	}
	return nil
}

// AddCatalogItem appends a new disclosure topic. Codes are unique across the
// catalog, deprecated items included.
func (s *Store) AddCatalogItem(_ context.Context, req AddCatalogItemRequest) (domain.SectionCatalogItem, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.SectionCatalogItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.catalog {
		if existing.Code == req.Code {
			return domain.SectionCatalogItem{}, dErrors.Newf(dErrors.CodeConflict, "catalog code %s already exists", req.Code)
		}
	}
	item := domain.SectionCatalogItem{
		ID:          newID(),
		Title:       req.Title,
		Code:        req.Code,
		Category:    req.Category,
		Description: req.Description,
	}
	s.catalog = append(s.catalog, item)
	s.appendAudit(req.ActorID, actionCreated, entityCatalogItem, item.ID,
		[]domain.FieldChange{
			{Field: "code", New: item.Code},
			{Field: "title", New: item.Title},
			{Field: "category", New: string(item.Category)},
		}, "")
	return item, nil
}

// DeprecateCatalogItem retires a topic from future period generation. The
// transition is one-way.
func (s *Store) DeprecateCatalogItem(_ context.Context, itemID, actorID string) (domain.SectionCatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.catalog {
		if item.ID != itemID {
			continue
		}
		if item.Deprecated {
			return domain.SectionCatalogItem{}, dErrors.Newf(dErrors.CodeConflict, "catalog item %s is already deprecated", itemID)
		}
		item.Deprecated = true
		item.DeprecatedAt = s.now()
		s.catalog[i] = item
		s.appendAudit(actorID, actionDeprecated, entityCatalogItem, itemID,
			[]domain.FieldChange{{Field: "deprecated", Old: "false", New: "true"}}, "")
		return item, nil
	}
	return domain.SectionCatalogItem{}, dErrors.Newf(dErrors.CodeNotFound, "catalog item %s not found", itemID)
}

// ListCatalog returns catalog items in catalog order.
func (s *Store) ListCatalog(_ context.Context, includeDeprecated bool) []domain.SectionCatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SectionCatalogItem, 0, len(s.catalog))
	for _, item := range s.catalog {
		if item.Deprecated && !includeDeprecated {
			continue
		}
		out = append(out, item)
	}
	return out
}
