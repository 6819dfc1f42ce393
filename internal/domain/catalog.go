package domain

import "time"

// Category groups disclosure topics along the ESG axes.
type Category string

const (
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryGovernance    Category = "governance"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryEnvironmental, CategorySocial, CategoryGovernance:
		return true
	}
	return false
}

// SectionCatalogItem is a template from which report sections are generated
// at period creation. Codes are unique; deprecation is one-way.
type SectionCatalogItem struct {
	ID           string
	Title        string
	Code         string
	Category     Category
	Description  string
	Deprecated   bool
	DeprecatedAt time.Time
}
