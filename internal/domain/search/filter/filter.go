package filter

import (
	"fmt"
	"slices"
)

// Kind identifies a structured constraint.
type Kind int

// Constraint kinds.
const (
	KindIndustry Kind = iota + 1
	KindLocality
	KindCompanySize
	KindTags
	// KindFoundingYear is the only range kind.
	KindFoundingYear
)

// Key returns the backend field name for the constraint kind.
func (k Kind) Key() string {
	switch k {
	case KindIndustry:
		return "industry"
	case KindLocality:
		return "locality_ss"
	case KindCompanySize:
		return "company_size"
	case KindTags:
		return "tags"
	case KindFoundingYear:
		return "year_founded_d"
	default:
		return ""
	}
}

// Constraint is a single structured filter: a term list or a year range.
type Constraint struct {
	kind  Kind
	terms []string
	years *YearRange
}

// NewTerms creates a term-list constraint. The list must not be empty.
func NewTerms(kind Kind, terms ...string) (Constraint, error) {
	if kind == KindFoundingYear || kind.Key() == "" {
		return Constraint{}, fmt.Errorf("kind %d is not a term-list kind", kind)
	}
	if len(terms) == 0 {
		return Constraint{}, fmt.Errorf("%s: at least one term is required", kind.Key())
	}
	return Constraint{kind: kind, terms: slices.Clone(terms)}, nil
}

// NewYearRange creates a founding-year range constraint.
func NewYearRange(r YearRange) Constraint {
	return Constraint{kind: KindFoundingYear, years: &r}
}

// Kind returns the constraint kind.
func (c Constraint) Kind() Kind { return c.kind }

// Key returns the backend field name.
func (c Constraint) Key() string { return c.kind.Key() }

// Terms returns the term list (nil for range constraints).
func (c Constraint) Terms() []string { return slices.Clone(c.terms) }

// Years returns the year range (nil for term constraints).
func (c Constraint) Years() *YearRange { return c.years }

// IsRange reports whether this is a range constraint.
func (c Constraint) IsRange() bool { return c.years != nil }

// YearRange is an inclusive [From, To] interval of founding years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}
