package request

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/dirsearch/internal/domain"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/filter"
)

// Paging defaults.
const (
	DefaultPageSize = 25
	// WildcardQuery matches every document.
	WildcardQuery = "*"
)

// FacetFields are the backend fields whose value counts are requested with every search.
var FacetFields = []string{"industry_s", "country_s", "locality_ss"}

// Request is an immutable search request in backend terms.
type Request struct {
	query       string
	constraints []filter.Constraint
	facetFields []string
	sort        *Sort
	pageIndex   int
	pageSize    int
}

// Builder turns filter state and paging into requests.
// Now supplies the upper bound of founding-year ranges.
type Builder struct {
	Now func() time.Time
}

// Build uses the wall clock for the current year.
func Build(f filter.State, page, pageSize int, sortBy string, order Order) Request {
	return Builder{Now: time.Now}.Build(f, page, pageSize, sortBy, order)
}

// Build maps filters, 1-based paging and sort options to a Request.
// Empty criteria never produce constraints. sortBy == "" sends no sort clause.
// page must be >= 1 and pageSize > 0 (see Validate).
func (b Builder) Build(f filter.State, page, pageSize int, sortBy string, order Order) Request {
	query := f.SearchTerm
	if query == "" {
		query = WildcardQuery
	}

	r := Request{
		query:       query,
		constraints: b.constraints(f),
		facetFields: slices.Clone(FacetFields),
		pageIndex:   page - 1,
		pageSize:    pageSize,
	}
	if sortBy != "" {
		r.sort = &Sort{Field: SortField(sortBy), Order: ParseOrder(string(order))}
	}
	return r
}

func (b Builder) constraints(f filter.State) []filter.Constraint {
	var out []filter.Constraint
	add := func(kind filter.Kind, terms ...string) {
		if c, err := filter.NewTerms(kind, terms...); err == nil {
			out = append(out, c)
		}
	}

	if f.Industry != "" {
		add(filter.KindIndustry, f.Industry)
	}
	if f.Location != "" {
		add(filter.KindLocality, f.Location)
	}
	// Unparseable years are treated as unconstrained instead of sending NaN bounds.
	if year, ok := filter.ParseYear(f.FoundingYear); ok {
		out = append(out, filter.NewYearRange(filter.YearRange{From: year, To: b.currentYear()}))
	}
	if f.CompanySize != "" {
		add(filter.KindCompanySize, f.CompanySize)
	}
	if len(f.Tags) > 0 {
		add(filter.KindTags, f.Tags...)
	}
	return out
}

func (b Builder) currentYear() int {
	if b.Now == nil {
		return time.Now().Year()
	}
	return b.Now().Year()
}

// Validate checks caller-side paging preconditions.
func Validate(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d (pages start at 1)", domain.ErrInvalidPage, page)
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidPageSize, pageSize)
	}
	return nil
}

// Query returns the text query, WildcardQuery when unconstrained.
func (r Request) Query() string { return r.query }

// Constraints returns the structured filters in a stable order.
func (r Request) Constraints() []filter.Constraint { return slices.Clone(r.constraints) }

// Constraint returns the constraint of the given kind, if present.
func (r Request) Constraint(kind filter.Kind) (filter.Constraint, bool) {
	for _, c := range r.constraints {
		if c.Kind() == kind {
			return c, true
		}
	}
	return filter.Constraint{}, false
}

// FacetFields returns the requested facet fields.
func (r Request) FacetFields() []string { return slices.Clone(r.facetFields) }

// Sort returns the sort clause, nil when unsorted.
func (r Request) Sort() *Sort {
	if r.sort == nil {
		return nil
	}
	s := *r.sort
	return &s
}

// PageIndex returns the 0-based page.
func (r Request) PageIndex() int { return r.pageIndex }

// PageSize returns the page size.
func (r Request) PageSize() int { return r.pageSize }

type wireRequest struct {
	Query         string         `json:"query"`
	Filters       map[string]any `json:"filters,omitempty"`
	FacetFields   []string       `json:"facetFields"`
	SortField     string         `json:"sortField,omitempty"`
	SortDirection string         `json:"sortDirection,omitempty"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
}

// MarshalJSON renders the request body for POST /search/comprehensive.
func (r Request) MarshalJSON() ([]byte, error) {
	w := wireRequest{
		Query:       r.query,
		FacetFields: r.facetFields,
		Page:        r.pageIndex,
		PageSize:    r.pageSize,
	}
	if len(r.constraints) > 0 {
		w.Filters = make(map[string]any, len(r.constraints))
		for _, c := range r.constraints {
			if c.IsRange() {
				w.Filters[c.Key()] = *c.Years()
			} else {
				w.Filters[c.Key()] = c.Terms()
			}
		}
	}
	if r.sort != nil {
		w.SortField = r.sort.Field
		w.SortDirection = r.sort.Direction()
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	return b, nil
}
