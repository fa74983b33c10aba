package dirsearch

import (
	"context"
	"fmt"
)

// CompanySearch is a fluent builder for one-shot searches.
// The first invalid criterion is reported by Do.
type CompanySearch struct {
	client  *Client
	filters Filters
	page    int
	size    int
	sortBy  string
	order   Order
	err     error
}

// Companies starts a search over the directory. Without criteria it matches everything.
func (c *Client) Companies() *CompanySearch {
	return &CompanySearch{
		client:  c,
		filters: EmptyFilters(),
		page:    1,
		size:    c.cfg.Search.PageSize,
		sortBy:  SortFoundingYear,
		order:   Asc,
	}
}

// Term sets the free-text query.
func (b *CompanySearch) Term(q string) *CompanySearch {
	b.filters = b.filters.WithSearchTerm(q)
	return b
}

// Industry restricts results to one industry.
func (b *CompanySearch) Industry(industry string) *CompanySearch {
	b.filters = b.filters.WithIndustry(industry)
	return b
}

// Location restricts results to one locality.
func (b *CompanySearch) Location(location string) *CompanySearch {
	b.filters = b.filters.WithLocation(location)
	return b
}

// Size restricts results to one company-size bucket, e.g. "51-200".
func (b *CompanySearch) Size(size string) *CompanySearch {
	b.filters = b.filters.WithCompanySize(size)
	return b
}

// FoundedSince keeps companies founded in year or later. year must be a whole number.
func (b *CompanySearch) FoundedSince(year string) *CompanySearch {
	f, err := b.filters.WithFoundingYear(year)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.filters = f
	return b
}

// Tag adds a required tag.
func (b *CompanySearch) Tag(tag string) *CompanySearch {
	b.filters = b.filters.AddTag(tag)
	return b
}

// Page selects a 1-based page.
func (b *CompanySearch) Page(page int) *CompanySearch {
	b.page = page
	return b
}

// PageSize overrides the client's page size.
func (b *CompanySearch) PageSize(n int) *CompanySearch {
	b.size = n
	return b
}

// SortBy sets the sort key (SortFoundingYear, SortIndustry, SortSize, SortLocation).
// An empty key sends no sort.
func (b *CompanySearch) SortBy(key string, order Order) *CompanySearch {
	b.sortBy = key
	b.order = order
	return b
}

// Filters returns the criteria collected so far.
func (b *CompanySearch) Filters() Filters {
	return b.filters
}

// Do executes the search.
func (b *CompanySearch) Do(ctx context.Context) (Result, error) {
	if b.err != nil {
		return Result{}, b.err
	}
	res, err := b.client.Search(ctx, Query{
		Filters:   b.filters,
		Page:      b.page,
		PageSize:  b.size,
		SortBy:    b.sortBy,
		SortOrder: b.order,
	})
	if err != nil {
		return res, fmt.Errorf("search companies: %w", err)
	}
	return res, nil
}

func (b *CompanySearch) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
