package result

import "github.com/kailas-cloud/dirsearch/internal/domain/search/mode"

// Company is a single directory entry as shown to the user.
type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Size         string    `json:"size"`
	Location     string    `json:"location"`
	FoundingYear int       `json:"foundingYear"`
	Website      string    `json:"website"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	Employees    string    `json:"employees"`
	Revenue      string    `json:"revenue"`
	Status       string    `json:"status"`
	SearchType   mode.Mode `json:"searchType,omitempty"`
}

// Facets holds the distinct values the backend reported per filterable attribute.
type Facets struct {
	Locations    []string `json:"locations"`
	Countries    []string `json:"countries"`
	Industries   []string `json:"industries"`
	CompanySizes []string `json:"companySizes"`
}

// EmptyFacets returns facets with every list present and empty.
func EmptyFacets() Facets {
	return Facets{
		Locations:    []string{},
		Countries:    []string{},
		Industries:   []string{},
		CompanySizes: []string{},
	}
}

// Page describes where a result sits in the full result set.
type Page struct {
	Current     int   `json:"currentPage"`
	Size        int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
	TookMillis  int64 `json:"executionTimeMs"`
}

// Result is one page of search results. It is rebuilt from every response, never patched.
type Result struct {
	Companies  []Company `json:"companies"`
	TotalCount int       `json:"totalCount"`
	Facets     Facets    `json:"facets"`
	Page       Page      `json:"page"`
}

// Empty is the canonical result for failed or not-yet-run searches.
func Empty() Result {
	return Result{
		Companies: []Company{},
		Facets:    EmptyFacets(),
	}
}

// IsEmpty reports whether the result carries no companies and no count.
func (r Result) IsEmpty() bool {
	return len(r.Companies) == 0 && r.TotalCount == 0
}

// TotalPages derives the page count for a page size: ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
