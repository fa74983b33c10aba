package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/dirsearch/internal/domain"
)

// Field names accepted by State.Set. They match the names the front-end sends
// with filter-change events.
const (
	FieldSearchTerm   = "searchTerm"
	FieldIndustry     = "industry"
	FieldCompanySize  = "companySize"
	FieldLocation     = "location"
	FieldFoundingYear = "foundingYear"
)

// Navigation item identifiers.
const (
	NavOverview       = "overview"
	navIndustryPrefix = "industry:"
	navLocationPrefix = "location:"
)

// State is the active set of search criteria. An empty field means unconstrained.
// State is a value: every update returns a new State and never touches the receiver.
type State struct {
	SearchTerm   string   `json:"searchTerm"`
	Industry     string   `json:"industry"`
	CompanySize  string   `json:"companySize"`
	Location     string   `json:"location"`
	FoundingYear string   `json:"foundingYear"`
	Tags         []string `json:"tags"`
}

// Empty returns the unconstrained State.
func Empty() State {
	return State{Tags: []string{}}
}

// Clear returns the unconstrained State.
func (s State) Clear() State { return Empty() }

// IsEmpty reports whether no criterion is set.
func (s State) IsEmpty() bool {
	return s.SearchTerm == "" && s.Industry == "" && s.CompanySize == "" &&
		s.Location == "" && s.FoundingYear == "" && len(s.Tags) == 0
}

// WithSearchTerm returns a copy with the free-text term replaced.
func (s State) WithSearchTerm(term string) State {
	s.Tags = slices.Clone(s.Tags)
	s.SearchTerm = term
	return s
}

// WithIndustry returns a copy with the industry filter replaced.
func (s State) WithIndustry(industry string) State {
	s.Tags = slices.Clone(s.Tags)
	s.Industry = industry
	return s
}

// WithLocation returns a copy with the location filter replaced.
func (s State) WithLocation(location string) State {
	s.Tags = slices.Clone(s.Tags)
	s.Location = location
	return s
}

// WithCompanySize returns a copy with the company-size filter replaced.
func (s State) WithCompanySize(size string) State {
	s.Tags = slices.Clone(s.Tags)
	s.CompanySize = size
	return s
}

// WithFoundingYear returns a copy with the founding-year threshold replaced.
// Non-numeric input is rejected so it never reaches the request builder.
func (s State) WithFoundingYear(year string) (State, error) {
	year = strings.TrimSpace(year)
	if year != "" {
		if _, ok := ParseYear(year); !ok {
			return s, fmt.Errorf("%w: %q", domain.ErrInvalidFoundingYear, year)
		}
	}
	s.Tags = slices.Clone(s.Tags)
	s.FoundingYear = year
	return s, nil
}

// WithTags returns a copy with the tag set replaced. Duplicates are dropped.
func (s State) WithTags(tags []string) State {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	s.Tags = out
	return s
}

// AddTag returns a copy with tag added. Adding a present tag is a no-op.
func (s State) AddTag(tag string) State {
	return s.WithTags(append(slices.Clone(s.Tags), tag))
}

// RemoveTag returns a copy without tag.
func (s State) RemoveTag(tag string) State {
	s.Tags = slices.DeleteFunc(slices.Clone(s.Tags), func(t string) bool { return t == tag })
	return s
}

// Set applies a filter-change event addressed by field name.
func (s State) Set(field, value string) (State, error) {
	switch field {
	case FieldSearchTerm:
		return s.WithSearchTerm(value), nil
	case FieldIndustry:
		return s.WithIndustry(value), nil
	case FieldCompanySize:
		return s.WithCompanySize(value), nil
	case FieldLocation:
		return s.WithLocation(value), nil
	case FieldFoundingYear:
		return s.WithFoundingYear(value)
	default:
		return s, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, field)
	}
}

// Navigate applies a navigation click. "overview" clears everything,
// "industry:<x>" and "location:<x>" set a single filter. Other items are ignored.
func (s State) Navigate(itemID string) State {
	switch {
	case itemID == NavOverview:
		return Empty()
	case strings.HasPrefix(itemID, navIndustryPrefix):
		return s.WithIndustry(strings.TrimPrefix(itemID, navIndustryPrefix))
	case strings.HasPrefix(itemID, navLocationPrefix):
		return s.WithLocation(strings.TrimPrefix(itemID, navLocationPrefix))
	default:
		return s
	}
}

// Equal reports whether two states describe the same criteria. Tag order is ignored.
func (s State) Equal(o State) bool {
	if s.SearchTerm != o.SearchTerm || s.Industry != o.Industry || s.CompanySize != o.CompanySize ||
		s.Location != o.Location || s.FoundingYear != o.FoundingYear || len(s.Tags) != len(o.Tags) {
		return false
	}
	for _, t := range s.Tags {
		if !slices.Contains(o.Tags, t) {
			return false
		}
	}
	return true
}

// ParseYear parses a founding-year string. ok is false for anything but a whole number.
func ParseYear(year string) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0, false
	}
	return y, true
}
