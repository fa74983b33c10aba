// Package suggest holds the normalized autosuggest model.
package suggest

// Type classifies a suggestion and decides which filter it sets when committed.
type Type string

// Suggestion types.
const (
	TypeCompany  Type = "company"
	TypeIndustry Type = "industry"
	TypeLocation Type = "location"
	TypeGeneral  Type = "general"
)

// DisplayOrder is the fixed order groups are shown in.
var DisplayOrder = []Type{TypeCompany, TypeIndustry, TypeLocation, TypeGeneral}

// upstreamTypes translates backend suggestion types. "template" suggestions are plain queries.
var upstreamTypes = map[string]Type{
	"company":  TypeCompany,
	"industry": TypeIndustry,
	"location": TypeLocation,
	"template": TypeGeneral,
	"general":  TypeGeneral,
}

// ParseType maps a backend type name; unknown names become TypeGeneral.
func ParseType(s string) Type {
	if t, ok := upstreamTypes[s]; ok {
		return t
	}
	return TypeGeneral
}

// Label is the group header shown for a type. General suggestions have none.
func (t Type) Label() string {
	switch t {
	case TypeCompany:
		return "Companies"
	case TypeIndustry:
		return "Industries"
	case TypeLocation:
		return "Locations"
	default:
		return ""
	}
}

// Item is one autosuggest candidate.
type Item struct {
	Text     string `json:"text"`
	Type     Type   `json:"type"`
	Category string `json:"category,omitempty"`
	Count    *int   `json:"count,omitempty"`
}

// General wraps bare text as a general suggestion.
func General(text string) Item {
	return Item{Text: text, Type: TypeGeneral}
}

// Entry is an item placed in a display group, remembering its position in the flat list.
type Entry struct {
	Item
	Index int `json:"index"`
}

// Group is the display bucket for one suggestion type.
type Group struct {
	Type    Type    `json:"type"`
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// GroupByType buckets items in DisplayOrder for rendering. The input slice is
// not reordered; Entry.Index points back into it so keyboard highlighting keeps
// working on the flat sequence. Types outside DisplayOrder go to the general group.
func GroupByType(items []Item) []Group {
	buckets := make(map[Type][]Entry, len(DisplayOrder))
	for i, it := range items {
		t := it.Type
		if t.Label() == "" {
			t = TypeGeneral
		}
		buckets[t] = append(buckets[t], Entry{Item: it, Index: i})
	}

	groups := make([]Group, 0, len(buckets))
	for _, t := range DisplayOrder {
		if entries := buckets[t]; len(entries) > 0 {
			groups = append(groups, Group{Type: t, Label: t.Label(), Entries: entries})
		}
	}
	return groups
}
