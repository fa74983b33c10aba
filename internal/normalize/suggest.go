package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/dirsearch/internal/domain/suggest"
)

// shape is one recognized autosuggest response layout.
type shape struct {
	name    string
	matches func(gjson.Result) bool
	extract func(gjson.Result) []suggest.Item
}

// suggestShapes are tried in order; the first match wins.
var suggestShapes = []shape{
	{
		name:    "all_suggestions",
		matches: func(d gjson.Result) bool { return d.Get("allSuggestions").IsArray() },
		extract: func(d gjson.Result) []suggest.Item { return mapEach(d.Get("allSuggestions"), modernItem) },
	},
	{
		name:    "legacy_suggestions",
		matches: func(d gjson.Result) bool { return d.Get("suggestions").IsArray() },
		extract: func(d gjson.Result) []suggest.Item { return mapEach(d.Get("suggestions"), legacyItem) },
	},
	{
		name:    "bare_list",
		matches: func(d gjson.Result) bool { return d.IsArray() },
		extract: func(d gjson.Result) []suggest.Item { return mapEach(d, bareItem) },
	},
}

// Suggestions maps an autosuggest response body to suggestion items.
// Unrecognized shapes yield an empty, non-nil slice.
func Suggestions(raw []byte) []suggest.Item {
	items, _ := SuggestionsWithShape(raw)
	return items
}

// SuggestionsWithShape is Suggestions plus the name of the shape that matched ("" for none).
func SuggestionsWithShape(raw []byte) ([]suggest.Item, string) {
	if !gjson.ValidBytes(raw) {
		return []suggest.Item{}, ""
	}
	data := gjson.ParseBytes(raw)
	for _, s := range suggestShapes {
		if s.matches(data) {
			return s.extract(data), s.name
		}
	}
	return []suggest.Item{}, ""
}

func mapEach(list gjson.Result, fn func(gjson.Result) (suggest.Item, bool)) []suggest.Item {
	out := []suggest.Item{}
	for _, entry := range list.Array() {
		if it, ok := fn(entry); ok {
			out = append(out, it)
		}
	}
	return out
}

// modernItem reads {text, type, description, count}; upstream types are translated.
func modernItem(e gjson.Result) (suggest.Item, bool) {
	if e.IsObject() {
		text := e.Get("text")
		if !truthy(text) {
			return suggest.Item{}, false
		}
		it := suggest.Item{
			Text: text.String(),
			Type: suggest.ParseType(e.Get("type").String()),
		}
		if d := e.Get("description"); truthy(d) {
			it.Category = d.String()
		}
		it.Count = count(e)
		return it, true
	}
	return scalarItem(e)
}

// legacyItem accepts already well-formed items ({text, type, category, count}) or bare strings.
func legacyItem(e gjson.Result) (suggest.Item, bool) {
	if e.IsObject() {
		text := e.Get("text")
		if !truthy(text) {
			return suggest.Item{}, false
		}
		it := suggest.Item{
			Text: text.String(),
			Type: suggest.ParseType(e.Get("type").String()),
		}
		if c := e.Get("category"); truthy(c) {
			it.Category = c.String()
		}
		it.Count = count(e)
		return it, true
	}
	return scalarItem(e)
}

// bareItem wraps every entry as a general suggestion.
func bareItem(e gjson.Result) (suggest.Item, bool) {
	if e.IsObject() {
		if text := e.Get("text"); truthy(text) {
			return suggest.General(text.String()), true
		}
		return suggest.Item{}, false
	}
	return scalarItem(e)
}

func scalarItem(e gjson.Result) (suggest.Item, bool) {
	if !present(e) || e.IsArray() {
		return suggest.Item{}, false
	}
	s := e.String()
	if s == "" {
		return suggest.Item{}, false
	}
	return suggest.General(s), true
}

func count(e gjson.Result) *int {
	c := e.Get("count")
	if c.Type != gjson.Number {
		return nil
	}
	n := int(c.Int())
	return &n
}
