package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/dirsearch/internal/domain/suggest"
)

func TestSuggestions_ModernShape(t *testing.T) {
	items, shape := SuggestionsWithShape([]byte(
		`{"allSuggestions":[{"text":"Acme","type":"template","description":"d"}]}`,
	))
	assert.Equal(t, "all_suggestions", shape)
	assert.Equal(t, []suggest.Item{{Text: "Acme", Type: suggest.TypeGeneral, Category: "d"}}, items)
}

func TestSuggestions_ModernTypeTranslation(t *testing.T) {
	items := Suggestions([]byte(`{"allSuggestions":[
		{"text":"Acme","type":"company","count":3},
		{"text":"Software","type":"industry"},
		{"text":"Berlin","type":"location"},
		{"text":"acme near me","type":"mystery"},
		{"type":"company"},
		"plain"
	]}`))

	require.Len(t, items, 5)
	assert.Equal(t, suggest.TypeCompany, items[0].Type)
	require.NotNil(t, items[0].Count)
	assert.Equal(t, 3, *items[0].Count)
	assert.Equal(t, suggest.TypeIndustry, items[1].Type)
	assert.Equal(t, suggest.TypeLocation, items[2].Type)
	assert.Equal(t, suggest.TypeGeneral, items[3].Type)
	assert.Equal(t, suggest.General("plain"), items[4])
}

func TestSuggestions_ModernWinsOverLegacy(t *testing.T) {
	items, shape := SuggestionsWithShape([]byte(
		`{"allSuggestions":[{"text":"new","type":"company"}],"suggestions":["old"]}`,
	))
	assert.Equal(t, "all_suggestions", shape)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Text)
}

func TestSuggestions_LegacyStrings(t *testing.T) {
	items, shape := SuggestionsWithShape([]byte(`{"suggestions":["x"]}`))
	assert.Equal(t, "legacy_suggestions", shape)
	assert.Equal(t, []suggest.Item{{Text: "x", Type: suggest.TypeGeneral}}, items)
}

func TestSuggestions_LegacyWellFormed(t *testing.T) {
	items := Suggestions([]byte(`{"suggestions":[{"text":"Paris","type":"location","category":"City"}, "y"]}`))
	assert.Equal(t, []suggest.Item{
		{Text: "Paris", Type: suggest.TypeLocation, Category: "City"},
		suggest.General("y"),
	}, items)
}

func TestSuggestions_LegacyWhenModernNotList(t *testing.T) {
	items, shape := SuggestionsWithShape([]byte(`{"allSuggestions":null,"suggestions":["x"]}`))
	assert.Equal(t, "legacy_suggestions", shape)
	assert.Len(t, items, 1)
}

func TestSuggestions_BareList(t *testing.T) {
	items, shape := SuggestionsWithShape([]byte(`["Acme","Biotech"]`))
	assert.Equal(t, "bare_list", shape)
	assert.Equal(t, []suggest.Item{suggest.General("Acme"), suggest.General("Biotech")}, items)
}

func TestSuggestions_NoMatch(t *testing.T) {
	inputs := []string{``, `null`, `{}`, `"Acme"`, `42`, `{"allSuggestions":"Acme"}`, `{broken`}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var items []suggest.Item
			require.NotPanics(t, func() { items = Suggestions([]byte(in)) })
			assert.NotNil(t, items)
			assert.Empty(t, items)
		})
	}
}
