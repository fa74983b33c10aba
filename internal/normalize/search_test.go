package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
)

func testNormalizer() Normalizer {
	return Normalizer{Now: func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }}
}

func TestSearch_NeverFails(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`{}`,
		`[]`,
		`"text"`,
		`{"documents": null, "totalResults": null, "facets": null}`,
		`{"documents": "nope", "totalResults": "many", "facets": []}`,
		`{"documents": [null, 1, "x"]}`,
		`{not json`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var r result.Result
			require.NotPanics(t, func() { r = testNormalizer().Search([]byte(in)) })
			assert.GreaterOrEqual(t, r.TotalCount, 0)
			assert.NotNil(t, r.Companies)
			assert.NotNil(t, r.Facets.CompanySizes)
		})
	}
}

func TestSearch_EmptyObject(t *testing.T) {
	r := testNormalizer().Search([]byte(`{}`))
	assert.Equal(t, result.Empty(), r)
}

func TestSearch_FullResponse(t *testing.T) {
	raw := []byte(`{
		"documents": [
			{"id": "c-1", "name_s": "Acme", "industry_s": "Software", "size_range_s": "51-200",
			 "locality_ss": ["Berlin", "Munich"], "year_founded_d": 2015, "domain_s": "acme.io",
			 "description": "Rockets", "tags": ["ai", "saas"], "current_employee_estimate_l": 120,
			 "revenue": "$10M", "searchType": "semantic"}
		],
		"totalResults": 42,
		"facets": {
			"locality_ss": {"Berlin": 10, "Paris": 4, "Austin": 1},
			"country_s": {"germany": 10, "france": 4},
			"industry_s": {"Software": 30}
		},
		"pagination": {"currentPage": 0, "pageSize": 25, "totalPages": 2, "hasNext": true, "hasPrevious": false},
		"queryInfo": {"executionTime": 17}
	}`)

	r := testNormalizer().Search(raw)
	require.Len(t, r.Companies, 1)
	assert.Equal(t, 42, r.TotalCount)

	c := r.Companies[0]
	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "Software", c.Industry)
	assert.Equal(t, "51-200", c.Size)
	assert.Equal(t, "Berlin", c.Location)
	assert.Equal(t, 2015, c.FoundingYear)
	assert.Equal(t, "https://acme.io", c.Website)
	assert.Equal(t, "Rockets", c.Description)
	assert.Equal(t, []string{"ai", "saas"}, c.Tags)
	assert.Equal(t, "120", c.Employees)
	assert.Equal(t, "$10M", c.Revenue)
	assert.Equal(t, "Active", c.Status)
	assert.Equal(t, mode.Semantic, c.SearchType)

	assert.Equal(t, []string{"Berlin", "Paris", "Austin"}, r.Facets.Locations, "facet order follows the response")
	assert.Equal(t, []string{"germany", "france"}, r.Facets.Countries)
	assert.Equal(t, []string{"Software"}, r.Facets.Industries)
	assert.Empty(t, r.Facets.CompanySizes)

	assert.Equal(t, 2, r.Page.TotalPages)
	assert.True(t, r.Page.HasNext)
	assert.Equal(t, int64(17), r.Page.TookMillis)
}

func TestCompany_FallbackChains(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, c result.Company)
	}{
		{
			name: "all defaults",
			doc:  `{}`,
			check: func(t *testing.T, c result.Company) {
				assert.Equal(t, "doc-3", c.ID)
				assert.Equal(t, DefaultName, c.Name)
				assert.Equal(t, DefaultIndustry, c.Industry)
				assert.Equal(t, DefaultSize, c.Size)
				assert.Equal(t, DefaultLocation, c.Location)
				assert.Equal(t, 2026, c.FoundingYear)
				assert.Equal(t, DefaultWebsite, c.Website)
				assert.Equal(t, "Company in various industries", c.Description)
				assert.Equal(t, []string{}, c.Tags)
				assert.Equal(t, DefaultEmployees, c.Employees)
				assert.Equal(t, DefaultRevenue, c.Revenue)
				assert.Empty(t, c.SearchType)
			},
		},
		{
			name: "second-level keys",
			doc: `{"id": 7, "name": ["Beta"], "industry": ["Retail"], "locality": ["Lyon"],
			       "current_employee_estimate_l": 900, "summary": "Shops"}`,
			check: func(t *testing.T, c result.Company) {
				assert.Equal(t, "7", c.ID)
				assert.Equal(t, "Beta", c.Name)
				assert.Equal(t, "Retail", c.Industry)
				assert.Equal(t, "Lyon", c.Location)
				assert.Equal(t, "900", c.Size)
				assert.Equal(t, "900", c.Employees)
				assert.Equal(t, "Shops", c.Description)
			},
		},
		{
			name: "empty strings fall through",
			doc:  `{"name_s": "", "name": ["Gamma"], "industry_s": "Energy", "description": "", "size_range_s": "11-50"}`,
			check: func(t *testing.T, c result.Company) {
				assert.Equal(t, "Gamma", c.Name)
				assert.Equal(t, "Company in Energy", c.Description)
				assert.Equal(t, "11-50", c.Size)
				assert.Equal(t, "11-50", c.Employees)
			},
		},
		{
			name: "invalid search type dropped",
			doc:  `{"search_type_s": "vector"}`,
			check: func(t *testing.T, c result.Company) {
				assert.Empty(t, c.SearchType)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`{"documents": [{}, {}, {}, ` + tt.doc + `]}`)
			r := testNormalizer().Search(raw)
			require.Len(t, r.Companies, 4)
			tt.check(t, r.Companies[3])
		})
	}
}

func TestSearch_DuplicateFacetKeysCollapse(t *testing.T) {
	r := testNormalizer().Search([]byte(`{"facets": {"industry_s": {"A": 1, "B": 2, "A": 3}}}`))
	assert.Equal(t, []string{"A", "B"}, r.Facets.Industries)
}
