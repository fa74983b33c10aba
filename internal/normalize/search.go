package normalize

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/dirsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/dirsearch/internal/domain/search/result"
)

// Company attribute defaults used when no fallback key is present.
const (
	DefaultName        = "Company"
	DefaultIndustry    = "Technology"
	DefaultSize        = "1-50"
	DefaultLocation    = "Remote"
	DefaultWebsite     = "#"
	DefaultEmployees   = "50"
	DefaultRevenue     = "Not disclosed"
	DefaultStatus      = "Active"
	defaultIndustryRef = "various industries"
)

// Search maps a comprehensive-search response body to a Result.
func (n Normalizer) Search(raw []byte) result.Result {
	out := result.Empty()
	if !gjson.ValidBytes(raw) {
		return out
	}
	data := gjson.ParseBytes(raw)
	if !data.IsObject() {
		return out
	}

	if docs := data.Get("documents"); docs.IsArray() {
		for i, doc := range docs.Array() {
			out.Companies = append(out.Companies, n.Company(doc, i))
		}
	}

	if total := data.Get("totalResults"); truthy(total) && total.Int() > 0 {
		out.TotalCount = int(total.Int())
	}

	facets := data.Get("facets")
	out.Facets = result.Facets{
		Locations:    keys(facets.Get("locality_ss")),
		Countries:    keys(facets.Get("country_s")),
		Industries:   keys(facets.Get("industry_s")),
		CompanySizes: []string{},
	}

	if p := data.Get("pagination"); p.IsObject() {
		out.Page = result.Page{
			Current:     int(p.Get("currentPage").Int()),
			Size:        int(p.Get("pageSize").Int()),
			TotalPages:  int(p.Get("totalPages").Int()),
			HasNext:     p.Get("hasNext").Bool(),
			HasPrevious: p.Get("hasPrevious").Bool(),
		}
	}
	out.Page.TookMillis = data.Get("queryInfo.executionTime").Int()

	return out
}

// Company maps one raw document. index seeds the identifier when the document has none.
func (n Normalizer) Company(doc gjson.Result, index int) result.Company {
	c := result.Company{
		Revenue: DefaultRevenue,
		Status:  DefaultStatus,
		Tags:    []string{},
	}

	var ok bool
	if c.ID, ok = firstString(doc.Get("id")); !ok {
		c.ID = "doc-" + strconv.Itoa(index)
	}
	if c.Name, ok = firstString(doc.Get("name_s"), head(doc.Get("name"))); !ok {
		c.Name = DefaultName
	}
	if c.Industry, ok = firstString(doc.Get("industry_s"), head(doc.Get("industry"))); !ok {
		c.Industry = DefaultIndustry
	}
	if c.Location, ok = firstString(head(doc.Get("locality_ss")), head(doc.Get("locality"))); !ok {
		c.Location = DefaultLocation
	}

	sizeRange := doc.Get("size_range_s")
	estimate := doc.Get("current_employee_estimate_l")
	c.Size = DefaultSize
	switch {
	case truthy(sizeRange):
		c.Size = sizeRange.String()
	case present(estimate):
		c.Size = estimate.String()
	}
	c.Employees = DefaultEmployees
	switch {
	case present(estimate):
		c.Employees = estimate.String()
	case truthy(sizeRange):
		c.Employees = sizeRange.String()
	}

	c.FoundingYear = n.currentYear()
	if y := doc.Get("year_founded_d"); truthy(y) && y.Int() != 0 {
		c.FoundingYear = int(y.Int())
	}

	c.Website = DefaultWebsite
	if d := doc.Get("domain_s"); truthy(d) {
		c.Website = "https://" + d.String()
	}

	if c.Description, ok = firstString(doc.Get("description"), doc.Get("summary")); !ok {
		ref, found := firstString(doc.Get("industry_s"))
		if !found {
			ref = defaultIndustryRef
		}
		c.Description = "Company in " + ref
	}

	if tags := doc.Get("tags"); tags.IsArray() {
		for _, t := range tags.Array() {
			if present(t) {
				c.Tags = append(c.Tags, t.String())
			}
		}
	}

	if rev, found := firstString(doc.Get("revenue")); found {
		c.Revenue = rev
	}

	if st, found := firstString(doc.Get("searchType"), doc.Get("search_type_s")); found {
		if m := mode.Mode(st); m.IsValid() {
			c.SearchType = m
		}
	}

	return c
}
