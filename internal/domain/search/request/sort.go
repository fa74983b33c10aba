package request

// Sort keys accepted from the presentation layer.
const (
	SortFoundingYear = "foundingYear"
	SortIndustry     = "industry"
	SortSize         = "size"
	SortLocation     = "location"
)

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder maps anything but "desc" to ascending.
func ParseOrder(s string) Order {
	if Order(s) == Desc {
		return Desc
	}
	return Asc
}

var sortFields = map[string]string{
	SortFoundingYear: "year_founded_d",
	SortIndustry:     "industry_s",
	SortSize:         "current_employee_estimate_l",
	SortLocation:     "locality_ss",
}

// SortField maps a presentation sort key to the backend field.
// Unknown keys fall back to the founding year.
func SortField(sortBy string) string {
	if f, ok := sortFields[sortBy]; ok {
		return f
	}
	return sortFields[SortFoundingYear]
}

// Sort is the resolved sort clause of a request.
type Sort struct {
	Field string
	Order Order
}

// Direction renders the sort clause the way the backend expects it: "<field> <order>".
func (s Sort) Direction() string {
	return s.Field + " " + string(s.Order)
}
