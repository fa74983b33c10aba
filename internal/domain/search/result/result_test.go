package result

import "testing"

func TestEmpty(t *testing.T) {
	r := Empty()
	if !r.IsEmpty() {
		t.Error("Empty().IsEmpty() = false")
	}
	if r.Companies == nil {
		t.Error("Companies is nil, want empty slice")
	}
	for name, list := range map[string][]string{
		"locations":    r.Facets.Locations,
		"countries":    r.Facets.Countries,
		"industries":   r.Facets.Industries,
		"companySizes": r.Facets.CompanySizes,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("facet %s = %v, want empty non-nil list", name, list)
		}
	}
}

func TestIsEmpty_CountOnly(t *testing.T) {
	r := Empty()
	r.TotalCount = 3
	if r.IsEmpty() {
		t.Error("result with a total count reported empty")
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{100, 0, 0},
		{-4, 25, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
