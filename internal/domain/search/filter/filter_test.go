package filter

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/dirsearch/internal/domain"
)

func TestNewTerms_Valid(t *testing.T) {
	c, err := NewTerms(KindIndustry, "Software")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Key() != "industry" {
		t.Errorf("Key() = %q", c.Key())
	}
	if c.IsRange() {
		t.Error("IsRange() = true")
	}
	if got := c.Terms(); len(got) != 1 || got[0] != "Software" {
		t.Errorf("Terms() = %v", got)
	}
}

func TestNewTerms_Empty(t *testing.T) {
	if _, err := NewTerms(KindTags); err == nil {
		t.Fatal("expected error for empty term list")
	}
}

func TestNewTerms_RangeKindRejected(t *testing.T) {
	if _, err := NewTerms(KindFoundingYear, "2015"); err == nil {
		t.Fatal("expected error for founding-year kind")
	}
}

func TestNewTerms_CopiesInput(t *testing.T) {
	in := []string{"a", "b"}
	c, _ := NewTerms(KindTags, in...)
	in[0] = "mutated"
	if c.Terms()[0] != "a" {
		t.Error("constraint shares backing array with caller")
	}
}

func TestKindKeys(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindIndustry, "industry"},
		{KindLocality, "locality_ss"},
		{KindCompanySize, "company_size"},
		{KindTags, "tags"},
		{KindFoundingYear, "year_founded_d"},
		{Kind(99), ""},
	}
	for _, tt := range tests {
		if got := tt.kind.Key(); got != tt.want {
			t.Errorf("Kind(%d).Key() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestNewYearRange(t *testing.T) {
	c := NewYearRange(YearRange{From: 2015, To: 2026})
	if !c.IsRange() {
		t.Fatal("IsRange() = false")
	}
	if c.Years().From != 2015 || c.Years().To != 2026 {
		t.Errorf("Years() = %+v", *c.Years())
	}
	if c.Terms() != nil {
		t.Errorf("Terms() = %v, want nil", c.Terms())
	}
}

// --- State ---

func TestState_EmptyIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty().IsEmpty() = false")
	}
	if Empty().WithTags([]string{"ai"}).IsEmpty() {
		t.Error("state with a tag reported empty")
	}
	if !Empty().WithIndustry("Retail").WithTags([]string{"ai"}).Clear().IsEmpty() {
		t.Error("Clear() left criteria behind")
	}
}

func TestState_UpdatesDoNotMutateReceiver(t *testing.T) {
	base := Empty().WithTags([]string{"ai"})
	next := base.AddTag("saas").WithIndustry("Software")

	if len(base.Tags) != 1 || base.Industry != "" {
		t.Errorf("receiver mutated: %+v", base)
	}
	if len(next.Tags) != 2 || next.Industry != "Software" {
		t.Errorf("next = %+v", next)
	}
}

func TestState_TagSetSemantics(t *testing.T) {
	s := Empty().AddTag("ai").AddTag("ai").AddTag("")
	if len(s.Tags) != 1 {
		t.Fatalf("Tags = %v, want [ai]", s.Tags)
	}
	s = s.RemoveTag("ai")
	if len(s.Tags) != 0 {
		t.Errorf("Tags after remove = %v", s.Tags)
	}
}

func TestState_WithFoundingYear(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"numeric", "2015", "2015", false},
		{"trimmed", " 1999 ", "1999", false},
		{"cleared", "", "", false},
		{"letters", "abc", "", true},
		{"decimal", "20.5", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Empty().WithFoundingYear(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidFoundingYear) {
					t.Fatalf("err = %v, want ErrInvalidFoundingYear", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.FoundingYear != tt.want {
				t.Errorf("FoundingYear = %q, want %q", s.FoundingYear, tt.want)
			}
		})
	}
}

func TestState_Set(t *testing.T) {
	s, err := Empty().Set(FieldLocation, "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Location != "Berlin" {
		t.Errorf("Location = %q", s.Location)
	}

	if _, err := s.Set("revenue", "1M"); !errors.Is(err, domain.ErrUnknownFilter) {
		t.Errorf("err = %v, want ErrUnknownFilter", err)
	}
}

func TestState_Navigate(t *testing.T) {
	base := Empty().WithSearchTerm("acme").WithIndustry("Retail")

	tests := []struct {
		name string
		item string
		want State
	}{
		{"overview clears", NavOverview, Empty()},
		{"industry", "industry:Software", base.WithIndustry("Software")},
		{"location", "location:Paris", base.WithLocation("Paris")},
		{"unknown", "about", base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Navigate(tt.item); !got.Equal(tt.want) {
				t.Errorf("Navigate(%q) = %+v, want %+v", tt.item, got, tt.want)
			}
		})
	}
}

func TestState_EqualIgnoresTagOrder(t *testing.T) {
	a := Empty().WithTags([]string{"x", "y"})
	b := Empty().WithTags([]string{"y", "x"})
	if !a.Equal(b) {
		t.Error("Equal() = false for reordered tags")
	}
	if a.Equal(b.AddTag("z")) {
		t.Error("Equal() = true for different tag sets")
	}
}
