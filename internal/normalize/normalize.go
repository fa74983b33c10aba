// Package normalize converts backend JSON of any shape into the fixed result and
// suggestion models. Every function here is total: malformed or unexpected input
// degrades to defaults and never produces an error.
package normalize

import (
	"time"

	"github.com/tidwall/gjson"
)

// Normalizer carries the clock used for founding-year defaults.
type Normalizer struct {
	Now func() time.Time
}

// New returns a Normalizer on the wall clock.
func New() Normalizer {
	return Normalizer{Now: time.Now}
}

func (n Normalizer) currentYear() int {
	if n.Now == nil {
		return time.Now().Year()
	}
	return n.Now().Year()
}

// truthy follows the loose truthiness the backend contract was written against:
// null, false, "", and 0 count as absent.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	default:
		return r.Exists()
	}
}

// present reports a value that exists and is not null.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// firstString returns the first truthy candidate as a string.
func firstString(candidates ...gjson.Result) (string, bool) {
	for _, c := range candidates {
		if truthy(c) {
			return c.String(), true
		}
	}
	return "", false
}

// head returns element 0 of an array value.
func head(r gjson.Result) gjson.Result {
	if !r.IsArray() {
		return gjson.Result{}
	}
	return r.Get("0")
}

// keys returns the distinct keys of an object in document order.
func keys(r gjson.Result) []string {
	out := []string{}
	if !r.IsObject() {
		return out
	}
	seen := make(map[string]struct{})
	r.ForEach(func(k, _ gjson.Result) bool {
		if _, dup := seen[k.String()]; !dup {
			seen[k.String()] = struct{}{}
			out = append(out, k.String())
		}
		return true
	})
	return out
}
