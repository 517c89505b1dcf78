// Package depset holds dependency identifier sets and the precision/recall
// metrics computed between a golden set and a generated set.
package depset

import (
	"encoding/json"
	"sort"
	"strings"
)

// Set is an unordered collection of dependency identifiers. Membership is
// an exact, case-sensitive string match.
type Set map[string]struct{}

func New(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s Set) Add(v string) {
	s[v] = struct{}{}
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// List returns the identifiers in sorted order.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the identifiers present in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for v := range s {
		if o.Has(v) {
			out.Add(v)
		}
	}
	return out
}

// Minus returns the identifiers of s that are absent from o.
func (s Set) Minus(o Set) Set {
	out := make(Set)
	for v := range s {
		if !o.Has(v) {
			out.Add(v)
		}
	}
	return out
}

func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	return strings.Join(s.List(), ", ")
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = New(items...)
	return nil
}

// Comparison is the outcome of comparing a generated set against a golden set.
type Comparison struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Missing   Set     `json:"missing"`
	Extra     Set     `json:"extra"`
}

// Compare computes precision, recall and F1 of generated against golden.
//
// Degenerate inputs resolve to fixed values, checked in this order:
//   - both empty: 1, 1, 1
//   - generated empty: 0, 0, 0 with every golden identifier missing
//   - golden empty: precision 0, recall 1, F1 0 with every generated
//     identifier extra
func Compare(golden, generated Set) Comparison {
	switch {
	case golden.Len() == 0 && generated.Len() == 0:
		return Comparison{Precision: 1, Recall: 1, F1: 1, Missing: New(), Extra: New()}
	case generated.Len() == 0:
		return Comparison{Missing: golden.Minus(New()), Extra: New()}
	case golden.Len() == 0:
		return Comparison{Recall: 1, Missing: New(), Extra: generated.Minus(New())}
	}

	common := float64(golden.Intersect(generated).Len())
	c := Comparison{
		Precision: common / float64(generated.Len()),
		Recall:    common / float64(golden.Len()),
		Missing:   golden.Minus(generated),
		Extra:     generated.Minus(golden),
	}
	if c.Precision+c.Recall > 0 {
		c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
	}
	return c
}
