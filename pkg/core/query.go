package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Matches reports whether doc satisfies q's filter and id pattern.
// Ordering is applied separately via SortDocuments.
func (q Query) Matches(doc Document) bool {
	if q.Pattern != "" {
		ok, err := doublestar.Match(q.Pattern, doc.ID)
		if err != nil || !ok {
			return false
		}
	}
	for key, want := range q.Filter {
		got, ok := doc.Fields[key]
		if !ok {
			return false
		}
		if !fieldEqual(got, want) {
			return false
		}
	}
	return true
}

func fieldEqual(a, b any) bool {
	if a == b {
		return true
	}
	// YAML/JSON round-trips change concrete types (int vs float64, time.Time vs
	// RFC3339 string), so fall back to a string rendering.
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// SortDocuments orders docs by the field named in q.OrderBy, in place.
// Timestamps serialized as RFC3339 strings sort correctly because the format
// is lexicographic; numbers compare numerically when both sides are numeric.
func SortDocuments(docs []Document, q Query) {
	if q.OrderBy == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Fields[q.OrderBy], docs[j].Fields[q.OrderBy]
		if q.Desc {
			// Swap the operands rather than negating, so equal keys stay in
			// their original order under the stable sort.
			return fieldLess(b, a)
		}
		return fieldLess(a, b)
	})
}

func fieldLess(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	at, aok := toTime(a)
	bt, bok := toTime(b)
	if aok && bok {
		return at.Before(bt)
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
