package filter

import (
	"strings"

	"github.com/epikoding/dictionary/internal/model"
)

// AllCategories selects entries regardless of category. No trimmed,
// non-blank category can equal it.
const AllCategories = ""

// DisplayCounts are the page sizes a user can pick from.
var DisplayCounts = []int{10, 25, 50, 100}

const DefaultDisplayCount = 25

type Query struct {
	Text     string
	Category string
	Count    int
}

type Result struct {
	Entries []model.Entry
	// Matched counts every filtered entry, including those cut by Count.
	Matched int
	Total   int
}

// NormalizeCount maps an unknown display count to the default.
func NormalizeCount(n int) int {
	for _, c := range DisplayCounts {
		if c == n {
			return n
		}
	}
	return DefaultDisplayCount
}

// Apply filters entries by category and then by a case-insensitive substring
// of word, meaning, memo and category. Input order is preserved.
func Apply(entries []model.Entry, q Query) Result {
	category := strings.TrimSpace(q.Category)
	key := strings.ToLower(strings.TrimSpace(q.Text))

	matched := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if category != AllCategories && strings.TrimSpace(e.CategoryName()) != category {
			continue
		}
		if key != "" && !strings.Contains(haystack(e), key) {
			continue
		}
		matched = append(matched, e)
	}

	result := Result{Matched: len(matched), Total: len(entries)}
	if limit := NormalizeCount(q.Count); len(matched) > limit {
		matched = matched[:limit]
	}
	result.Entries = matched
	return result
}

func haystack(e model.Entry) string {
	return strings.ToLower(strings.Join([]string{e.Word, e.Meaning, e.MemoText(), e.CategoryName()}, " "))
}
