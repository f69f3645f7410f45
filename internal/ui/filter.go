package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

// FilterConfig bundles tuning parameters for filtering and search operations.
type FilterConfig struct {
	MinCoverage float64 // minimal share of the query that must match
	MaxSpread   int     // maximal distance between first and last match index
	MaxResults  int     // upper limit of returned results
}

// filterByCategory returns indices of items of the given primary category.
// An empty category keeps every item.
func filterByCategory(items []library.Item, category string) []int {
	idx := make([]int, 0, len(items))
	for i, it := range items {
		if category == "" || strings.EqualFold(it.PrimaryCategory, category) {
			idx = append(idx, i)
		}
	}
	return idx
}

// filterNotAdded drops items that are already part of the collection.
func filterNotAdded(items []library.Item, idx []int) []int {
	out := idx[:0:0]
	for _, i := range idx {
		if !items[i].IsAdded {
			out = append(out, i)
		}
	}
	return out
}

// filterBySubstring performs a simple substring check against the prepared base
// list and returns matching indices limited by cfg.MaxResults.
func filterBySubstring(q string, base []string, idx []int, cfg FilterConfig) []int {
	sub := make([]int, 0, min(cfg.MaxResults, len(idx)))
	for _, i := range idx {
		if strings.Contains(base[i], q) {
			sub = append(sub, i)
			if len(sub) >= cfg.MaxResults {
				break
			}
		}
	}
	return sub
}

// filterByFuzzy applies fuzzy matching on the subset defined by idx and
// filters results based on coverage and spread thresholds from cfg.
func filterByFuzzy(q string, base []string, idx []int, cfg FilterConfig) []int {
	subset := make([]string, len(idx))
	mapBack := make([]int, len(idx))
	for j, i := range idx {
		subset[j] = base[i]
		mapBack[j] = i
	}
	matches := fuzzy.Find(q, subset)

	pruned := make([]int, 0, len(matches))
	for _, mt := range matches {
		if matchCoverage(q, mt) < cfg.MinCoverage {
			continue
		}
		if matchSpread(mt) > cfg.MaxSpread {
			continue
		}
		pruned = append(pruned, mapBack[mt.Index])
		if len(pruned) >= cfg.MaxResults {
			break
		}
	}
	if len(pruned) == 0 {
		for i := 0; i < len(matches) && i < cfg.MaxResults; i++ {
			pruned = append(pruned, mapBack[matches[i].Index])
		}
	}
	return pruned
}

// matchCoverage returns the ratio of matched characters to the query length.
func matchCoverage(q string, m fuzzy.Match) float64 {
	if len(q) == 0 {
		return 1
	}
	return float64(len(m.MatchedIndexes)) / float64(len(q))
}

// matchSpread returns the distance between the first and last matched index.
func matchSpread(m fuzzy.Match) int {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	return m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0]
}

// searchBase is the lowercased text each item is matched against.
func searchBase(items []library.Item) []string {
	base := make([]string, len(items))
	for i, it := range items {
		base[i] = strings.ToLower(it.Name + " " + it.PrimaryCategory)
	}
	return base
}

// currentCategory is the primary category the list is narrowed to, if any.
func (m Model) currentCategory() string {
	if m.category <= 0 || m.category > len(m.cfg.TargetPrimaryCategories) {
		return ""
	}
	return m.cfg.TargetPrimaryCategories[m.category-1].Name
}

// refreshVisible recomputes the visible rows from the engine list, the
// category narrowing, the show-added toggle and the fuzzy query, then puts
// the cursor on the engine selection.
func (m *Model) refreshVisible() {
	if m.engine == nil {
		m.list.visible = nil
		return
	}
	items := m.engine.Items()
	idx := filterByCategory(items, m.currentCategory())
	if !m.engine.ShowAdded() {
		idx = filterNotAdded(items, idx)
	}
	if q := strings.ToLower(strings.TrimSpace(m.search.query)); q != "" {
		base := searchBase(items)
		if len(q) < 3 {
			idx = filterBySubstring(q, base, idx, m.filterCfg)
		} else {
			idx = filterByFuzzy(q, base, idx, m.filterCfg)
		}
	}
	m.list.visible = idx
	m.syncCursor()
}

// syncCursor moves the cursor to the engine selection when it is visible,
// otherwise selects the first visible row.
func (m *Model) syncCursor() {
	sel := m.engine.SelectedIndex()
	for row, i := range m.list.visible {
		if i == sel {
			m.list.cursor = row
			m.ensureCursorVisible()
			return
		}
	}
	m.list.cursor = 0
	m.list.offset = 0
	if len(m.list.visible) > 0 {
		m.engine.Select(m.list.visible[0])
	}
}
