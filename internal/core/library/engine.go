// Package library implements the "add from library" picker: it searches
// resources scoped to the caller's target categories, merges the per object
// type partitions, flags items already in the collection and keeps sort and
// selection state.
package library

import (
	"context"
	"sort"
	"strings"

	"github.com/go-faster/errors"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// Searcher runs a content search.
type Searcher interface {
	SearchContent(ctx context.Context, req SearchRequest) (SearchResult, error)
}

var searchStatuses = []string{"Live", "Approved"}

// Options configures an Engine.
type Options struct {
	Targets      []TargetCategory
	SearchFields []string // filter codes of the search form
}

// Engine holds the picker state. It is not safe for concurrent use; callers
// drive it from one goroutine.
type Engine struct {
	searcher Searcher
	targets  []TargetCategory
	fields   []string

	defaultFilters FilterSet
	childNodes     map[string]struct{}
	frameworkID    string

	items     []Item
	selected  int
	showAdded bool
	byName    bool
	err       error
}

func NewEngine(s Searcher, opt Options) *Engine {
	return &Engine{
		searcher:       s,
		targets:        opt.Targets,
		fields:         opt.SearchFields,
		defaultFilters: FilterSet{},
		childNodes:     map[string]struct{}{},
		selected:       -1,
		showAdded:      true,
	}
}

// LoadHierarchy derives the default filters, the already-added identifiers and
// the framework from the collection document. Call it again whenever the
// hierarchy changes.
func (e *Engine) LoadHierarchy(doc hierarchy.Document) {
	defaults := FilterSet{}
	for _, code := range e.fields {
		if code == FieldPrimaryCategory {
			continue
		}
		if vals := doc.Values(code); len(vals) > 0 {
			defaults[code] = vals
		}
	}
	defaults[FieldPrimaryCategory] = e.PrimaryCategories()
	e.defaultFilters = defaults

	e.childNodes = make(map[string]struct{})
	for _, id := range hierarchy.ChildNodes(doc) {
		e.childNodes[id] = struct{}{}
	}
	e.frameworkID = hierarchy.FrameworkID(doc)
	e.markAdded()
}

// DefaultFilters returns a copy of the filters derived from the hierarchy.
func (e *Engine) DefaultFilters() FilterSet { return e.defaultFilters.Clone() }

// FrameworkID is the framework resolved from the hierarchy.
func (e *Engine) FrameworkID() string { return e.frameworkID }

// PrimaryCategories returns the unique target category names in order.
func (e *Engine) PrimaryCategories() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range e.targets {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, t.Name)
	}
	return out
}

// objectTypes returns the unique partition keys in order. "Content" is looked
// up as "content".
func (e *Engine) objectTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range e.targets {
		if seen[t.TargetObjectType] {
			continue
		}
		seen[t.TargetObjectType] = true
		key := t.TargetObjectType
		if key == "Content" {
			key = "content"
		}
		out = append(out, key)
	}
	return out
}

// BuildRequest assembles the search request for filters (nil means defaults)
// and query.
func (e *Engine) BuildRequest(filters FilterSet, query string) SearchRequest {
	if filters == nil {
		filters = e.defaultFilters
	}
	eff := FilterSet{}
	for k, v := range filters {
		if len(v) == 0 {
			continue
		}
		eff[k] = append([]string(nil), v...)
	}
	if pc := e.PrimaryCategories(); len(pc) > 0 {
		eff[FieldPrimaryCategory] = pc
	} else {
		delete(eff, FieldPrimaryCategory)
	}
	eff[FieldStatus] = append([]string(nil), searchStatuses...)
	return SearchRequest{
		Query:   query,
		Filters: eff,
		SortBy:  map[string]string{"lastUpdatedOn": "desc"},
	}
}

// Fetch replaces the list with the search results. On failure the previous
// list and selection stay in place and the error is kept in Err.
func (e *Engine) Fetch(ctx context.Context, filters FilterSet, query string) error {
	res, err := e.searcher.SearchContent(ctx, e.BuildRequest(filters, query))
	return e.Apply(res, err)
}

// Apply installs the outcome of a search built with BuildRequest. Callers
// that run the request on another goroutine hand the result back here.
func (e *Engine) Apply(res SearchResult, err error) error {
	if err != nil {
		e.err = errors.Wrap(err, "search content")
		logx.Warnf("library search failed, keeping %d items: %v", len(e.items), err)
		return e.err
	}
	e.err = nil
	e.items = e.merge(res)
	logx.Debugf("library search returned %d items (count=%d)", len(e.items), res.Count)
	if len(e.items) == 0 {
		e.selected = -1
		return nil
	}
	if e.byName {
		e.sortItems()
	}
	e.markAdded()
	e.applySelection()
	return nil
}

// merge flattens the partitions of res in target object type order.
func (e *Engine) merge(res SearchResult) []Item {
	if res.Count == 0 {
		return []Item{}
	}
	out := []Item{}
	for _, key := range e.objectTypes() {
		out = append(out, res.Partitions[key]...)
	}
	return out
}

func (e *Engine) markAdded() {
	for i := range e.items {
		_, ok := e.childNodes[e.items[i].Identifier]
		e.items[i].IsAdded = ok
	}
}

func (e *Engine) applySelection() {
	if len(e.items) == 0 {
		e.selected = -1
		return
	}
	idx := 0
	if !e.showAdded {
		idx = firstNotAdded(e.items)
	}
	if len(e.items) == 1 && e.items[0].IsAdded {
		e.showAdded = true
		idx = 0
	}
	e.selected = idx
}

func firstNotAdded(items []Item) int {
	for i, it := range items {
		if !it.IsAdded {
			return i
		}
	}
	return -1
}

// Sort orders the list by name ascending when byName is set, otherwise by last
// update, newest first, then reapplies the selection policy.
func (e *Engine) Sort(byName bool) {
	e.byName = byName
	e.sortItems()
	e.applySelection()
}

func (e *Engine) sortItems() {
	if e.byName {
		sort.SliceStable(e.items, func(i, j int) bool {
			return strings.ToLower(e.items[i].Name) < strings.ToLower(e.items[j].Name)
		})
		return
	}
	sort.SliceStable(e.items, func(i, j int) bool {
		return e.items[i].LastUpdatedOn.After(e.items[j].LastUpdatedOn.Time)
	})
}

// SetShowAdded toggles whether already added items may be selected first.
func (e *Engine) SetShowAdded(show bool) {
	e.showAdded = show
	e.markAdded()
	e.applySelection()
}

func (e *Engine) ShowAdded() bool { return e.showAdded }

func (e *Engine) SortedByName() bool { return e.byName }

// Items returns the current list.
func (e *Engine) Items() []Item { return e.items }

// Err returns the last search failure, if the list is stale.
func (e *Engine) Err() error { return e.err }

// Select moves the selection to index i; out of range indexes are ignored.
func (e *Engine) Select(i int) bool {
	if i < 0 || i >= len(e.items) {
		return false
	}
	e.selected = i
	return true
}

// SelectedIndex is -1 when nothing is selected.
func (e *Engine) SelectedIndex() int { return e.selected }

// Selected returns the selected item.
func (e *Engine) Selected() (Item, bool) {
	if e.selected < 0 || e.selected >= len(e.items) {
		return Item{}, false
	}
	return e.items[e.selected], true
}

// Add builds the event asking the host to attach the selected item.
func (e *Engine) Add() (events.Event, bool) {
	it, ok := e.Selected()
	if !ok {
		return events.Event{}, false
	}
	return events.Add(it.Identifier, it.ObjectType), true
}

// Back builds the event returning to the collection editor.
func (e *Engine) Back() events.Event { return events.Back() }
