package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
)

func selectedID(t *testing.T, m Model) string {
	t.Helper()
	it, ok := m.engine.Selected()
	require.True(t, ok)
	return it.Identifier
}

func TestLibraryInitialSelection(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	assert.Equal(t, "do_added", selectedID(t, m), "show-added starts on, first row is selected")
	assert.True(t, m.engine.Items()[0].IsAdded)
	assert.Equal(t, 0, m.list.cursor)
}

func TestToggleShowAddedHidesAddedRows(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("a"))

	assert.False(t, m.engine.ShowAdded())
	assert.Equal(t, []int{1, 2}, m.list.visible)
	assert.Equal(t, "do_b", selectedID(t, m))
	assert.Equal(t, 0, m.list.cursor)

	m, _ = m.handleLibraryKey(runes("a"))
	assert.Len(t, m.list.visible, 3)
	assert.Equal(t, "do_added", selectedID(t, m))
}

func TestSortByNameReselects(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("s"))

	require.True(t, m.engine.SortedByName())
	names := []string{}
	for _, it := range m.engine.Items() {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"algebra basics", "Fractions quiz", "Zebra crossing"}, names)
	assert.Equal(t, "do_b", selectedID(t, m))
}

func TestCursorMovesSelection(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("j"))
	assert.Equal(t, "do_b", selectedID(t, m))
	m, _ = m.handleLibraryKey(runes("G"))
	assert.Equal(t, "do_q", selectedID(t, m))
	m, _ = m.handleLibraryKey(runes("j"))
	assert.Equal(t, 2, m.list.cursor, "cursor stops at the last row")
	m, _ = m.handleLibraryKey(runes("g"))
	assert.Equal(t, "do_added", selectedID(t, m))
}

func TestEnterEmitsAddAndQuits(t *testing.T) {
	m, rec := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("G"))
	m, cmd := m.handleLibraryKey(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Equal(t, stateQuit, m.state)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, events.Event{Action: "add", CollectionID: "do_q", ResourceType: "QuestionSet"}, last)
}

func TestBackEmitsBack(t *testing.T) {
	m, rec := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	_, cmd := m.handleLibraryKey(runes("b"))
	require.NotNil(t, cmd)
	last, _ := rec.Last()
	assert.Equal(t, events.Back(), last)
}

func TestFuzzyNarrowingAndClear(t *testing.T) {
	m, rec := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("/"))
	require.True(t, m.search.searching)
	require.True(t, m.typing())

	for _, r := range "frac" {
		m, _ = m.handleLibraryKey(runes(string(r)))
	}
	assert.Equal(t, []int{2}, m.list.visible)
	assert.Equal(t, "do_q", selectedID(t, m))

	m, _ = m.handleLibraryKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.search.searching)
	assert.Equal(t, "frac", m.search.query)

	// first esc clears the filter instead of leaving the picker
	m, cmd := m.handleLibraryKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Len(t, m.list.visible, 3)
	assert.Empty(t, rec.Events())
}

func TestCategoryCycle(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("c"))
	assert.Equal(t, "Explanation Content", m.currentCategory())
	assert.Equal(t, []int{0, 1}, m.list.visible)

	m, _ = m.handleLibraryKey(runes("c"))
	assert.Equal(t, []int{2}, m.list.visible)
	assert.Equal(t, "do_q", selectedID(t, m))

	m, _ = m.handleLibraryKey(runes("c"))
	assert.Equal(t, "", m.currentCategory())
	assert.Len(t, m.list.visible, 3)
}

func TestServerQueryStartsSearch(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	m, _ := libraryModel(be)
	m, _ = m.handleLibraryKey(runes("f"))
	require.True(t, m.query.editing)
	m.query.input.SetValue(" maths ")

	m, cmd := m.handleLibraryKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, stateSearching, m.state)
	assert.Equal(t, "maths", m.query.query)

	msg := m.searchCmd(m.engine.BuildRequest(nil, m.query.query))()
	m, _ = m.handleSearch(msg.(searchMsg))
	require.NotEmpty(t, be.requests)
	assert.Equal(t, "maths", be.requests[len(be.requests)-1].Query)
	assert.Equal(t, stateLibrary, m.state)
}

func TestTreeViewToggle(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("t"))
	require.Equal(t, stateTree, m.state)
	v := m.View()
	assert.Contains(t, v, "Unit 1")
	assert.Contains(t, v, "1 units, 1 first-level")

	m, _ = m.handleTreeKey(runes("j"))
	assert.Equal(t, 0, m.treeCursor, "single line tree")
	m, _ = m.handleTreeKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateLibrary, m.state)
}

func TestLibraryHeaderShowsFramework(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	assert.Contains(t, m.View(), "framework: ekstep_ncert_k-12")
}
