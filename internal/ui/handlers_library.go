package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ---------- Library List Handlers ----------

func (m Model) handleLibraryKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.search.searching {
		return m.handleFuzzyInputKey(msg)
	}
	if m.query.editing {
		return m.handleQueryInputKey(msg)
	}

	switch msg.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "pgdown", "ctrl+d":
		m.moveCursor(max(1, m.list.viewport/2))
	case "pgup", "ctrl+u":
		m.moveCursor(-max(1, m.list.viewport/2))
	case "g", "home":
		m.moveCursor(-len(m.list.visible))
	case "G", "end":
		m.moveCursor(len(m.list.visible))
	case "s":
		m.engine.Sort(!m.engine.SortedByName())
		m.refreshVisible()
		if m.engine.SortedByName() {
			m.statusMsg = "Sorted by name."
		} else {
			m.statusMsg = "Sorted by last update."
		}
	case "a":
		m.engine.SetShowAdded(!m.engine.ShowAdded())
		m.refreshVisible()
		if m.engine.ShowAdded() {
			m.statusMsg = "Showing added resources."
		} else {
			m.statusMsg = "Hiding added resources."
		}
	case "c":
		m.category = (m.category + 1) % (len(m.cfg.TargetPrimaryCategories) + 1)
		m.refreshVisible()
		if c := m.currentCategory(); c != "" {
			m.statusMsg = "Category: " + c
		} else {
			m.statusMsg = "All categories."
		}
	case "/":
		m.search.searching = true
		m.search.input.SetValue(m.search.query)
		return m, m.search.input.Focus()
	case "f":
		m.query.editing = true
		m.query.input.SetValue(m.query.query)
		return m, m.query.input.Focus()
	case "r":
		return m.runSearch()
	case "t":
		m.state = stateTree
		m.viewport.SetContent(strings.Join(m.treeLines, "\n"))
		m.treeCursor = 0
		m.viewport.GotoTop()
	case "i":
		m.importer.Open(m.cfg.CreateCSV)
		m.imp.note = ""
		m.imp.input.SetValue("")
		m.state = stateImport
		return m, m.imp.input.Focus()
	case "enter":
		ev, ok := m.engine.Add()
		if !ok {
			m.statusMsg = "Nothing selected."
			return m, nil
		}
		m.opt.Sink.Emit(ev)
		m.state = stateQuit
		return m, tea.Quit
	case "b", "esc":
		if m.search.query != "" {
			m.search.query = ""
			m.refreshVisible()
			return m, nil
		}
		m.opt.Sink.Emit(m.engine.Back())
		m.state = stateQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	n := len(m.list.visible)
	if n == 0 {
		return
	}
	m.list.cursor = min(max(0, m.list.cursor+delta), n-1)
	m.engine.Select(m.list.visible[m.list.cursor])
	m.ensureCursorVisible()
}

func (m Model) handleFuzzyInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.searching = false
		m.search.input.Blur()
		return m, nil
	case "enter":
		m.search.searching = false
		m.search.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	m.search.query = m.search.input.Value()
	m.refreshVisible()
	return m, cmd
}

func (m Model) handleQueryInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.query.editing = false
		m.query.input.Blur()
		return m, nil
	case "enter":
		m.query.editing = false
		m.query.input.Blur()
		m.query.query = strings.TrimSpace(m.query.input.Value())
		return m.runSearch()
	}
	var cmd tea.Cmd
	m.query.input, cmd = m.query.input.Update(msg)
	return m, cmd
}

// runSearch sends the server query with the default filters.
func (m Model) runSearch() (Model, tea.Cmd) {
	m.state = stateSearching
	if m.query.query != "" {
		m.statusMsg = fmt.Sprintf("Searching for %q…", m.query.query)
	} else {
		m.statusMsg = "Searching the library…"
	}
	return m, tea.Batch(m.spinner.Tick, m.searchCmd(m.engine.BuildRequest(nil, m.query.query)))
}

// ---------- Tree View Handlers ----------

func (m Model) handleTreeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b", "t":
		m.state = stateLibrary
		return m, nil
	case "j", "down":
		if m.treeCursor < len(m.treeLines)-1 {
			m.treeCursor++
		}
	case "k", "up":
		if m.treeCursor > 0 {
			m.treeCursor--
		}
	case "g", "home":
		m.treeCursor = 0
	case "G", "end":
		m.treeCursor = max(0, len(m.treeLines)-1)
	}
	m.ensureCursorInViewport(m.treeCursor)
	return m, nil
}
