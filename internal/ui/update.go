package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		key := msg.String()

		// global shortcuts; q only when no text input has focus
		if key == "ctrl+c" || (key == "q" && !m.typing()) {
			m.state = stateQuit
			return m, tea.Quit
		}

		switch m.state {
		case stateWelcome:
			return m.handleWelcomeKey(key)
		case stateTokenPrompt:
			return m.handleTokenPromptKey(msg)
		case stateLibrary:
			return m.handleLibraryKey(msg)
		case stateTree:
			return m.handleTreeKey(msg)
		case stateImport:
			return m.handleImportKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// reserve for title, divider, filter line and footer
		const chrome = 12
		m.list.viewport = max(3, m.height-chrome)
		m.viewport.Width = max(20, m.width-2)
		m.viewport.Height = max(3, m.height-chrome+2)
		m.ensureCursorVisible()

	case hierarchyMsg:
		return m.handleHierarchy(msg)

	case searchMsg:
		return m.handleSearch(msg)

	case importMsg:
		return m.handleImportDone(msg)

	case sampleMsg:
		if msg.err != nil {
			m.imp.note = errorStyle.Render("Sample download failed: " + msg.err.Error())
		} else {
			m.imp.note = okStyle.Render(m.cfg.Label(config.LabelSampleDownloaded) + ": " + msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// busy reports whether a spinner should run.
func (m Model) busy() bool {
	return m.state == stateLoading || m.state == stateSearching || m.state == stateImporting
}

// typing reports whether keys go to a text input.
func (m Model) typing() bool {
	switch m.state {
	case stateTokenPrompt:
		return true
	case stateLibrary:
		return m.search.searching || m.query.editing
	case stateImport:
		return m.importer == nil || m.importer.Flags().FileName == ""
	}
	return false
}

func (m Model) handleHierarchy(msg hierarchyMsg) (Model, tea.Cmd) {
	refresh := m.refreshing
	m.refreshing = false
	m.retries = msg.retries
	if msg.err != nil {
		logx.Errorf("fetch hierarchy %s: %v", m.cfg.CollectionID, msg.err)
		if refresh {
			m.statusMsg = "Refreshing the hierarchy failed: " + msg.err.Error()
			return m, nil
		}
		// without the hierarchy the picker cannot tell what is added
		m.errMsg = m.cfg.Label(config.LabelHierarchyFailed)
		if d := editor.Detail(msg.err); d != "" {
			m.errMsg += ": " + d
		}
		m.state = stateError
		return m, nil
	}

	m.engine.LoadHierarchy(msg.doc)
	m.nodes = hierarchy.BuildTree(msg.doc, m.cfg.CollectionID, m.cfg.Hierarchy)
	m.treeLines = generateTreeLines(m.nodes)
	if refresh {
		// re-mark added items against the new hierarchy
		m.engine.SetShowAdded(m.engine.ShowAdded())
		m.refreshVisible()
		m.statusMsg = "Hierarchy refreshed."
		return m, nil
	}
	m.state = stateSearching
	m.statusMsg = "Searching the library…"
	return m, tea.Batch(m.spinner.Tick, m.searchCmd(m.engine.BuildRequest(nil, m.query.query)))
}

func (m Model) handleSearch(msg searchMsg) (Model, tea.Cmd) {
	m.state = stateLibrary
	if err := m.engine.Apply(msg.res, msg.err); err != nil {
		m.statusMsg = "Search failed, showing previous results: " + err.Error()
		return m, nil
	}
	m.refreshVisible()
	m.statusMsg = fmt.Sprintf("%d resources found.", len(m.engine.Items()))
	return m, nil
}
