package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// ---------- CSV Import Handlers ----------

func (m Model) handleImportKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+d" {
		m.imp.note = subtleStyle.Render("Downloading sample…")
		return m, m.sampleCmd()
	}
	if key == "esc" {
		return m.closeImport()
	}

	f := m.importer.Flags()
	switch {
	case f.FileName == "":
		if key == "enter" {
			file, err := readCSVFile(strings.TrimSpace(m.imp.input.Value()))
			if err != nil {
				m.imp.note = errorStyle.Render(err.Error())
				return m, nil
			}
			if err := m.importer.SelectFile(file); err != nil {
				m.imp.note = errorStyle.Render(err.Error())
				return m, nil
			}
			m.imp.note = ""
			m.imp.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.imp.input, cmd = m.imp.input.Update(msg)
		return m, cmd

	case f.UploadEnabled:
		switch key {
		case "enter", "v":
			m.state = stateImporting
			return m, tea.Batch(m.spinner.Tick, m.importCmd())
		case "r":
			return m.reupload()
		}

	case f.Error, f.Success:
		switch key {
		case "r":
			return m.reupload()
		case "enter":
			if f.Success {
				return m.closeImport()
			}
		}
	}
	return m, nil
}

func (m Model) reupload() (Model, tea.Cmd) {
	if err := m.importer.Reset(); err != nil {
		m.imp.note = errorStyle.Render(err.Error())
		return m, nil
	}
	m.imp.note = ""
	m.imp.input.SetValue("")
	return m, m.imp.input.Focus()
}

func (m Model) closeImport() (Model, tea.Cmd) {
	if err := m.importer.Close(); err != nil {
		m.imp.note = errorStyle.Render(err.Error())
		return m, nil
	}
	m.imp.input.Blur()
	m.state = stateLibrary
	return m, nil
}

// handleImportDone returns to the dialog. A successful import refreshes the
// hierarchy in the background so added markers and the tree stay current.
func (m Model) handleImportDone(msg importMsg) (Model, tea.Cmd) {
	m.state = stateImport
	if msg.err != nil {
		logx.Warnf("csv import: %v", msg.err)
		return m, nil
	}
	m.imp.note = okStyle.Render(m.cfg.Label(config.LabelImportConfirmed))
	if c, ok := m.services.Hierarchy.(*hierarchy.CachedSource); ok {
		c.Invalidate(m.cfg.CollectionID)
	}
	m.refreshing = true
	return m, m.loadHierarchyCmd()
}
