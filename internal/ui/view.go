package ui

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	if m.state == stateQuit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Collection Library"))
	if m.cfg.CollectionID != "" {
		b.WriteString("  " + subtitleStyle.Render(m.cfg.CollectionID))
	}
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(10, m.width-2))))
	b.WriteString("\n\n")

	switch m.state {
	case stateWelcome:
		b.WriteString(m.viewWelcome())
	case stateTokenPrompt:
		b.WriteString(m.viewTokenPrompt())
	case stateLoading, stateSearching:
		b.WriteString(m.spinner.View() + " " + m.statusMsg + "\n\n")
		b.WriteString(renderFooter(m.metricsLine(), "q quit"))
	case stateLibrary:
		b.WriteString(m.viewLibrary())
	case stateTree:
		b.WriteString(m.viewTree())
	case stateImport, stateImporting:
		b.WriteString(m.viewImport())
	case stateError:
		b.WriteString(errorStyle.Render(m.errMsg) + "\n\n")
		b.WriteString(renderFooter("The library cannot be used without the collection hierarchy.", "q quit"))
	}
	return b.String()
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	intro := "Pick resources from the library to add to your collection,\nor import the collection hierarchy from a CSV file."
	b.WriteString(welcomeBoxStyle.Render(intro) + "\n")
	if m.cfg.Token != "" {
		b.WriteString(okStyle.Render("✓ Token present") + "\n")
	} else {
		b.WriteString(warnStyle.Render("! No token found (config file or COLLECTIONCTL_TOKEN)") + "\n")
	}
	if m.opt.ConfigPath != "" {
		b.WriteString(subtleStyle.Render("Config: "+m.opt.ConfigPath) + "\n")
	}
	b.WriteString(subtleStyle.Render(m.statusMsg) + "\n\n")
	b.WriteString(helpStyle.Render("Enter continue  |  q quit"))
	return b.String()
}

func (m Model) viewTokenPrompt() string {
	var b strings.Builder
	b.WriteString("Enter your API token:\n\n")
	b.WriteString(m.ti.View() + "\n\n")
	if m.statusMsg != "" {
		b.WriteString(subtleStyle.Render(m.statusMsg) + "\n\n")
	}
	b.WriteString(helpStyle.Render("Enter confirm  |  Esc back"))
	return b.String()
}

func (m Model) viewTree() string {
	var b strings.Builder
	total, addable := countUnits(m.nodes)
	b.WriteString(listHeaderStyle.Render(fmt.Sprintf("Hierarchy – %d units, %d first-level, %d open to any child", total, len(m.nodes), addable)) + "\n")
	if len(m.treeLines) == 0 {
		b.WriteString(warnStyle.Render("The collection has no units yet.") + "\n\n")
	} else {
		lines := make([]string, len(m.treeLines))
		for i, l := range m.treeLines {
			if i == m.treeCursor {
				l = cursorBarStyle.Render(" ") + cursorLineStyle.Render(l)
			} else {
				l = " " + l
			}
			lines[i] = l
		}
		vp := m.viewport
		vp.SetContent(strings.Join(lines, "\n"))
		b.WriteString(vp.View() + "\n\n")
	}
	b.WriteString(renderFooter("[+] units that accept any child type", "j/k move  |  t/Esc back  |  q quit"))
	return b.String()
}

// metricsLine summarises the HTTP traffic of the session.
func (m Model) metricsLine() string {
	if m.services.Metrics == nil {
		return ""
	}
	line := m.services.Metrics.Snapshot().String()
	if m.retries.Total > 0 {
		line += fmt.Sprintf("  |  last load retried %d×", m.retries.Total)
	}
	return line
}
