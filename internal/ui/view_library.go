package ui

import (
	"fmt"
	"strings"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

func (m Model) viewLibrary() string {
	var b strings.Builder
	items := m.engine.Items()

	order := "last updated"
	if m.engine.SortedByName() {
		order = "name"
	}
	added := "shown"
	if !m.engine.ShowAdded() {
		added = "hidden"
	}
	category := m.currentCategory()
	if category == "" {
		category = "all"
	}
	b.WriteString(listHeaderStyle.Render(fmt.Sprintf("Library – %d of %d", len(m.list.visible), len(items))))
	b.WriteString("\n")
	settings := fmt.Sprintf("sort: %s  |  added: %s  |  category: %s", order, added, category)
	if fw := m.engine.FrameworkID(); fw != "" {
		settings += "  |  framework: " + fw
	}
	b.WriteString(subtleStyle.Render(settings) + "\n")

	if m.search.searching {
		b.WriteString("Filter: " + m.search.input.View() + "\n")
	} else if m.search.query != "" {
		b.WriteString(subtleStyle.Render("Filter: "+m.search.query) + "\n")
	}
	if m.query.editing {
		b.WriteString("Query: " + m.query.input.View() + "\n")
	} else if m.query.query != "" {
		b.WriteString(subtleStyle.Render("Query: "+m.query.query) + "\n")
	}
	b.WriteString("\n")

	if len(m.list.visible) == 0 {
		b.WriteString(warnStyle.Render("No resources found.") + "\n")
	} else {
		start := m.list.offset
		end := min(start+max(1, m.list.viewport), len(m.list.visible))
		for row := start; row < end; row++ {
			b.WriteString(m.renderItem(items[m.list.visible[row]], row == m.list.cursor) + "\n")
		}
	}

	if sel, ok := m.engine.Selected(); ok {
		b.WriteString("\n" + m.renderDetail(sel) + "\n")
	}
	b.WriteString("\n")
	status := m.statusMsg
	if mt := m.metricsLine(); mt != "" {
		status += "\n" + mt
	}
	b.WriteString(renderFooter(status,
		"j/k move  |  Enter add  |  / filter  |  f query  |  c category  |  s sort  |  a added",
		"t tree  |  i import csv  |  r reload  |  b back  |  q quit"))
	return b.String()
}

func (m Model) renderItem(it library.Item, cursor bool) string {
	mark := " "
	if it.IsAdded {
		mark = addedSign
	}
	name := it.Name
	if name == "" {
		name = it.Identifier
	}
	text := fmt.Sprintf("%s %s %s", symbolFor(it.ObjectType), name, subtleStyle.Render(it.PrimaryCategory))
	if it.IsAdded {
		text = addedStyle.Render(text)
	}
	if cursor {
		return cursorBarStyle.Render(" ") + mark + " " + cursorLineStyle.Render(text)
	}
	return " " + mark + " " + text
}

func (m Model) renderDetail(it library.Item) string {
	var parts []string
	parts = append(parts, focusStyle.Render(it.Identifier))
	if it.MimeType != "" {
		parts = append(parts, it.MimeType)
	}
	if !it.LastUpdatedOn.IsZero() {
		parts = append(parts, "updated "+it.LastUpdatedOn.Format("2006-01-02"))
	}
	if it.IsAdded {
		parts = append(parts, okStyle.Render("already in collection"))
	}
	return strings.Join(parts, "  ·  ")
}
