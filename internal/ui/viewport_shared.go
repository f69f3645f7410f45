package ui

// ensureCursorInViewport adjusts the viewport Y offset so that the given
// absolute cursorLine is within the visible window with a scroll margin.
func (m *Model) ensureCursorInViewport(cursorLine int) {
	topLine := m.viewport.YOffset
	bottomLine := topLine + m.viewport.Height - 1

	scrollMargin := 3
	if m.viewport.Height < 8 {
		scrollMargin = 1
	}

	if cursorLine < topLine+scrollMargin {
		m.viewport.SetYOffset(max(0, cursorLine-scrollMargin))
		return
	}
	if cursorLine > bottomLine-scrollMargin {
		m.viewport.SetYOffset(max(0, cursorLine-m.viewport.Height+scrollMargin+1))
	}
}

// ensureCursorVisible keeps the list cursor inside the rendered rows.
func (m *Model) ensureCursorVisible() {
	vp := max(1, m.list.viewport)
	if m.list.cursor < m.list.offset {
		m.list.offset = m.list.cursor
	}
	if m.list.cursor >= m.list.offset+vp {
		m.list.offset = m.list.cursor - vp + 1
	}
	if m.list.offset < 0 {
		m.list.offset = 0
	}
}
