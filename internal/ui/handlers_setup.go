package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// ---------- Setup Screen Handlers ----------

func (m Model) handleWelcomeKey(key string) (Model, tea.Cmd) {
	switch key {
	case "enter":
		if m.cfg.Token == "" {
			m.state = stateTokenPrompt
			m.statusMsg = "Please enter your API token."
			return m, nil
		}
		return m.startLoading()
	}
	return m, nil
}

func (m Model) handleTokenPromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.state = stateWelcome
		m.statusMsg = "Back to the welcome screen."
		return m, nil
	case "enter":
		m.cfg.Token = strings.TrimSpace(m.ti.Value())
		if m.cfg.Token == "" {
			m.statusMsg = "Token is empty."
			return m, nil
		}
		// Register newly entered token for log redaction
		logx.RegisterSecret(m.cfg.Token)
		if m.opt.ConfigPath != "" {
			if err := config.Save(m.opt.ConfigPath, m.cfg); err != nil {
				logx.Warnf("save config: %v", err)
			}
		}
		return m.startLoading()
	default:
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
}

// startLoading connects the services and fetches the hierarchy.
func (m Model) startLoading() (Model, tea.Cmd) {
	if m.cfg.CollectionID == "" {
		m.errMsg = "No collection_id configured."
		m.state = stateError
		return m, nil
	}
	m.connect()
	m.state = stateLoading
	m.statusMsg = "Loading the collection hierarchy…"
	return m, tea.Batch(m.spinner.Tick, m.loadHierarchyCmd())
}
