package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

// NewModel builds the picker in its welcome state.
func NewModel(opt Options) Model {
	m := Model{
		state: stateWelcome,
		opt:   opt,
		cfg:   opt.Config,
	}

	if m.cfg.Token == "" {
		m.statusMsg = "No API token configured. Press Enter to enter one."
	} else {
		m.statusMsg = "Token found. Enter to open the library, q to quit."
	}

	// textinput
	ti := textinput.New()
	ti.Placeholder = "API token"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 2048
	m.ti = ti

	// fuzzy narrowing
	si := textinput.New()
	si.Placeholder = "Fuzzy search…"
	si.CharLimit = 200
	si.Width = 40
	m.search.input = si
	m.filterCfg = FilterConfig{
		MinCoverage: 0.6,
		MaxSpread:   40,
		MaxResults:  200,
	}

	// server query
	qi := textinput.New()
	qi.Placeholder = "Search the library…"
	qi.CharLimit = 200
	qi.Width = 40
	m.query.input = qi

	// csv path
	pi := textinput.New()
	pi.Placeholder = "path/to/hierarchy.csv"
	pi.CharLimit = 1024
	pi.Width = 50
	m.imp.input = pi

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = subtleStyle
	m.spinner = sp

	// viewport for the hierarchy tree
	m.viewport = viewport.New(80, 20)
	m.list.viewport = 15

	return m
}

func (m Model) Init() tea.Cmd { return nil }

// connect builds the services, the engine and the import machine for the
// current configuration.
func (m *Model) connect() {
	if m.opt.Connect != nil {
		m.services = m.opt.Connect(m.cfg)
	}
	m.engine = library.NewEngine(m.services.Search, library.Options{
		Targets:      m.cfg.TargetPrimaryCategories,
		SearchFields: m.cfg.SearchFields,
	})
	m.importer = csvimport.NewMachine(csvimport.Options{
		CollectionID: m.cfg.CollectionID,
		CreateMode:   m.cfg.CreateCSV,
		SampleURL:    m.cfg.SampleCSVURL,
		Messages: csvimport.Messages{
			SlotFailed:   m.cfg.Label(config.LabelSlotFailed),
			UploadFailed: m.cfg.Label(config.LabelUploadFailed),
			ImportFailed: m.cfg.Label(config.LabelImportFailed),
		},
		Sink:       m.opt.Sink,
		Slots:      m.services.Slots,
		Blob:       m.services.Blob,
		Confirmer:  m.services.Confirmer,
		Downloader: m.services.Downloader,
	})
}
