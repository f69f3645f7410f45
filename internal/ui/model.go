package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
)

// --- Model / State ---
type state int

const (
	stateWelcome state = iota
	stateTokenPrompt
	stateLoading   // hierarchy request outstanding
	stateSearching // content search outstanding
	stateLibrary
	stateTree
	stateImport
	stateImporting
	stateError
	stateQuit
)

// Services are the collaborators of the picker. They are built by
// Options.Connect once an API token is known.
type Services struct {
	Hierarchy  hierarchy.Source
	Search     library.Searcher
	Slots      csvimport.SlotRequester
	Blob       csvimport.FileTransferer
	Confirmer  csvimport.ImportConfirmer
	Downloader csvimport.Downloader
	Metrics    *editor.Metrics
}

// Options configure NewModel.
type Options struct {
	Config     config.Config
	ConfigPath string
	Connect    func(config.Config) Services
	Sink       events.Sink
	// SampleDir receives downloaded sample sheets; empty means the working
	// directory.
	SampleDir string
}

type ListState struct {
	cursor   int   // index into visible
	offset   int   // first rendered row
	viewport int   // rendered rows
	visible  []int // visible row -> engine item index
}

type SearchState struct {
	// local fuzzy narrowing of the loaded list
	searching bool
	input     textinput.Model
	query     string
}

type QueryState struct {
	// server side query, sent with the next search
	editing bool
	input   textinput.Model
	query   string
}

type ImportState struct {
	input textinput.Model
	note  string
}

type Model struct {
	state         state
	opt           Options
	cfg           config.Config
	statusMsg     string
	errMsg        string
	width, height int

	spinner spinner.Model
	ti      textinput.Model // token input

	services   Services
	engine     *library.Engine
	importer   *csvimport.Machine
	nodes      []hierarchy.Node
	refreshing bool
	retries    editor.RetryCounters

	list      ListState
	search    SearchState
	query     QueryState
	category  int // 0 = all target categories, i > 0 = targets[i-1]
	filterCfg FilterConfig

	viewport   viewport.Model
	treeLines  []string
	treeCursor int
	imp        ImportState
}
