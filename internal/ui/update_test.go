package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// TestHandleWelcomeKey verifies state transitions from the welcome screen.
func TestHandleWelcomeKey(t *testing.T) {
	m := NewModel(Options{Config: config.Config{CollectionID: "do_1"}})

	// Without token the handler should switch to the token prompt.
	m, cmd := m.handleWelcomeKey("enter")
	assert.Equal(t, stateTokenPrompt, m.state)
	assert.Nil(t, cmd)

	// With a token we expect loading to start.
	be := &fakeBackend{doc: testDoc()}
	cfg := testConfig()
	m = NewModel(Options{Config: cfg, Connect: func(config.Config) Services { return be.services() }})
	m, cmd = m.handleWelcomeKey("enter")
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, cmd)
}

func TestWelcomeWithoutCollectionShowsError(t *testing.T) {
	m := NewModel(Options{Config: config.Config{Token: "tok"}})
	m, _ = m.handleWelcomeKey("enter")
	assert.Equal(t, stateError, m.state)
}

// TestUpdateGlobalQuit ensures that global quit keys are handled before state handlers.
func TestUpdateGlobalQuit(t *testing.T) {
	m := NewModel(Options{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestQIsTypedIntoTokenPrompt(t *testing.T) {
	m := NewModel(Options{})
	m.state = stateTokenPrompt
	next, _ := m.Update(runes("q"))
	nm := next.(Model)
	assert.Equal(t, stateTokenPrompt, nm.state)
	assert.Equal(t, "q", nm.ti.Value())
}

func TestTokenPromptSavesAndLoads(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	be := &fakeBackend{doc: testDoc()}
	cfg := testConfig()
	cfg.Token = ""
	m := NewModel(Options{Config: cfg, ConfigPath: path, Connect: func(config.Config) Services { return be.services() }})
	m.state = stateTokenPrompt
	m.ti.SetValue("  secret-token ")

	m, cmd := m.handleTokenPromptKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateLoading, m.state)
	assert.NotNil(t, cmd)
	assert.Equal(t, "secret-token", m.cfg.Token)

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", saved.Token)
}

func TestHierarchyFailureMakesPickerUnusable(t *testing.T) {
	be := &fakeBackend{}
	m := NewModel(Options{Config: testConfig(), Connect: func(config.Config) Services { return be.services() }})
	m, _ = m.startLoading()
	m, cmd := m.handleHierarchy(hierarchyMsg{err: &editor.APIError{Status: 404, Message: "collection not found"}})

	assert.Nil(t, cmd)
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.errMsg, m.cfg.Label(config.LabelHierarchyFailed))
	assert.Contains(t, m.errMsg, "collection not found")
	assert.Contains(t, m.View(), "collection not found")

	// keys other than quit do nothing
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateError, next.(Model).state)
}

func TestHierarchyThenSearch(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	m := NewModel(Options{Config: testConfig(), Connect: func(config.Config) Services { return be.services() }})
	m, _ = m.startLoading()

	m, cmd := m.handleHierarchy(hierarchyMsg{doc: be.doc})
	assert.Equal(t, stateSearching, m.state)
	require.NotNil(t, cmd)
	require.Len(t, m.nodes, 1)
	assert.NotEmpty(t, m.treeLines)

	// run the search command directly
	msg := m.searchCmd(m.engine.BuildRequest(nil, ""))()
	sm, ok := msg.(searchMsg)
	require.True(t, ok)
	m, _ = m.handleSearch(sm)

	assert.Equal(t, stateLibrary, m.state)
	require.Len(t, be.requests, 1)
	req := be.requests[0]
	assert.Equal(t, []string{"CBSE"}, req.Filters["board"])
	assert.Equal(t, []string{"Explanation Content", "Practice Question Set"}, req.Filters["primaryCategory"])
	assert.Len(t, m.list.visible, 3)
	assert.Contains(t, m.View(), "algebra basics")
}

func TestSearchFailureKeepsList(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	m, _ := libraryModel(be)
	m.state = stateSearching
	m, _ = m.handleSearch(searchMsg{err: &editor.APIError{Status: 500}})

	assert.Equal(t, stateLibrary, m.state)
	assert.Len(t, m.engine.Items(), 3)
	assert.Contains(t, m.statusMsg, "previous results")
	assert.Error(t, m.engine.Err())
}

func TestSpinnerOnlyWhileBusy(t *testing.T) {
	m := NewModel(Options{})
	assert.False(t, m.busy())
	m.state = stateImporting
	assert.True(t, m.busy())
}

func TestWindowSizeAdjustsViewports(t *testing.T) {
	m := NewModel(Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	nm := next.(Model)
	assert.Equal(t, 28, nm.list.viewport)
	assert.Equal(t, 98, nm.viewport.Width)
}

func TestNoEventsBeforeAction(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	_, rec := libraryModel(be)
	assert.Empty(t, rec.Events())
}
