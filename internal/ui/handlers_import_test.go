package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
)

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(path, []byte("Level 1 Folder,Level 2 Folder\nUnit 1,Sub 1\n"), 0o600))
	return path
}

func TestImportFlow(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	m, rec := libraryModel(be)

	m, _ = m.handleLibraryKey(runes("i"))
	require.Equal(t, stateImport, m.state)
	assert.True(t, m.importer.Flags().UploadMode)
	assert.True(t, m.typing(), "path input has focus")

	m.imp.input.SetValue(writeCSV(t))
	m, _ = m.handleImportKey(tea.KeyMsg{Type: tea.KeyEnter})
	f := m.importer.Flags()
	require.True(t, f.UploadEnabled)
	assert.Equal(t, "units.csv", f.FileName)
	assert.False(t, m.typing())

	m, cmd := m.handleImportKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, stateImporting, m.state)

	msg := m.importCmd()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, stateImport, m.state)
	assert.True(t, m.importer.Flags().Success)
	assert.True(t, m.refreshing)
	require.NotNil(t, cmd, "hierarchy is reloaded after a successful import")
	assert.Equal(t, []string{"https://blob/x"}, be.confirmed)

	last, _ := rec.Last()
	assert.Equal(t, events.UpdateHierarchy(), last)

	// the background refresh does not leave the dialog
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, stateImport, m.state)
	assert.False(t, m.refreshing)

	m, _ = m.handleImportKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateLibrary, m.state)
	last, _ = rec.Last()
	assert.Equal(t, events.CloseModal(), last)
}

func TestImportMissingFile(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("i"))
	m.imp.input.SetValue(filepath.Join(t.TempDir(), "nope.csv"))
	m, _ = m.handleImportKey(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.importer.Flags().FileName)
	assert.NotEmpty(t, m.imp.note)
}

func TestImportErrorThenReupload(t *testing.T) {
	m, _ := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("i"))
	require.NoError(t, m.importer.SelectFile(csvimport.NewFile("x.csv", []byte("a,b\n"))))

	m, _ = m.handleImportDone(importMsg{err: &csvimport.StepError{Kind: csvimport.Transfer, Message: "upload failed"}})
	assert.Equal(t, stateImport, m.state)
	assert.False(t, m.refreshing)

	m, cmd := m.handleImportKey(runes("r"))
	assert.NotNil(t, cmd)
	assert.Empty(t, m.importer.Flags().FileName)
	assert.True(t, m.importer.Flags().UploadMode)
}

func TestImportViewShowsFailure(t *testing.T) {
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	m, _ := libraryModel(be)
	m.importer = csvimport.NewMachine(csvimport.Options{
		CollectionID: "do_1",
		Messages:     csvimport.Messages{SlotFailed: m.cfg.Label(config.LabelSlotFailed)},
		Slots:        failingSlots{},
	})
	m.state = stateImport
	require.NoError(t, m.importer.SelectFile(csvimport.NewFile("x.csv", []byte("a,b\n"))))
	m, _ = m.handleImportDone(importMsg{err: m.importer.Validate(context.Background())})

	v := m.View()
	assert.Contains(t, v, m.cfg.Label(config.LabelSlotFailed))
	assert.Contains(t, v, "file name not allowed")
	assert.Contains(t, v, "r upload again")
}

func TestSampleDownload(t *testing.T) {
	dir := t.TempDir()
	be := &fakeBackend{doc: testDoc(), result: testResult()}
	cfg := testConfig()
	cfg.SampleCSVURL = "https://cdn.example.org/sample.csv"
	m := NewModel(Options{Config: cfg, SampleDir: dir, Connect: func(config.Config) Services { return be.services() }})
	m, _ = m.startLoading()
	m.state = stateImport

	m, cmd := m.handleImportKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	data, err := os.ReadFile(filepath.Join(dir, "do_1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Level 1 Folder\n", string(data))
	assert.Contains(t, m.imp.note, m.cfg.Label(config.LabelSampleDownloaded))
}

func TestEscClosesImport(t *testing.T) {
	m, rec := libraryModel(&fakeBackend{doc: testDoc(), result: testResult()})
	m, _ = m.handleLibraryKey(runes("i"))
	m, _ = m.handleImportKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateLibrary, m.state)
	assert.False(t, m.importer.Flags().UploadMode)
	last, _ := rec.Last()
	assert.Equal(t, events.CloseModal(), last)
}
