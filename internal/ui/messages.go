package ui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/csvimport"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
)

// ---------- Messages / Cmds ----------
type hierarchyMsg struct {
	doc     hierarchy.Document
	err     error
	retries editor.RetryCounters
}

type searchMsg struct {
	res library.SearchResult
	err error
}

type importMsg struct {
	err error
}

type sampleMsg struct {
	path string
	err  error
}

func (m Model) loadHierarchyCmd() tea.Cmd {
	src := m.services.Hierarchy
	id := m.cfg.CollectionID
	return func() tea.Msg {
		if src == nil {
			return hierarchyMsg{err: errors.New("no hierarchy source")}
		}
		rc := &editor.RetryCounters{}
		ctx, cancel := context.WithTimeout(editor.WithRetryCounters(context.Background(), rc), 30*time.Second)
		defer cancel()
		doc, err := src.FetchHierarchy(ctx, id)
		return hierarchyMsg{doc: doc, err: err, retries: *rc}
	}
}

// searchCmd runs req off the UI goroutine; the engine is updated when the
// searchMsg arrives.
func (m Model) searchCmd(req library.SearchRequest) tea.Cmd {
	s := m.services.Search
	return func() tea.Msg {
		if s == nil {
			return searchMsg{err: errors.New("no search service")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.SearchContent(ctx, req)
		return searchMsg{res: res, err: err}
	}
}

func (m Model) importCmd() tea.Cmd {
	mc := m.importer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return importMsg{err: mc.Validate(ctx)}
	}
}

func (m Model) sampleCmd() tea.Cmd {
	mc := m.importer
	dir := m.opt.SampleDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		f, err := mc.SampleCSV(ctx)
		if err != nil {
			return sampleMsg{err: err}
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return sampleMsg{err: errors.Wrap(err, "write sample")}
		}
		return sampleMsg{path: path}
	}
}

// readCSVFile loads the file named in the import dialog.
func readCSVFile(path string) (csvimport.File, error) {
	if path == "" {
		return csvimport.File{}, csvimport.ErrNoFile
	}
	return csvimport.ReadFile(path)
}
