package ui

import (
	"context"
	"sync"

	"github.com/manojSRawat/sunbird-resource-library/internal/config"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/editor"
)

type fakeBackend struct {
	mu        sync.Mutex
	doc       hierarchy.Document
	docErr    error
	result    library.SearchResult
	searchErr error
	requests  []library.SearchRequest
	confirmed []string
}

func (f *fakeBackend) FetchHierarchy(context.Context, string) (hierarchy.Document, error) {
	return f.doc, f.docErr
}

func (f *fakeBackend) SearchContent(_ context.Context, req library.SearchRequest) (library.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.searchErr
}

func (f *fakeBackend) RequestUploadSlot(context.Context, string, string, string) (editor.UploadSlot, error) {
	return editor.UploadSlot{SignedURL: "https://blob/x?sig=1"}, nil
}

func (f *fakeBackend) PutFile(context.Context, string, []byte, string, map[string]string) error {
	return nil
}

func (f *fakeBackend) ConfirmImport(_ context.Context, fileURL, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, fileURL)
	return nil
}

func (f *fakeBackend) DownloadFile(context.Context, string) ([]byte, error) {
	return []byte("Level 1 Folder\n"), nil
}

func (f *fakeBackend) services() Services {
	return Services{
		Hierarchy:  f,
		Search:     f,
		Slots:      f,
		Blob:       f,
		Confirmer:  f,
		Downloader: f,
		Metrics:    editor.NewMetrics(),
	}
}

func testConfig() config.Config {
	return config.Config{
		BaseURL:      "https://editor.example.org/action",
		Token:        "tok",
		CollectionID: "do_1",
		CreateCSV:    true,
		TargetPrimaryCategories: []library.TargetCategory{
			{Name: "Explanation Content", TargetObjectType: "Content"},
			{Name: "Practice Question Set", TargetObjectType: "QuestionSet"},
		},
		SearchFields: []string{"primaryCategory", "board"},
	}
}

func testDoc() hierarchy.Document {
	return hierarchy.Document{
		"identifier": "do_1",
		"board":      "CBSE",
		"framework":  "ekstep_ncert_k-12",
		"childNodes": []any{"do_added", "do_unit"},
		"children": []any{
			map[string]any{
				"identifier": "do_unit", "name": "Unit 1",
				"visibility": "Parent", "mimeType": hierarchy.CollectionMimeType,
			},
		},
	}
}

func testResult() library.SearchResult {
	return library.SearchResult{
		Count: 3,
		Partitions: map[string][]library.Item{
			"content": {
				{Identifier: "do_added", ObjectType: "Content", Name: "Zebra crossing", PrimaryCategory: "Explanation Content"},
				{Identifier: "do_b", ObjectType: "Content", Name: "algebra basics", PrimaryCategory: "Explanation Content"},
			},
			"QuestionSet": {
				{Identifier: "do_q", ObjectType: "QuestionSet", Name: "Fractions quiz", PrimaryCategory: "Practice Question Set"},
			},
		},
	}
}

// libraryModel returns a model that has loaded the hierarchy and the first
// search page, plus the recorder of emitted events.
func libraryModel(be *fakeBackend) (Model, *events.Recorder) {
	rec := &events.Recorder{}
	m := NewModel(Options{
		Config:    testConfig(),
		Connect:   func(config.Config) Services { return be.services() },
		Sink:      rec.Sink(),
		SampleDir: "",
	})
	m, _ = m.startLoading()
	m, _ = m.handleHierarchy(hierarchyMsg{doc: be.doc})
	m, _ = m.handleSearch(searchMsg{res: be.result})
	return m, rec
}

type failingSlots struct{}

func (failingSlots) RequestUploadSlot(context.Context, string, string, string) (editor.UploadSlot, error) {
	return editor.UploadSlot{}, &editor.APIError{Status: 400, Message: "file name not allowed"}
}
