package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

type fakeEditor struct {
	srv *httptest.Server

	mu        sync.Mutex
	putStatus int
	uploaded  []byte
	imported  string
}

func newFakeEditor(t *testing.T) *fakeEditor {
	t.Helper()
	fe := &fakeEditor{putStatus: http.StatusCreated}
	fe.srv = httptest.NewServer(http.HandlerFunc(fe.serve))
	t.Cleanup(fe.srv.Close)
	return fe
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"params":       map[string]any{"status": "successful"},
		"responseCode": "OK",
		"result":       result,
	})
}

func (fe *fakeEditor) serve(w http.ResponseWriter, r *http.Request) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/action/content/v3/hierarchy/do_1":
		writeResult(w, map[string]any{"content": map[string]any{
			"identifier": "do_1",
			"childNodes": []string{"do_added", "do_unit"},
			"children": []any{map[string]any{
				"identifier": "do_unit", "name": "Unit 1",
				"visibility": "Parent", "mimeType": hierarchy.CollectionMimeType,
			}},
		}})
	case r.Method == http.MethodPost && r.URL.Path == "/action/composite/v3/search":
		writeResult(w, map[string]any{
			"count": 2,
			"content": []any{
				map[string]any{"identifier": "do_added", "objectType": "Content", "name": "Zebra", "primaryCategory": "Explanation Content"},
				map[string]any{"identifier": "do_b", "objectType": "Content", "name": "Algebra", "primaryCategory": "Explanation Content"},
			},
		})
	case r.Method == http.MethodPost && r.URL.Path == "/action/content/v3/upload/url/do_1":
		writeResult(w, map[string]any{"pre_signed_url": fe.srv.URL + "/blob/units.csv?sig=1"})
	case r.Method == http.MethodPut && r.URL.Path == "/blob/units.csv":
		fe.uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(fe.putStatus)
	case r.Method == http.MethodPost && r.URL.Path == "/action/collection/v1/import/do_1":
		fe.imported = r.FormValue("fileUrl")
		writeResult(w, map[string]any{})
	case r.Method == http.MethodGet && r.URL.Path == "/sample.csv":
		_, _ = io.WriteString(w, "Level 1 Folder,Level 2 Folder\n")
	default:
		http.NotFound(w, r)
	}
}

func writeConfig(t *testing.T, fe *fakeEditor) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`base_url: %s/action
token: test-token
collection_id: do_1
create_csv: true
sample_csv_url: %s/sample.csv
transport:
  retry_max: 0
`, fe.srv.URL, fe.srv.URL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTreeJSON(t *testing.T) {
	fe := newFakeEditor(t)
	out, _, err := run(t, "--config", writeConfig(t, fe), "tree", "--json")
	require.NoError(t, err)

	var nodes []hierarchy.Node
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "Unit 1", nodes[0].Name)
	assert.Equal(t, 1, nodes[0].Level)
}

func TestTreeText(t *testing.T) {
	fe := newFakeEditor(t)
	out, _, err := run(t, "--config", writeConfig(t, fe), "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Unit 1")
}

func TestSearchHidesAddedByDefault(t *testing.T) {
	fe := newFakeEditor(t)
	cfg := writeConfig(t, fe)

	out, _, err := run(t, "--config", cfg, "search", "--json")
	require.NoError(t, err)
	var items []library.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "do_b", items[0].Identifier)

	out, _, err = run(t, "--config", cfg, "search", "--show-added", "--by-name")
	require.NoError(t, err)
	assert.Contains(t, out, "do_added")
	assert.Less(t, strings.Index(out, "Algebra"), strings.Index(out, "Zebra"))
	assert.Contains(t, out, "2 resources")
}

func TestImportEmitsUpdateHierarchy(t *testing.T) {
	fe := newFakeEditor(t)
	csv := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Level 1 Folder,Level 2 Folder\nUnit 1,Sub 1\n"), 0o600))

	out, _, err := run(t, "--config", writeConfig(t, fe), "import", "--file", csv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":true,"type":"updateHierarchy"}`, strings.TrimSpace(out))

	fe.mu.Lock()
	defer fe.mu.Unlock()
	assert.Equal(t, fe.srv.URL+"/blob/units.csv", fe.imported)
	assert.Contains(t, string(fe.uploaded), "Unit 1,Sub 1")
}

func TestImportUploadFailureExitCode(t *testing.T) {
	fe := newFakeEditor(t)
	fe.putStatus = http.StatusForbidden
	csv := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a,b\n1,2\n"), 0o600))

	out, _, err := run(t, "--config", writeConfig(t, fe), "import", "--file", csv)
	require.Error(t, err)
	assert.Equal(t, exitImport, exitCode(err))
	assert.Empty(t, out)
	assert.Empty(t, fe.imported)
}

func TestSampleWritesCollectionFile(t *testing.T) {
	fe := newFakeEditor(t)
	dir := t.TempDir()
	out, _, err := run(t, "--config", writeConfig(t, fe), "sample", "--out", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "do_1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Level 1 Folder,Level 2 Folder\n", string(data))
	assert.Contains(t, out, "do_1.csv")
}

func TestHeadlessCommandsNeedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collection_id: do_1\n"), 0o600))
	_, _, err := run(t, "--config", path, "tree")
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
	assert.Contains(t, err.Error(), "token")
}

func TestParseFilters(t *testing.T) {
	fs, err := parseFilters([]string{"board=CBSE", "medium=English, Hindi", "subject="})
	require.NoError(t, err)
	assert.Equal(t, library.FilterSet{"board": {"CBSE"}, "medium": {"English", "Hindi"}}, fs)

	fs, err = parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, fs)

	_, err = parseFilters([]string{"nokey"})
	require.Error(t, err)
}
