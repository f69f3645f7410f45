package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
)

const sampleYAML = `
base_url: https://editor.example.org/action/
token: abc
collection_id: do_113
create_csv: true
sample_csv_url: https://example.org/sample.csv
target_primary_categories:
  - name: Course Assessment
    target_object_type: QuestionSet
search_fields: [primaryCategory, board]
hierarchy:
  level1:
    name: Unit
    children:
      Content: [Explanation Content]
  level2:
    name: Sub unit
labels:
  messages.error.026: Slot unavailable
transport:
  rps: 3
  retry_max: 1
hierarchy_cache_ttl: 90s
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReadsFile(t *testing.T) {
	cfg, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://editor.example.org/action", cfg.BaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "do_113", cfg.CollectionID)
	assert.True(t, cfg.CreateCSV)
	assert.Equal(t, []library.TargetCategory{{Name: "Course Assessment", TargetObjectType: "QuestionSet"}}, cfg.TargetPrimaryCategories)
	assert.Equal(t, []string{"primaryCategory", "board"}, cfg.SearchFields)
	assert.False(t, cfg.Hierarchy.AllowsAnyChild(1))
	assert.True(t, cfg.Hierarchy.AllowsAnyChild(2))
	assert.Equal(t, 90*time.Second, cfg.HierarchyCacheTTL)
	assert.Equal(t, 3.0, cfg.Transport.RPS)
	assert.Equal(t, 1, cfg.Transport.RetryMax)
	assert.Equal(t, 10, cfg.Transport.Burst, "unset nested keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLabelsMergeWithDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "Slot unavailable", cfg.Label(LabelSlotFailed))
	assert.Equal(t, DefaultLabels()[LabelUploadFailed], cfg.Label(LabelUploadFailed))
	assert.Equal(t, "unknown.key", cfg.Label("unknown.key"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COLLECTIONCTL_TOKEN", "envtoken")
	t.Setenv("COLLECTIONCTL_COLLECTION_ID", "do_env")
	t.Setenv("COLLECTIONCTL_TRANSPORT_RETRY_MAX", "4")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "envtoken", cfg.Token)
	assert.Equal(t, "do_env", cfg.CollectionID)
	assert.Equal(t, 4, cfg.Transport.RetryMax)
	assert.Len(t, cfg.TargetPrimaryCategories, 2)
	assert.Equal(t, 5*time.Minute, cfg.HierarchyCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	_, err := Load(writeFile(t, "token: [unterminated"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
	assert.Contains(t, err.Error(), "collection_id")

	cfg.Token, cfg.CollectionID = "t", "do_1"
	assert.NoError(t, cfg.Validate())

	cfg.TargetPrimaryCategories = []library.TargetCategory{{Name: "x"}}
	assert.Error(t, cfg.Validate())
}

func TestSaveWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(path, Config{BaseURL: "https://e.example.org", Token: "abc", CollectionID: "do_9"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "do_9", cfg.CollectionID)
	assert.Equal(t, "https://e.example.org", cfg.BaseURL)
}

func TestSaveKeepsExistingSettings(t *testing.T) {
	path := writeFile(t, sampleYAML)
	require.NoError(t, Save(path, Config{BaseURL: "https://editor.example.org/action", Token: "new", CollectionID: "do_113"}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Token)
	assert.True(t, cfg.CreateCSV)
	assert.Equal(t, "Slot unavailable", cfg.Label(LabelSlotFailed))
}

func TestSaveRequiresToken(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), Config{}))
}

func TestDefaultPathUsesHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	assert.Equal(t, filepath.Join(dir, ".collectionctl", "config.yaml"), DefaultPath())
}
