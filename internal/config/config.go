package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// EnvPrefix is prepended to every environment override, e.g.
// COLLECTIONCTL_TOKEN or COLLECTIONCTL_TRANSPORT_RPS.
const EnvPrefix = "COLLECTIONCTL"

// Label keys. Label texts are dotted like the editor's label bundle, so the
// viper key delimiter is switched away from ".".
const (
	LabelSlotFailed       = "messages.error.026"
	LabelUploadFailed     = "messages.error.018"
	LabelHierarchyFailed  = "messages.error.001"
	LabelImportFailed     = "messages.error.import"
	LabelSampleDownloaded = "messages.success.013"
	LabelImportConfirmed  = "messages.success.import"
)

const keyDelim = "::"

// Transport tunes the HTTP transport of the editor client.
type Transport struct {
	RPS           float64 `mapstructure:"rps"`
	Burst         int     `mapstructure:"burst"`
	RetryMax      int     `mapstructure:"retry_max"`
	BackoffBaseMS int     `mapstructure:"backoff_base_ms"`
	BackoffCapMS  int     `mapstructure:"backoff_cap_ms"`
	TimeoutSec    int     `mapstructure:"timeout_seconds"`
}

// Config is everything collectionctl needs to talk to the editor API.
type Config struct {
	BaseURL      string `mapstructure:"base_url"`
	Token        string `mapstructure:"token"`
	UserToken    string `mapstructure:"user_token"`
	ChannelID    string `mapstructure:"channel_id"`
	CollectionID string `mapstructure:"collection_id"`

	// CreateCSV selects the create flow of the import modal; false means update.
	CreateCSV    bool   `mapstructure:"create_csv"`
	SampleCSVURL string `mapstructure:"sample_csv_url"`

	TargetPrimaryCategories []library.TargetCategory `mapstructure:"target_primary_categories"`
	SearchFields            []string                 `mapstructure:"search_fields"`
	Hierarchy               hierarchy.LevelConfig    `mapstructure:"hierarchy"`
	Labels                  map[string]string        `mapstructure:"labels"`

	Transport         Transport     `mapstructure:"transport"`
	HierarchyCacheTTL time.Duration `mapstructure:"hierarchy_cache_ttl"`
	LogLevel          string        `mapstructure:"log_level"`
}

// DefaultLabels are used for every label the config file leaves out.
func DefaultLabels() map[string]string {
	return map[string]string{
		LabelSlotFailed:       "Unable to get an upload URL for the file",
		LabelUploadFailed:     "Uploading the file failed",
		LabelHierarchyFailed:  "Fetching the collection hierarchy failed",
		LabelImportFailed:     "The CSV file could not be imported",
		LabelSampleDownloaded: "Sample file downloaded",
		LabelImportConfirmed:  "Hierarchy updated from CSV",
	}
}

// Label returns the configured text for key, falling back to the default.
func (c Config) Label(key string) string {
	if s := c.Labels[key]; s != "" {
		return s
	}
	if s := DefaultLabels()[key]; s != "" {
		return s
	}
	return key
}

// Timeout is the HTTP client timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Transport.TimeoutSec) * time.Second
}

// DefaultPath returns ~/.collectionctl/config.yaml, or a relative path when
// the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".collectionctl", "config.yaml")
	}
	return filepath.Join(home, ".collectionctl", "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://dock.sunbirded.org/action")
	v.SetDefault("token", "")
	v.SetDefault("user_token", "")
	v.SetDefault("channel_id", "")
	v.SetDefault("collection_id", "")
	v.SetDefault("create_csv", false)
	v.SetDefault("sample_csv_url", "")
	v.SetDefault("target_primary_categories", []map[string]any{
		{"name": "Explanation Content", "target_object_type": "Content"},
		{"name": "Practice Question Set", "target_object_type": "QuestionSet"},
	})
	v.SetDefault("search_fields", []string{"primaryCategory", "board", "medium", "gradeLevel", "subject"})
	v.SetDefault("hierarchy", map[string]any{})
	v.SetDefault("labels", map[string]any{})
	v.SetDefault("transport"+keyDelim+"rps", 10.0)
	v.SetDefault("transport"+keyDelim+"burst", 10)
	v.SetDefault("transport"+keyDelim+"retry_max", 2)
	v.SetDefault("transport"+keyDelim+"backoff_base_ms", 250)
	v.SetDefault("transport"+keyDelim+"backoff_cap_ms", 5000)
	v.SetDefault("transport"+keyDelim+"timeout_seconds", 30)
	v.SetDefault("hierarchy_cache_ttl", "5m")
	v.SetDefault("log_level", "warn")
}

// Load reads path (missing files are fine) and applies COLLECTIONCTL_*
// environment overrides on top.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return Config{}, errors.Wrapf(err, "read config %s", path)
			}
			logx.Debugf("config %s not found, using environment and defaults", path)
		} else {
			logx.Debugf("using config file %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	cfg.normalize()
	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) {
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	c.CollectionID = strings.TrimSpace(c.CollectionID)
	labels := DefaultLabels()
	for k, s := range c.Labels {
		labels[k] = s
	}
	c.Labels = labels
}

// Validate reports the first setting that prevents talking to the API.
func (c Config) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if c.CollectionID == "" {
		missing = append(missing, "collection_id")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required settings: %s (set them in the config file or as %s_<NAME>)",
			strings.Join(missing, ", "), EnvPrefix)
	}
	if len(c.TargetPrimaryCategories) == 0 {
		return errors.New("target_primary_categories must not be empty")
	}
	for i, t := range c.TargetPrimaryCategories {
		if t.Name == "" || t.TargetObjectType == "" {
			return errors.Errorf("target_primary_categories[%d]: name and target_object_type are required", i)
		}
	}
	return nil
}

// Save writes cfg to path as yaml, creating the directory with private
// permissions. Only the connection settings are written; everything else
// keeps its default or file value on the next Load.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("token is required")
	}
	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
	}
	v.Set("base_url", cfg.BaseURL)
	v.Set("token", cfg.Token)
	v.Set("collection_id", cfg.CollectionID)
	if cfg.UserToken != "" {
		v.Set("user_token", cfg.UserToken)
	}
	if cfg.ChannelID != "" {
		v.Set("channel_id", cfg.ChannelID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return os.Chmod(path, 0o600)
}
