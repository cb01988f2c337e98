package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".docpull"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so YAML files can use Go duration syntax
// ("30s", "2m"). yaml.v3 has no native time.Duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// File is the YAML representation of a docpull configuration file.
// Every field is optional; absent fields keep their defaults. Durations use
// Go syntax ("30s", "2m").
type File struct {
	StartURL            string   `yaml:"start_url"`
	ItemQueryKey        string   `yaml:"item_query_key"`
	FileExtension       string   `yaml:"file_extension"`
	MaxListingPages     *int     `yaml:"max_listing_pages"`
	MaxItemPages        *int     `yaml:"max_item_pages"`
	PageLoadTimeout     Duration `yaml:"page_load_timeout"`
	AdvanceTimeout      Duration `yaml:"advance_timeout"`
	MaxRetries          int      `yaml:"max_retries"`
	BackoffBase         float64  `yaml:"backoff_base"`
	BackoffCap          Duration `yaml:"backoff_cap"`
	RequestTimeout      Duration `yaml:"request_timeout"`
	MinFileSize         *int64   `yaml:"min_file_size"`
	AllowedContentTypes []string `yaml:"allowed_content_types"`
	DownloadDir         string   `yaml:"download_dir"`
	StateDir            string   `yaml:"state_dir"`
	OutputDir           string   `yaml:"output_dir"`
	Concurrency         int      `yaml:"concurrency"`
	UserAgent           string   `yaml:"user_agent"`
}

// LoadConfigFile loads a configuration file from the given path.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in order:
// an explicit path, .docpull in the current directory, then .docpull in the
// user's home directory. Returns empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Apply copies the file's set fields onto the config. Flags are applied
// after the file by the CLI layer, so precedence is defaults < file < flags.
// Pointer fields distinguish "absent" from an explicit zero, which matters
// for the page caps where 0 means unbounded.
func (f *File) Apply(c *Config) {
	if f.StartURL != "" {
		c.StartURL = f.StartURL
	}
	if f.ItemQueryKey != "" {
		c.ItemQueryKey = f.ItemQueryKey
	}
	if f.FileExtension != "" {
		c.FileExtension = f.FileExtension
	}
	if f.MaxListingPages != nil {
		c.MaxListingPages = *f.MaxListingPages
	}
	if f.MaxItemPages != nil {
		c.MaxItemPages = *f.MaxItemPages
	}
	if f.PageLoadTimeout > 0 {
		c.PageLoadTimeout = f.PageLoadTimeout.Std()
	}
	if f.AdvanceTimeout > 0 {
		c.AdvanceTimeout = f.AdvanceTimeout.Std()
	}
	if f.MaxRetries > 0 {
		c.MaxRetries = f.MaxRetries
	}
	if f.BackoffBase > 0 {
		c.BackoffBase = f.BackoffBase
	}
	if f.BackoffCap > 0 {
		c.BackoffCap = f.BackoffCap.Std()
	}
	if f.RequestTimeout > 0 {
		c.RequestTimeout = f.RequestTimeout.Std()
	}
	if f.MinFileSize != nil {
		c.MinFileSize = *f.MinFileSize
	}
	if len(f.AllowedContentTypes) > 0 {
		c.AllowedContentTypes = f.AllowedContentTypes
	}
	if f.DownloadDir != "" {
		c.DownloadDir = f.DownloadDir
	}
	if f.StateDir != "" {
		c.StateDir = f.StateDir
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
}
