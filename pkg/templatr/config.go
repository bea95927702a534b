package templatr

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// EMUs per inch. DrawingML extents are expressed in EMU.
const emuPerInch = 914400

// Config contains all configuration options for the templatr engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `toml:"log_level"`
	// StrictMode turns unresolved markers and unknown directive types into errors
	StrictMode bool `toml:"strict_mode"`
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `toml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `toml:"cache_ttl"`
	// ImageMaxWidth is the widest an inserted image may be, in EMU. Wider images are scaled down.
	ImageMaxWidth int64 `toml:"image_max_width"`
	// ImageDPI is the resolution used to convert image pixels to document units
	ImageDPI int `toml:"image_dpi"`
	// TableStyle is a table style id from the template applied to generated tables
	TableStyle string `toml:"table_style"`
	// HeadersFooters applies text directives to header and footer parts too
	HeadersFooters bool `toml:"headers_footers"`
	// BaseDir resolves relative image paths. Empty means the working directory.
	BaseDir string `toml:"base_dir"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		StrictMode:   false,
		CacheMaxSize: 16,
		CacheTTL:     0,
		// 6.5in, the text width of a Letter page with 1in margins
		ImageMaxWidth:  emuPerInch * 13 / 2,
		ImageDPI:       96,
		TableStyle:     "",
		HeadersFooters: true,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

func applyEnvironment(config *Config) {
	// TEMPLATR_LOG_LEVEL
	if val := os.Getenv("TEMPLATR_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	// TEMPLATR_STRICT_MODE
	if val := os.Getenv("TEMPLATR_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	// TEMPLATR_CACHE_MAX_SIZE
	if val := os.Getenv("TEMPLATR_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// TEMPLATR_CACHE_TTL
	if val := os.Getenv("TEMPLATR_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	// TEMPLATR_IMAGE_MAX_WIDTH
	if val := os.Getenv("TEMPLATR_IMAGE_MAX_WIDTH"); val != "" {
		if width, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.ImageMaxWidth = width
		}
	}

	// TEMPLATR_IMAGE_DPI
	if val := os.Getenv("TEMPLATR_IMAGE_DPI"); val != "" {
		if dpi, err := strconv.Atoi(val); err == nil {
			config.ImageDPI = dpi
		}
	}

	// TEMPLATR_TABLE_STYLE
	if val := os.Getenv("TEMPLATR_TABLE_STYLE"); val != "" {
		config.TableStyle = val
	}

	// TEMPLATR_HEADERS_FOOTERS
	if val := os.Getenv("TEMPLATR_HEADERS_FOOTERS"); val != "" {
		config.HeadersFooters = parseBool(val)
	}

	// TEMPLATR_BASE_DIR
	if val := os.Getenv("TEMPLATR_BASE_DIR"); val != "" {
		config.BaseDir = val
	}
}

// LoadConfigFile reads a TOML configuration file. Keys absent from the file
// keep their defaults, and TEMPLATR_* environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	applyEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.ImageMaxWidth == 0 {
		config.ImageMaxWidth = defaults.ImageMaxWidth
	}

	if config.ImageDPI == 0 {
		config.ImageDPI = defaults.ImageDPI
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.ImageMaxWidth <= 0 {
		return errors.New("image max width must be positive")
	}

	if c.ImageDPI <= 0 {
		return errors.New("image DPI must be positive")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// outside the lock: the logger reads the config back
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
