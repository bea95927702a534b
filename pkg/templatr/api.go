package templatr

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Engine provides the main API for filling templates.
// Use New() to create a new engine instance.
type Engine struct {
	config *Config
	cache  *TemplateCache
	logger *Logger
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	config = NewConfigWithDefaults(config)
	return &Engine{
		config: config,
		cache: NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
		logger: GetLogger(),
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Open loads a template from a file path and parses it into a new Package.
// The raw bytes are cached; each call returns an independent Package.
func (e *Engine) Open(path string) (*Package, error) {
	data, err := e.templateBytes(path)
	if err != nil {
		return nil, err
	}
	pkg, err := openPackage(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewDocumentError("load", path, err)
	}
	return pkg, nil
}

func (e *Engine) templateBytes(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewDocumentError("load", path, err)
	}

	if data, ok := e.cache.Get(path, info.ModTime()); ok {
		e.logger.WithField("path", path).Debug("Template cache hit")
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("load", path, err)
	}
	e.cache.Set(path, data, info.ModTime())
	return data, nil
}

// OpenReader loads a template from r.
func (e *Engine) OpenReader(r io.Reader) (*Package, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewDocumentError("load", "", err)
	}
	return OpenPackage(bytes.NewReader(data), int64(len(data)))
}

// Driver returns a driver using the engine's configuration and logger.
func (e *Engine) Driver() *Driver {
	return NewDriver(e.config).WithLogger(e.logger)
}

// Fill opens the template and applies the directives. The package is not
// saved; on error it must be discarded.
func (e *Engine) Fill(templatePath string, directives []Directive) (*Package, *Report, error) {
	pkg, err := e.Open(templatePath)
	if err != nil {
		return nil, nil, err
	}

	report, err := e.Driver().Run(pkg, directives)
	if err != nil {
		return nil, report, WithContext(err, "fill", map[string]interface{}{"template": templatePath})
	}
	return pkg, report, nil
}

// FillFile reads the directive file, fills the template and saves the result
// to outputPath. Nothing is written when any step fails.
func (e *Engine) FillFile(templatePath, dataPath, outputPath string) (*Report, error) {
	directives, err := LoadDirectivesFile(dataPath, e.config.BaseDir)
	if err != nil {
		return nil, err
	}

	pkg, report, err := e.Fill(templatePath, directives)
	if err != nil {
		return report, err
	}

	if err := pkg.SaveFile(outputPath); err != nil {
		return report, err
	}

	e.logger.WithFields(Fields{
		"template":     templatePath,
		"output":       outputPath,
		"directives":   len(directives),
		"replacements": report.Replacements(),
	}).Info("Document filled")
	return report, nil
}

// Check validates directives against a template without changing it.
func (e *Engine) Check(templatePath string, directives []Directive) (*CheckResult, error) {
	pkg, err := e.Open(templatePath)
	if err != nil {
		return nil, err
	}
	return Check(pkg, directives, e.config), nil
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = NewConfigWithDefaults(config)
		e.cache = NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: e.config.CacheMaxSize,
			TTL:     e.config.CacheTTL,
		})
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		e.config.CacheMaxSize = maxSize
		e.cache = NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: maxSize,
			TTL:     e.config.CacheTTL,
		})
	}
}

// WithStrictMode returns an option that turns unresolved markers into errors.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) {
		e.config.StrictMode = strict
	}
}

// WithLogger returns an option that sets the engine's logger.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the global default engine instance.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Open loads a template using the default engine.
func Open(path string) (*Package, error) {
	return DefaultEngine.Open(path)
}

// Fill opens a template and applies directives using the default engine.
func Fill(templatePath string, directives []Directive) (*Package, *Report, error) {
	return DefaultEngine.Fill(templatePath, directives)
}

// FillFile fills a template from a directive file and saves the result using the default engine.
func FillFile(templatePath, dataPath, outputPath string) (*Report, error) {
	report, err := DefaultEngine.FillFile(templatePath, dataPath, outputPath)
	if err != nil {
		return report, fmt.Errorf("failed to fill %s: %w", templatePath, err)
	}
	return report, nil
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
