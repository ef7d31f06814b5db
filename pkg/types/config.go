package types

import (
	"errors"
	"net/url"
	"time"
)

// StoreConfig holds backend selection and parameters for Store.Attach.
type StoreConfig struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported store backend names.
const (
	BackendSQLite = "sqlite"
)

// Supported locales. The first entry is the default.
const (
	LocaleEnglish = "en"
	LocaleHebrew  = "he"
)

// SupportedLocales lists the locale codes the console accepts.
var SupportedLocales = []string{LocaleEnglish, LocaleHebrew}

// IsSupportedLocale reports whether code is a known locale.
func IsSupportedLocale(code string) bool {
	for _, l := range SupportedLocales {
		if l == code {
			return true
		}
	}
	return false
}

// Console defaults.
const (
	DefaultPageSize       = 50
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrBackendURLEmpty    = errors.New("backend_url must not be empty")
	ErrBackendURLInvalid  = errors.New("backend_url must be an absolute http(s) URL")
	ErrPageSizeInvalid    = errors.New("page size must be positive")
	ErrDebounceInvalid    = errors.New("search debounce must not be negative")
	ErrUnknownLocale      = errors.New("unknown locale")
	ErrRequestTimeoutZero = errors.New("request timeout must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the StoreConfig is well-formed. It returns a sentinel
// error from this package on failure.
func (c StoreConfig) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Config is the console configuration.
type Config struct {
	BackendURL     string        `json:"backend_url" yaml:"backend_url"`
	Token          string        `json:"token,omitempty" yaml:"token,omitempty"`
	Locale         string        `json:"locale" yaml:"locale"`
	DataDir        string        `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	PageSize       int           `json:"page_size" yaml:"page_size"`
	SearchDebounce time.Duration `json:"search_debounce" yaml:"search_debounce"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel       string        `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return ErrBackendURLEmpty
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBackendURLInvalid
	}
	if c.PageSize <= 0 {
		return ErrPageSizeInvalid
	}
	if c.SearchDebounce < 0 {
		return ErrDebounceInvalid
	}
	if c.RequestTimeout <= 0 {
		return ErrRequestTimeoutZero
	}
	if !IsSupportedLocale(c.Locale) {
		return ErrUnknownLocale
	}
	return nil
}
