package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "CLIENTDESK"
)

// Config keys in config.yaml and, upper-cased with the CLIENTDESK_ prefix,
// in the environment.
const (
	cfgKeyBackendURL     = "backend_url"
	cfgKeyToken          = "token"
	cfgKeyLocale         = "locale"
	cfgKeyDataDir        = "data_dir"
	cfgKeyPageSize       = "page_size"
	cfgKeySearchDebounce = "search_debounce"
	cfgKeyRequestTimeout = "request_timeout"
	cfgKeyLogLevel       = "log_level"
)

// loadConfig reads config.yaml from configDir, overlays CLIENTDESK_*
// environment variables and then the global flags. A missing config.yaml
// is not an error.
func loadConfig(configDir string, f *rootFlags) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLocale, types.LocaleEnglish)
	v.SetDefault(cfgKeyPageSize, types.DefaultPageSize)
	v.SetDefault(cfgKeySearchDebounce, types.DefaultSearchDebounce)
	v.SetDefault(cfgKeyRequestTimeout, types.DefaultRequestTimeout)
	v.SetDefault(cfgKeyLogLevel, "info")

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, val := range map[string]string{
		cfgKeyBackendURL: f.backendURL,
		cfgKeyToken:      f.token,
		cfgKeyLogLevel:   f.logLevel,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}

	return types.Config{
		BackendURL:     v.GetString(cfgKeyBackendURL),
		Token:          v.GetString(cfgKeyToken),
		Locale:         v.GetString(cfgKeyLocale),
		DataDir:        v.GetString(cfgKeyDataDir),
		PageSize:       v.GetInt(cfgKeyPageSize),
		SearchDebounce: v.GetDuration(cfgKeySearchDebounce),
		RequestTimeout: v.GetDuration(cfgKeyRequestTimeout),
		LogLevel:       v.GetString(cfgKeyLogLevel),
	}, nil
}
