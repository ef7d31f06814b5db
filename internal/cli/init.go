package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/clientdesk/internal/paths"
	"github.com/mesh-intelligence/clientdesk/internal/sqlite"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	BackendURL string `yaml:"backend_url"`
	Token      string `yaml:"token,omitempty"`
	Locale     string `yaml:"locale"`
	DataDir    string `yaml:"data_dir,omitempty"`
	PageSize   int    `yaml:"page_size"`
	LogLevel   string `yaml:"log_level"`
}

func newInitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and local storage",
		Long: "Create the configuration and data directories, write config.yaml if it is\n" +
			"missing, and create the local database.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, f)
		},
	}
}

func runInit(cmd *cobra.Command, f *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	cfg, err := loadConfig(configDir, f)
	if err != nil {
		return userError(err)
	}
	dataDir, err := paths.ResolveDataDir(f.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	configPath := paths.ConfigFile(configDir)
	created, err := writeConfigIfMissing(configPath, cfg, f.dataDir)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	store := sqlite.NewBackend()
	if err := store.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := store.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if created {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Local storage ready in %s\n", dataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg. An existing file is
// left untouched and false is returned.
func writeConfigIfMissing(path string, cfg types.Config, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(&configFile{
		BackendURL: cfg.BackendURL,
		Token:      cfg.Token,
		Locale:     cfg.Locale,
		DataDir:    dataDir,
		PageSize:   cfg.PageSize,
		LogLevel:   cfg.LogLevel,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, err
	}
	return true, nil
}
