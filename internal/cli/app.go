package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/client"
	"github.com/mesh-intelligence/clientdesk/internal/filter"
	"github.com/mesh-intelligence/clientdesk/internal/locale"
	"github.com/mesh-intelligence/clientdesk/internal/logging"
	"github.com/mesh-intelligence/clientdesk/internal/paths"
	"github.com/mesh-intelligence/clientdesk/internal/schema"
	"github.com/mesh-intelligence/clientdesk/internal/sqlite"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// app is the per-invocation wiring: configuration, logger, local store,
// locale state and, on demand, the backend client.
type app struct {
	cfg     types.Config
	flags   *rootFlags
	log     *slog.Logger
	logFile *os.File
	store   *sqlite.Backend
	locale  *locale.State
	api     *client.Client
	out     io.Writer
	errOut  io.Writer
}

// openApp loads configuration, opens the log and attaches local storage.
// The caller must call close.
func openApp(cmd *cobra.Command, f *rootFlags) (*app, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir, f)
	if err != nil {
		return nil, userError(err)
	}
	cfg.DataDir, err = paths.ResolveDataDir(f.dataDir, cfg.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, userError(err)
	}
	log, logFile, err := logging.Open(paths.LogFile(cfg.DataDir), level, cmd.ErrOrStderr())
	if err != nil {
		return nil, sysError(err)
	}

	store := sqlite.NewBackend()
	if err := store.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: cfg.DataDir}); err != nil {
		logFile.Close()
		return nil, sysError(fmt.Errorf("attach storage: %w", err))
	}
	settings, err := store.GetTable(types.TableSettings)
	if err != nil {
		store.Detach()
		logFile.Close()
		return nil, sysError(err)
	}
	st := locale.New(settings, cfg.Locale)
	if _, err := st.Init(); err != nil {
		log.Warn("using default locale", "error", err)
	}

	return &app{
		cfg:     cfg,
		flags:   f,
		log:     log,
		logFile: logFile,
		store:   store,
		locale:  st,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

func (a *app) close() {
	if err := a.store.Detach(); err != nil {
		a.log.Warn("detach storage", "error", err)
	}
	a.logFile.Close()
}

// lang returns the locale for this run: the --locale flag, else the
// persisted or configured one.
func (a *app) lang() string {
	if a.flags.locale != "" && types.IsSupportedLocale(a.flags.locale) {
		return a.flags.locale
	}
	return a.locale.Current()
}

// client returns the backend client, validating the configuration first.
func (a *app) client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}
	cfg := a.cfg
	cfg.Locale = a.lang()
	if err := cfg.Validate(); err != nil {
		return nil, userError(fmt.Errorf("configuration: %w", err))
	}
	c, err := client.New(cfg.BackendURL,
		client.WithToken(cfg.Token),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(a.log),
	)
	if err != nil {
		return nil, userError(err)
	}
	a.api = c
	return c, nil
}

// registry loads the field schema, falling back to the stored snapshot
// when the backend is unreachable.
func (a *app) registry(ctx context.Context) (*schema.Registry, error) {
	api, err := a.client()
	if err != nil {
		return nil, err
	}
	snapshots, err := a.store.GetTable(types.TableSchemaSnapshots)
	if err != nil {
		return nil, sysError(err)
	}
	reg, err := schema.NewLoader(api, snapshots, a.log).Load(ctx, a.lang())
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return reg, nil
}

// catalog reads the operator catalog, falling back to the built-in one.
func (a *app) catalog(ctx context.Context) (*filter.Catalog, error) {
	api, err := a.client()
	if err != nil {
		return nil, err
	}
	sets, err := api.FilterOptions(ctx)
	if err != nil || len(sets) == 0 {
		if err != nil {
			a.log.Warn("using built-in operator catalog", "error", err)
		}
		return filter.DefaultCatalog(), nil
	}
	return filter.NewCatalog(sets), nil
}

// collection loads the saved filter groups. A read failure yields an empty
// collection.
func (a *app) collection(ctx context.Context) (*filter.Collection, error) {
	api, err := a.client()
	if err != nil {
		return nil, err
	}
	groups, err := api.ListFilterGroups(ctx)
	if err != nil {
		a.log.Warn("loading filter groups", "error", err)
		groups = nil
	}
	return filter.NewCollection(groups, api), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp wraps a RunE body with openApp and close.
func withApp(f *rootFlags, body func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, f)
		if err != nil {
			return err
		}
		defer a.close()
		return body(cmd, a, args)
	}
}
