// Package cli implements the clientdesk command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clientdesk/internal/paths"
	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	backendURL string
	token      string
	locale     string
	logLevel   string
	jsonMode   bool
}

// NewRootCmd creates the top-level "clientdesk" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "clientdesk",
		Short: "Terminal admin console for a CRM backend",
		Long: "clientdesk drives client listings, forms, filters and exports from the\n" +
			"field definitions served by the CRM backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&f.dataDir, "data-dir", "", "data directory for local storage and logs (env "+paths.EnvDataDir+")")
	pf.StringVar(&f.backendURL, "backend-url", "", "CRM backend base URL")
	pf.StringVar(&f.token, "token", "", "API token")
	pf.StringVar(&f.locale, "locale", "", "locale for this run (en, he)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&f.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(f),
		newLocaleCmd(f),
		newSchemaCmd(f),
		newClientsCmd(f),
		newColumnsCmd(f),
		newFiltersCmd(f),
		newTemplatesCmd(f),
		newProfilesCmd(f),
		newRequestsCmd(f),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error to an exit code. Backend and storage failures are
// system errors; everything else, including usage errors from cobra, is the
// user's.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrNotFound):
		return exitUserError
	case errors.Is(err, types.ErrNetwork), errors.Is(err, types.ErrStoreDetached):
		return exitSysError
	}
	return exitUserError
}
