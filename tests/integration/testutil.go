// Package integration runs the built clientdesk binary against a fake CRM
// backend.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesh-intelligence/clientdesk/internal/testutil"
)

var (
	// clientdeskBin is the path to the built clientdesk binary.
	clientdeskBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the directory
// holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is an isolated config and data directory with its own backend.
type TestEnv struct {
	t       *testing.T
	Backend *testutil.FakeBackend
	Config  string
	DataDir string
}

// NewTestEnv creates a test environment whose config.yaml points at a
// fresh fake backend.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build clientdesk: %v", buildErr)
	}
	if clientdeskBin == "" {
		t.Fatal("clientdesk binary not built")
	}

	dir := t.TempDir()
	env := &TestEnv{
		t:       t,
		Backend: testutil.NewFakeBackend(t),
		Config:  filepath.Join(dir, "config"),
		DataDir: filepath.Join(dir, "data"),
	}
	if err := os.MkdirAll(env.Config, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "backend_url: " + env.Backend.URL() + "\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// CmdResult holds the result of one clientdesk run.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes clientdesk with args and stdin.
func (e *TestEnv) Run(stdin string, args ...string) CmdResult {
	e.t.Helper()
	all := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(clientdeskBin, all...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			e.t.Fatalf("failed to run clientdesk: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes clientdesk and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	res := e.Run("", args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("clientdesk %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return out
}

// Listing is the JSON form of clients list.
type Listing struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Filter   string           `json:"filter"`
	Data     []map[string]any `json:"data"`
}
