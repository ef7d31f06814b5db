package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Handle(t *testing.T) {
	ts := time.Date(2026, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			level:   slog.LevelInfo,
			message: "schema loaded",
			want:    "2026-06-15T14:30:45Z\tINFO\tschema loaded\n",
		},
		{
			name:    "with record attrs",
			level:   slog.LevelWarn,
			message: "listing fetch failed",
			attrs:   []slog.Attr{slog.String("locale", "he"), slog.Int("page", 2)},
			want:    "2026-06-15T14:30:45Z\tWARN\tlisting fetch failed\tlocale=he\tpage=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &handler{mu: &sync.Mutex{}, w: &buf, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)
			require.NoError(t, h.Handle(context.Background(), r))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown", "n", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "\tWARN\tshown\tn=1\n")
}

func TestWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug).With("cmd", "list").WithGroup("req")

	log.Debug("sent", "path", "/clients/")
	assert.Contains(t, buf.String(), "\tcmd=list\treq.path=/clients/\n")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clientdesk.log")
	var stderr bytes.Buffer

	log, f, err := Open(path, slog.LevelInfo, &stderr)
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\tINFO\thello\n")
	assert.Contains(t, stderr.String(), "hello")
}
