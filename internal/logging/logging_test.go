package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNamedNilBase(t *testing.T) {
	l := Named(nil, "store")
	if l == nil {
		t.Fatal("Named(nil) returned nil")
	}
	l.Info("discarded")
}

func mustNew(t *testing.T, verbose bool) *zap.Logger {
	t.Helper()
	l, err := New(verbose)
	if err != nil {
		t.Fatalf("New(%v): %v", verbose, err)
	}
	return l
}

func TestNewLevels(t *testing.T) {
	quiet := mustNew(t, false)
	if quiet.Core().Enabled(zap.InfoLevel) {
		t.Error("non-verbose logger should not log info")
	}
	if !quiet.Core().Enabled(zap.WarnLevel) {
		t.Error("non-verbose logger should log warnings")
	}
	loud := mustNew(t, true)
	if !loud.Core().Enabled(zap.DebugLevel) {
		t.Error("verbose logger should log debug")
	}
}

func TestNewDaemonWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	l, err := NewDaemon(path, false)
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	l.Info("started")
	_ = l.Sync()
}
