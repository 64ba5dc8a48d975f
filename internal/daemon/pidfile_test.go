package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPIDFileAcquireRelease(t *testing.T) {
	p := PIDFile{Path: filepath.Join(t.TempDir(), "run", "wanialad.pid")}

	if _, err := p.PID(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("PID() on missing file = %v, want ErrNotExist", err)
	}

	st := RuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:9999", StartedAt: time.Now().UTC(), Backend: "memory"}
	if err := p.Acquire(st); err != nil {
		t.Fatal(err)
	}

	pid, err := p.PID()
	if err != nil || pid != os.Getpid() {
		t.Fatalf("PID() = %d, %v, want %d", pid, err, os.Getpid())
	}
	got, err := p.State()
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != st.Addr || got.Backend != "memory" {
		t.Errorf("State() = %+v", got)
	}

	// The test process is alive, so a second daemon must be refused.
	if err := p.Acquire(st); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Acquire = %v, want ErrAlreadyRunning", err)
	}

	p.Release()
	if _, err := os.Stat(p.Path); !os.IsNotExist(err) {
		t.Error("pid file survived Release")
	}
	if _, err := p.State(); err == nil {
		t.Error("state file survived Release")
	}
}

func TestPIDFileInvalidContents(t *testing.T) {
	p := PIDFile{Path: filepath.Join(t.TempDir(), "wanialad.pid")}
	if err := os.WriteFile(p.Path, []byte("not-a-pid\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := p.PID(); err == nil {
		t.Error("PID() accepted garbage")
	}
	if err := p.CheckFree(); err == nil {
		t.Error("CheckFree() ignored an unreadable pid file")
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	p := PIDFile{Path: filepath.Join(t.TempDir(), "wanialad.pid")}
	if _, err := p.Stop(time.Second); err == nil {
		t.Error("Stop() succeeded with no pid file")
	}
}
