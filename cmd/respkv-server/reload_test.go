package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/respkv-go/internal/infra/confloader"
	"github.com/yndnr/respkv-go/internal/server/config"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
)

type fakeRates struct {
	mu    sync.Mutex
	calls []int
}

func (f *fakeRates) SetRateLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, n)
}

func (f *fakeRates) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func newTestReloader(t *testing.T, body string) (*reloader, *fakeRates, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	writeConfig(t, path, body)

	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	cfg, err := loadConfig(loader)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	rates := &fakeRates{}
	return newReloader(loader, cfg, rates, quietLogger()), rates, path
}

// ============================================================================
// Reload
// ============================================================================

func TestReload_AppliesLiveChanges(t *testing.T) {
	prev := logger.GetLevel()
	t.Cleanup(func() { logger.SetLevel(prev) })

	r, rates, path := newTestReloader(t, `
server:
  redis:
    rate_limit: 0
log:
  level: info
`)

	writeConfig(t, path, `
server:
  redis:
    rate_limit: 50
log:
  level: debug
`)
	ch, err := r.reload()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !ch.LogLevel || !ch.RateLimit {
		t.Errorf("changes = %+v, want log level and rate limit", ch)
	}
	if len(ch.Restart) != 0 {
		t.Errorf("Restart = %v, want none", ch.Restart)
	}
	if got := logger.GetLevel(); got != "debug" {
		t.Errorf("log level = %q, want debug", got)
	}
	if got := rates.Calls(); !reflect.DeepEqual(got, []int{50}) {
		t.Errorf("SetRateLimit calls = %v, want [50]", got)
	}

	// Same file again: nothing to apply.
	ch, err = r.reload()
	if err != nil {
		t.Fatalf("second reload: %v", err)
	}
	if ch.Live() || len(ch.Restart) != 0 {
		t.Errorf("unchanged reload reported %+v", ch)
	}
	if got := rates.Calls(); len(got) != 1 {
		t.Errorf("SetRateLimit called %d times, want 1", len(got))
	}
}

func TestReload_RestartOnlyChangesStayReported(t *testing.T) {
	r, rates, path := newTestReloader(t, `
server:
  redis:
    addr: 127.0.0.1:6379
`)

	writeConfig(t, path, `
server:
  redis:
    addr: 127.0.0.1:6390
`)
	for i := 0; i < 2; i++ {
		ch, err := r.reload()
		if err != nil {
			t.Fatalf("reload %d: %v", i, err)
		}
		if !reflect.DeepEqual(ch.Restart, []string{"server.redis.addr"}) {
			t.Errorf("reload %d: Restart = %v, want [server.redis.addr]", i, ch.Restart)
		}
		if ch.Live() {
			t.Errorf("reload %d: unexpected live change %+v", i, ch)
		}
	}
	if got := rates.Calls(); len(got) != 0 {
		t.Errorf("SetRateLimit calls = %v, want none", got)
	}
}

func TestReload_RejectsInvalidConfig(t *testing.T) {
	r, rates, path := newTestReloader(t, `
server:
  redis:
    rate_limit: 10
`)

	writeConfig(t, path, `
server:
  redis:
    rate_limit: -1
`)
	if _, err := r.reload(); err == nil {
		t.Fatal("reload accepted a negative rate limit")
	}
	if got := rates.Calls(); len(got) != 0 {
		t.Errorf("SetRateLimit calls = %v after rejected reload", got)
	}
	if got := r.running.Server.Redis.RateLimit; got != 10 {
		t.Errorf("running rate limit = %d, want 10", got)
	}
}

func TestReloader_WatchAppliesFileChange(t *testing.T) {
	r, rates, path := newTestReloader(t, `
server:
  redis:
    rate_limit: 1
`)
	w, err := r.watch(path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Stop()

	writeConfig(t, path, `
server:
  redis:
    rate_limit: 7
`)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if calls := rates.Calls(); len(calls) > 0 {
			if calls[len(calls)-1] != 7 {
				t.Fatalf("SetRateLimit calls = %v, want last 7", calls)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("file change was not applied")
}

// ============================================================================
// Startup config
// ============================================================================

func TestLoadConfig_FlagOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	writeConfig(t, path, `
server:
  redis:
    addr: 127.0.0.1:7000
log:
  level: warn
`)
	t.Setenv("RESPKV_SERVER__REDIS__ADDR", "127.0.0.1:7001")

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(map[string]any{"server.redis.addr": "127.0.0.1:7002"}),
	)
	cfg, err := loadConfig(loader)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Redis.Addr != "127.0.0.1:7002" {
		t.Errorf("addr = %q, want flag value", cfg.Server.Redis.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn from file", cfg.Log.Level)
	}
	if cfg.Server.Redis.ReadTimeout != config.Default().Server.Redis.ReadTimeout {
		t.Errorf("read timeout = %v, want default", cfg.Server.Redis.ReadTimeout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	loader := confloader.NewLoader(
		confloader.WithOverrides(map[string]any{"log.level": "loud"}),
	)
	if _, err := loadConfig(loader); err == nil {
		t.Fatal("loadConfig accepted an unknown log level")
	}
}
