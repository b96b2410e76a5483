package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/gpiosample/internal/logging"
)

type reloadConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadReloadConfig(path string) (reloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reloadConfig{}, err
	}
	var cfg reloadConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func startWatcher(t *testing.T, path string, opts ...WatcherOption[reloadConfig]) *Watcher[reloadConfig] {
	t.Helper()
	w := NewConfigWatcher(path, loadReloadConfig, logging.GetLogger("config"), opts...)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	})
	return w
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := writeConfig(t, "name = \"initial\"\nvalue = 1\n")

	received := make(chan reloadConfig, 4)
	w := startWatcher(t, path, WithDebounce[reloadConfig](20*time.Millisecond))
	w.OnReload(func(cfg reloadConfig) { received <- cfg })

	write(t, path, "name = \"updated\"\nvalue = 42\n")

	select {
	case cfg := <-received:
		if cfg.Name != "updated" || cfg.Value != 42 {
			t.Errorf("got %+v, want name=updated value=42", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestConfigWatcher_FollowsReplacedFile(t *testing.T) {
	path := writeConfig(t, "value = 1\n")

	received := make(chan reloadConfig, 4)
	w := startWatcher(t, path, WithDebounce[reloadConfig](20*time.Millisecond))
	w.OnReload(func(cfg reloadConfig) { received <- cfg })

	// Editors commonly save by writing a sibling and renaming it over.
	tmp := filepath.Join(filepath.Dir(path), ".config.toml.swp")
	write(t, tmp, "value = 7\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-received:
		if cfg.Value != 7 {
			t.Errorf("Value = %d, want 7", cfg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresSiblings(t *testing.T) {
	path := writeConfig(t, "value = 1\n")

	var loads atomic.Int32
	loader := func(p string) (reloadConfig, error) {
		loads.Add(1)
		return loadReloadConfig(p)
	}
	w := NewConfigWatcher(path, loader, nil, WithDebounce[reloadConfig](10*time.Millisecond))
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	write(t, filepath.Join(filepath.Dir(path), "other.toml"), "value = 2\n")
	time.Sleep(200 * time.Millisecond)

	if got := loads.Load(); got != 0 {
		t.Errorf("loader ran %d times for an unrelated file", got)
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := writeConfig(t, "value = 0\n")
	clock := clockwork.NewFakeClock()

	var reloads atomic.Int32
	w := startWatcher(t, path,
		WithDebounce[reloadConfig](time.Second),
		WithClock[reloadConfig](clock))
	w.OnReload(func(reloadConfig) { reloads.Add(1) })

	for range 5 {
		write(t, path, "value = 1\n")
	}

	clock.BlockUntil(1)
	time.Sleep(100 * time.Millisecond)
	clock.Advance(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want a burst of writes to coalesce into 1", got)
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := writeConfig(t, "value = 1\n")

	var first, second atomic.Int32
	done := make(chan struct{}, 4)
	w := startWatcher(t, path, WithDebounce[reloadConfig](20*time.Millisecond))
	unsubscribe := w.OnReload(func(reloadConfig) { first.Add(1) })
	w.OnReload(func(reloadConfig) {
		second.Add(1)
		done <- struct{}{}
	})
	unsubscribe()

	write(t, path, "value = 2\n")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
	if first.Load() != 0 {
		t.Error("unsubscribed handler was called")
	}
	if second.Load() == 0 {
		t.Error("remaining handler was not called")
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := writeConfig(t, "value = 1\n")

	errs := make(chan error, 4)
	var reloads atomic.Int32
	w := startWatcher(t, path,
		WithDebounce[reloadConfig](20*time.Millisecond),
		WithErrorHandler[reloadConfig](func(err error) { errs <- err }))
	w.OnReload(func(reloadConfig) { reloads.Add(1) })

	write(t, path, "value = [broken\n")

	select {
	case err := <-errs:
		var decodeErr *toml.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("error = %v, want a TOML decode error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for load error")
	}
	if reloads.Load() != 0 {
		t.Error("handlers must not run when loading fails")
	}
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w := NewConfigWatcher(writeConfig(t, "value = 1\n"), loadReloadConfig, nil)

	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop = %v", err)
	}
}

func TestConfigWatcher_StartMissingDirectory(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "nope", "config.toml"), loadReloadConfig, nil)
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("Start should fail when the directory does not exist")
	}
}
