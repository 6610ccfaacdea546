package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestFileCacheDirFromConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	configured := filepath.Join(t.TempDir(), "layouts")
	cfgPath := filepath.Join(t.TempDir(), "silsilah.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndir = "+strconvQuote(configured)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &CLI{configPath: cfgPath}
	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != configured {
		t.Errorf("fileCacheDir() = %q, want %q", dir, configured)
	}
}

func TestCacheClearCommand(t *testing.T) {
	data := writeFamily(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"layout", "1", "--data", data, "-o", filepath.Join(t.TempDir(), "l.json")})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(xdg, appName))
	if len(entries) == 0 {
		t.Fatal("layout should populate the file cache")
	}

	root = c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ = os.ReadDir(filepath.Join(xdg, appName))
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}
