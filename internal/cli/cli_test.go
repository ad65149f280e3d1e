package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/masonworks/cardgrid/internal/config"
	"github.com/masonworks/cardgrid/pkg/cache"
)

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	want := map[string]bool{
		"fetch":      false,
		"render":     false,
		"serve":      false,
		"browse":     false,
		"cache":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandName(t *testing.T) {
	root := testCLI().RootCommand()
	if root.Name() != "cardgrid" {
		t.Errorf("root command name = %q, want %q", root.Name(), "cardgrid")
	}
}

func TestVersionFlag(t *testing.T) {
	root := testCLI().RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(--version) error: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("cardgrid version")) {
		t.Errorf("version output = %q, should name the binary", out.String())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep a real ~/.config/cardgrid out of the test
	c := testCLI()

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() with no file error: %v", err)
	}
	if cfg.Content.PerPage != 12 {
		t.Errorf("default per_page = %d, want 12", cfg.Content.PerPage)
	}
	if cfg.Server.Addr != ":8384" {
		t.Errorf("default addr = %q, want \":8384\"", cfg.Server.Addr)
	}
}

func TestLoadConfigExplicitPathMustExist(t *testing.T) {
	c := testCLI()
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")

	if _, err := c.loadConfig(); err == nil {
		t.Error("loadConfig() with a missing explicit path should fail")
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	c := testCLI()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[layout]\nmode = \"pile\"\nwidth = 720.0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c.configPath = path

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Layout.Mode != "pile" {
		t.Errorf("layout.mode = %q, want \"pile\"", cfg.Layout.Mode)
	}
	if cfg.Layout.Width != 720 {
		t.Errorf("layout.width = %v, want 720", cfg.Layout.Width)
	}
	if cfg.Content.PerPage != 12 {
		t.Errorf("defaults should fill unset keys, per_page = %d", cfg.Content.PerPage)
	}
}

func defaultCacheConfig(t *testing.T) config.CacheConfig {
	t.Helper()
	return config.CacheConfig{Backend: "file", Dir: t.TempDir()}
}

func assertNullBehavior(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("null Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("null cache should never hit")
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := t.Context()

	c, err := newCache(ctx, defaultCacheConfig(t), true)
	if err != nil {
		t.Fatalf("newCache(noCache) error: %v", err)
	}
	assertNullBehavior(t, c)

	cfg := defaultCacheConfig(t)
	cfg.Backend = "none"
	c, err = newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache(none) error: %v", err)
	}
	assertNullBehavior(t, c)

	cfg = defaultCacheConfig(t)
	cfg.Backend = "memory"
	mem, err := newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache(memory) error: %v", err)
	}
	if err := mem.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("memory Set error: %v", err)
	}
	if data, hit, _ := mem.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Error("memory cache should round-trip a value")
	}

	cfg = defaultCacheConfig(t)
	cfg.Backend = "file"
	fc, err := newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache(file) error: %v", err)
	}
	if err := fc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("file Set error: %v", err)
	}
	if data, hit, _ := fc.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Error("file cache should round-trip a value")
	}
}
