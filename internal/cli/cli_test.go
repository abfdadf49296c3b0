package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/cache"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "flowsmith" {
		t.Errorf("root.Use = %q, want %q", root.Use, "flowsmith")
	}

	want := []string{"convert", "validate", "analyze", "converters", "cache", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestRootCommandHelp(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if !strings.Contains(buf.String(), "convert") {
		t.Error("help output should mention the convert command")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)
	if c.Logger.GetLevel() != LogDebug {
		t.Errorf("log level = %v, want %v", c.Logger.GetLevel(), LogDebug)
	}
}

func TestNewRunnerCacheScope(t *testing.T) {
	c := New(io.Discard, LogInfo)

	t.Setenv(envCacheScope, "ws123")
	r, err := c.newRunner(true)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close()

	key := r.Keyer.GraphKey("hash", cache.GraphKeyOpts{})
	if !strings.HasPrefix(key, "ws123:") {
		t.Errorf("scoped key = %q, want ws123: prefix", key)
	}

	t.Setenv(envCacheScope, "")
	r2, err := c.newRunner(true)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r2.Close()
	if key := r2.Keyer.GraphKey("hash", cache.GraphKeyOpts{}); strings.HasPrefix(key, "ws123:") {
		t.Errorf("unscoped key = %q, want no scope prefix", key)
	}
}

func TestRegistryInfos(t *testing.T) {
	infos, err := registryInfos()
	if err != nil {
		t.Fatalf("registryInfos() error: %v", err)
	}
	if len(infos) == 0 {
		t.Fatal("registryInfos() returned no converters")
	}

	seen := make(map[string]bool)
	for _, info := range infos {
		if seen[info.Type] {
			t.Errorf("duplicate primary type %q", info.Type)
		}
		seen[info.Type] = true
		if len(info.PyDeps) == 0 && len(info.TSDeps) == 0 {
			t.Errorf("converter %q declares no dependencies for either language", info.Type)
		}
	}
	if !seen["chatOpenAI"] {
		t.Error("registryInfos() should include chatOpenAI")
	}
}

func TestLanguageOrDefault(t *testing.T) {
	if got := languageOrDefault(""); got != "python" {
		t.Errorf("languageOrDefault(\"\") = %q, want %q", got, "python")
	}
	if got := languageOrDefault("typescript"); got != "typescript" {
		t.Errorf("languageOrDefault(typescript) = %q", got)
	}
}
