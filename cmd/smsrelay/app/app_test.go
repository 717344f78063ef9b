package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/agentstation/smsrelay/internal/config"
)

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
}

func TestApp_Config_FromFile(t *testing.T) {
	t.Setenv("TRANSLATION_PROVIDER", "")
	t.Setenv("PORT", "")
	dir := t.TempDir()
	file := filepath.Join(dir, "relay.yaml")
	if err := os.WriteFile(file, []byte("translation_provider: none\nport: 4100\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	app.options.ConfigFile = file

	cfg, err := app.Config()
	if err != nil {
		t.Fatalf("Config() failed: %v", err)
	}
	if cfg.Port != 4100 {
		t.Errorf("Port = %d, want 4100", cfg.Port)
	}
	if cfg.ConfigFile != file {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, file)
	}

	again, _ := app.Config()
	if again != cfg {
		t.Error("Config() should return the cached instance")
	}
}

func TestApp_OpenPhone_RequiresKey(t *testing.T) {
	app, err := New("dev", "", "", "", WithConfig(&config.Config{}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := app.OpenPhone(); err == nil {
		t.Error("OpenPhone() should fail without OPENPHONE_API_KEY")
	}
}

// TestApp_OpenPhone_Singleton verifies concurrent callers share one client.
func TestApp_OpenPhone_Singleton(t *testing.T) {
	app, err := New("dev", "", "", "", WithConfig(&config.Config{
		OpenPhoneURL:    config.DefaultOpenPhoneURL,
		OpenPhoneAPIKey: "key",
	}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	clients := make([]any, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := app.OpenPhone()
			if err != nil {
				t.Errorf("OpenPhone() failed: %v", err)
				return
			}
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if clients[i] != clients[0] {
			t.Fatal("OpenPhone() returned different instances")
		}
	}
}

func TestApp_Translator_None(t *testing.T) {
	app, err := New("dev", "", "", "", WithConfig(&config.Config{TranslationProvider: config.ProviderNone}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	router, err := app.Translator(context.Background())
	if err != nil {
		t.Fatalf("Translator() failed: %v", err)
	}
	if router.Provider() != "none" {
		t.Errorf("Provider() = %q, want none", router.Provider())
	}
}

func TestRootCommand_Version(t *testing.T) {
	app, err := New("1.2.3", "abc", "today", "make")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "smsrelay version 1.2.3") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	root := app.createRootCommand()

	for _, name := range []string{"serve", "report", "translate", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_FlagsReachOptions(t *testing.T) {
	app, err := New("dev", "", "", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	root := app.createRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"-o", "yaml", "--log-level", "error", "version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %q, want yaml", app.OutputFormat())
	}
	if app.Logger().GetLevel().String() != "error" {
		t.Errorf("logger level = %s, want error", app.Logger().GetLevel())
	}
}
