package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScheduleDefIsEnabledDefaultsTrue(t *testing.T) {
	t.Parallel()

	def := &ScheduleDef{Name: "x"}
	if !def.IsEnabled() {
		t.Fatal("expected IsEnabled to default to true")
	}

	disabled := false
	def.Enabled = &disabled
	if def.IsEnabled() {
		t.Fatal("expected IsEnabled to respect an explicit false")
	}
}

func TestScheduleDefParseTimeout(t *testing.T) {
	t.Parallel()

	def := &ScheduleDef{}
	d, err := def.ParseTimeout()
	if err != nil || d != 0 {
		t.Fatalf("expected 0 timeout for an empty string, got %v err=%v", d, err)
	}

	def.Timeout = "30s"
	d, err = def.ParseTimeout()
	if err != nil || d != 30*time.Second {
		t.Fatalf("ParseTimeout = %v, err=%v", d, err)
	}

	def.Timeout = "not-a-duration"
	if _, err := def.ParseTimeout(); err == nil {
		t.Fatal("expected an error for an invalid duration")
	}
}

func TestSaveScheduleDefRoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "sched.yaml")
	def := &ScheduleDef{
		Name:         "business-hours",
		Expr:         "WD[1..5].T[9:00..17:00]",
		OnTransition: "echo open",
		Env:          map[string]string{"FOO": "bar"},
	}
	if err := SaveScheduleDef(path, def); err != nil {
		t.Fatalf("SaveScheduleDef: %v", err)
	}
	if def.FilePath != path {
		t.Fatalf("expected FilePath to be set to %q, got %q", path, def.FilePath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	reloaded, err := ParseScheduleDefYAML(data)
	if err != nil {
		t.Fatalf("ParseScheduleDefYAML: %v", err)
	}
	if reloaded.Name != "business-hours" || reloaded.Expr != def.Expr || reloaded.Env["FOO"] != "bar" {
		t.Fatalf("unexpected reloaded def: %+v", reloaded)
	}
}

func TestLoadScheduleDefsIgnoresNonYAMLFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("name: x\nexpr: \"WD[1]\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	defs, err := LoadScheduleDefs(dir)
	if err != nil {
		t.Fatalf("LoadScheduleDefs: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "x" {
		t.Fatalf("expected only x.yaml to be loaded, got %+v", defs)
	}
}

func TestRunLogConfigIsEnabledDefaultsTrue(t *testing.T) {
	t.Parallel()

	c := RunLogConfig{}
	if !c.IsEnabled() {
		t.Fatal("expected RunLogConfig.IsEnabled to default to true")
	}

	f := false
	c.Enabled = &f
	if c.IsEnabled() {
		t.Fatal("expected RunLogConfig.IsEnabled to respect an explicit false")
	}
}
