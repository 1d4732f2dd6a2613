package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickspencer/scheduleexpr/internal/config"
	"github.com/patrickspencer/scheduleexpr/internal/store"
	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

// runSync loads schedule definition YAML files from a directory,
// validates their expressions, and upserts them into the SQLite store
// so a later "serve" picks up the same set without re-reading the
// directory. It replaces the teacher's system-crontab install/import,
// which has no counterpart once schedules are evaluated in-process
// rather than handed to the OS cron daemon.
func runSync(args []string) int {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := fs.String("config", "schedctl.yaml", "path to configuration file")
	dir := fs.String("dir", "", "directory of schedule YAML definitions (defaults to config's schedules_dir)")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	srcDir := *dir
	if srcDir == "" {
		srcDir = cfg.SchedulesDir
	}

	defs, err := config.LoadScheduleDefs(srcDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading schedules from %s: %v\n", srcDir, err)
		return 1
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating data directory %s: %v\n", cfg.DataDir, err)
		return 1
	}

	dbPath := filepath.Join(cfg.DataDir, "schedctl.db")
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening store: %v\n", err)
		return 1
	}
	defer st.Close()

	ctx := context.Background()
	synced := 0
	for _, def := range defs {
		if _, err := schedlang.ParseExpression(def.Expr); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %q: invalid expression: %v\n", def.Name, err)
			continue
		}

		if err := st.SaveSchedule(ctx, &store.PersistedSchedule{
			Name:    def.Name,
			Expr:    def.Expr,
			Enabled: def.IsEnabled(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "error saving %q: %v\n", def.Name, err)
			continue
		}
		synced++
	}

	fmt.Printf("synced %d of %d schedule(s) from %s\n", synced, len(defs), srcDir)
	return 0
}
