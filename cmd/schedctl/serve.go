package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/patrickspencer/scheduleexpr/internal/config"
	"github.com/patrickspencer/scheduleexpr/internal/realtime"
	"github.com/patrickspencer/scheduleexpr/internal/runlog"
	"github.com/patrickspencer/scheduleexpr/internal/runner"
	"github.com/patrickspencer/scheduleexpr/internal/store"
	"github.com/patrickspencer/scheduleexpr/internal/watch"
	"github.com/patrickspencer/scheduleexpr/internal/web"
	"github.com/patrickspencer/scheduleexpr/internal/web/api"
	"github.com/patrickspencer/scheduleexpr/pkg/registry"
	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "schedctl.yaml", "path to configuration file")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory %s: %v", cfg.DataDir, err)
	}
	if err := os.MkdirAll(cfg.SchedulesDir, 0755); err != nil {
		log.Fatalf("failed to create schedules directory %s: %v", cfg.SchedulesDir, err)
	}

	dbPath := filepath.Join(cfg.DataDir, "schedctl.db")
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()
	log.Printf("store opened at %s", dbPath)

	defs, err := config.LoadScheduleDefs(cfg.SchedulesDir)
	if err != nil {
		log.Fatalf("failed to load schedules from %s: %v", cfg.SchedulesDir, err)
	}
	log.Printf("loaded %d schedule(s)", len(defs))

	horizon, err := time.ParseDuration(cfg.LookaheadHorizon)
	if err != nil {
		log.Fatalf("invalid lookahead_horizon %q: %v", cfg.LookaheadHorizon, err)
	}

	reg := registry.New()
	defsByID := make(map[string]*config.ScheduleDef, len(defs))
	for _, def := range defs {
		b, err := schedlang.ParseExpression(def.Expr)
		if err != nil {
			log.Printf("ERROR: invalid expression for schedule %q (%s), skipping: %v", def.Name, def.Expr, err)
			continue
		}
		if err := reg.Set(def.Name, def.Name, b, true); err != nil {
			log.Printf("ERROR: failed to register schedule %q, skipping: %v", def.Name, err)
			continue
		}
		defsByID[def.Name] = def

		persisted := &store.PersistedSchedule{Name: def.Name, Expr: def.Expr, Enabled: def.IsEnabled()}
		if err := st.SaveSchedule(context.Background(), persisted); err != nil {
			log.Printf("WARN: failed to persist schedule %q: %v", def.Name, err)
		}
	}

	events := realtime.NewBroker()
	runLogManager := runlog.NewManager(cfg.RunLogs.Dir, cfg.RunLogs.MaxBytesPerStream, cfg.RunLogs.RetentionDays)

	if cfg.RunLogs.IsEnabled() {
		if err := os.MkdirAll(runLogManager.BaseDir(), 0755); err != nil {
			log.Fatalf("failed to create run logs directory %s: %v", runLogManager.BaseDir(), err)
		}
		if err := runLogManager.Cleanup(); err != nil {
			log.Printf("WARN: run log cleanup failed: %v", err)
		}
		log.Printf("run log storage enabled: dir=%s max_bytes_per_stream=%d retention_days=%d",
			runLogManager.BaseDir(), cfg.RunLogs.MaxBytesPerStream, cfg.RunLogs.RetentionDays)
	} else {
		log.Printf("run log storage disabled")
	}

	r := runner.NewRunner()

	runAction := func(name string, state watch.State, at time.Time) {
		events.Publish(realtime.Event{
			Type:         "schedule.transition",
			ScheduleName: name,
			State:        state.String(),
			At:           at,
		})
		log.Printf("schedule %q transitioned to %s at %s", name, state, at.Format(time.RFC3339))

		if state != watch.On {
			return
		}
		def, ok := defsByID[name]
		if !ok || def.OnTransition == "" {
			return
		}

		timeout, err := def.ParseTimeout()
		if err != nil {
			log.Printf("ERROR: invalid timeout for schedule %q: %v", name, err)
			return
		}

		runID := store.NewRunID()
		actionCtx := runner.ActionContext{ScheduleName: name, Trigger: "transition", Env: def.Env}

		var runOpts runner.RunOptions
		var fileWriters *runlog.RunWriters
		if cfg.RunLogs.IsEnabled() {
			writers, err := runLogManager.OpenRunWriters(name, runID)
			if err != nil {
				log.Printf("WARN: failed to open persistent log files for run %s: %v", runID, err)
			} else {
				fileWriters = writers
				runOpts.ExtraStdout = fileWriters.Stdout
				runOpts.ExtraStderr = fileWriters.Stderr
			}
		}
		runOpts.WorkDir = def.WorkingDir

		result := r.Run(context.Background(), def.OnTransition, actionCtx, timeout, &runOpts)
		if fileWriters != nil {
			if closeErr := fileWriters.Close(); closeErr != nil {
				log.Printf("WARN: failed to close log writers for run %s: %v", runID, closeErr)
			}
		}

		status := "success"
		if result.ExitCode != 0 || result.Error != "" {
			status = "failure"
		}
		events.Publish(realtime.Event{
			Type:         "action.completed",
			ScheduleName: name,
			RunID:        runID,
			Status:       status,
			At:           time.Now().UTC(),
		})
		log.Printf("on_transition action for %q completed: status=%s duration=%dms", name, status, result.DurationMs)
	}

	watcher := watch.NewWatcher(runAction)
	for _, id := range reg.IDs() {
		def := defsByID[id]
		if def == nil || !def.IsEnabled() {
			continue
		}
		b, _ := reg.Get(id)
		if err := watcher.Watch(id, b, reg, horizon); err != nil {
			log.Printf("ERROR: failed to watch schedule %q: %v", id, err)
		}
	}
	watcher.Start()

	getConfig := func() *config.Config {
		cp := *cfg
		return &cp
	}
	listSchedules := func() []api.ScheduleInfo {
		ids := reg.IDs()
		out := make([]api.ScheduleInfo, 0, len(ids))
		for _, id := range ids {
			_, name, ok := reg.GetEntry(id)
			if !ok {
				continue
			}
			out = append(out, api.ScheduleInfo{Name: name, Expr: defsByID[id].Expr})
		}
		return out
	}

	srv := web.NewServer(cfg.Listen, reg, events, watcher, getConfig, listSchedules)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	log.Printf("schedctl started, listening on %s", cfg.Listen)

	<-sigCh
	log.Println("shutting down...")

	watcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: http server shutdown error: %v", err)
	}

	log.Println("schedctl stopped")
	return 0
}
