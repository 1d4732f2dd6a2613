package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/patrickspencer/scheduleexpr/internal/config"
	"github.com/patrickspencer/scheduleexpr/pkg/block"
	"github.com/patrickspencer/scheduleexpr/pkg/interval"
	"github.com/patrickspencer/scheduleexpr/pkg/registry"
	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

func runEval(args []string) int {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	expr := fs.String("expr", "", "schedule expression to evaluate")
	id := fs.String("id", "", "registered schedule ID to evaluate (loaded via -schedules)")
	schedulesDir := fs.String("schedules", "", "directory of schedule YAML definitions, for -id lookups and REF[] resolution")
	start := fs.Int64("start", 0, "domain start, UTC milliseconds since epoch")
	end := fs.Int64("end", 0, "domain end, UTC milliseconds since epoch")
	merge := fs.Bool("merge", false, "caller merge argument passed to Evaluate")
	cacheAfter := fs.Bool("cache-after", true, "offer the result to the registry's interval cache after evaluating")
	fs.Parse(args)

	if *expr == "" && *id == "" {
		fmt.Fprintln(os.Stderr, "error: one of -expr or -id is required")
		return 1
	}
	if *start > *end {
		fmt.Fprintln(os.Stderr, "error: -start must not be after -end")
		return 1
	}

	reg := registry.New()
	if *schedulesDir != "" {
		if err := loadRegistryFromDir(reg, *schedulesDir); err != nil {
			fmt.Fprintf(os.Stderr, "error loading schedules: %v\n", err)
			return 1
		}
	}

	domain := block.Domain{Start: *start, End: *end}

	if *expr != "" {
		b, err := schedlang.ParseExpression(*expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		result, err := b.Evaluate(domain, reg, *merge)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		printIntervals(result)
		return 0
	}

	result, err := reg.Evaluate(*id, domain, *merge, *cacheAfter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	printIntervals(result)
	return 0
}

func printIntervals(result []interval.Interval) {
	for _, iv := range result {
		fmt.Printf("%d .. %d\n", iv.Start, iv.End)
	}
}

func loadRegistryFromDir(reg *registry.Schedule, dir string) error {
	defs, err := config.LoadScheduleDefs(dir)
	if err != nil {
		return err
	}
	for _, def := range defs {
		b, err := schedlang.ParseExpression(def.Expr)
		if err != nil {
			return fmt.Errorf("%s: %w", def.Name, err)
		}
		if err := reg.Set(def.Name, def.Name, b, true); err != nil {
			return fmt.Errorf("%s: %w", def.Name, err)
		}
	}
	return nil
}
