// Command schedctl is the CLI front end for the schedule-expression
// engine: it parses and evaluates expressions directly, and can run a
// daemon that watches registered schedules and serves the HTTP API.
// Adapted from the teacher's cmd/cronbat entry point.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		os.Exit(runParse(os.Args[2:]))
	case "eval":
		os.Exit(runEval(os.Args[2:]))
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "sync":
		os.Exit(runSync(os.Args[2:]))
	case "watchdog":
		os.Exit(runWatchdog(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: schedctl <command> [flags]

commands:
  parse     parse a schedule expression and print its round-tripped form
  eval      evaluate an expression or registered schedule over a range
  serve     run the HTTP API, web UI, and transition watcher
  sync      load schedule definitions from a directory into the store
  watchdog  poll the HTTP API's health endpoint, optionally restarting it`)
}
