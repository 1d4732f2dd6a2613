package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/patrickspencer/scheduleexpr/pkg/schedlang"
)

func runParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: schedctl parse <expression>")
		return 1
	}

	b, err := schedlang.ParseExpression(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("tree: %s\n", b.String())
	fmt.Printf("hash: %x\n", b.Hash())
	return 0
}
