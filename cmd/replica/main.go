// Command replica runs the cloning scenario suite.
//
// Usage:
//
//	replica [-run list] [-config file] [-dump] [-v]
//	replica -i
//
// Without -i every selected scenario runs in order and "Done." is printed
// when all pass. With -i scenario indexes or names are read line by line;
// an empty line exits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"
	"github.com/zoobzio/replica/internal/scenario"
)

const prompt = "scenario> "

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("replica", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		runList     = fs.String("run", "", "comma-separated scenario indexes or names")
		interactive = fs.Bool("i", false, "read scenario indexes from the terminal")
		configPath  = fs.String("config", "", "YAML config file")
		dump        = fs.Bool("dump", false, "print every source and clone")
		verbose     = fs.Bool("v", false, "print performance timings")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := scenario.DefaultConfig()
	if *configPath != "" {
		loaded, err := scenario.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		cfg = loaded
	}
	if *runList != "" {
		cfg.Scenarios = splitList(*runList)
	}

	suite := cfg.Suite()
	if *dump {
		suite.Observe = dumper(stdout)
	}
	if *verbose {
		suite.Measured = func(title string, elapsed time.Duration) {
			fmt.Fprintf(stdout, "%s: %.3fms\n", title, float64(elapsed)/float64(time.Millisecond))
		}
	}

	if *interactive {
		return repl(suite, stdout, stderr)
	}

	selected, err := scenario.Select(cfg.Scenarios)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return runSelected(suite, selected, stdout, stderr)
}

func runSelected(suite *scenario.Suite, selected []scenario.Scenario, stdout, stderr io.Writer) int {
	code := 0
	for _, sc := range selected {
		if err := suite.Run(sc); err != nil {
			fmt.Fprintf(stdout, "Failed on %s.\n", sc.Name)
			fmt.Fprintln(stderr, err)
			code = 1
		}
	}
	if code == 0 {
		fmt.Fprintln(stdout, "Done.")
	}
	return code
}

func repl(suite *scenario.Suite, stdout, stderr io.Writer) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return 0
		}
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0
		}
		ln.AppendHistory(line)

		sc, err := scenario.Find(line)
		if err != nil {
			fmt.Fprintln(stderr, err)
			continue
		}
		if err := suite.Run(sc); err != nil {
			fmt.Fprintf(stdout, "Failed on %s.\n", sc.Name)
			continue
		}
		fmt.Fprintf(stdout, "%s ok\n", sc.Name)
	}
}

// dumper prints source and clone graphs. spew follows pointers and marks
// cycles, so shared references stay visible.
func dumper(w io.Writer) func(name string, source, clone any) {
	cs := spew.ConfigState{
		Indent:   "  ",
		MaxDepth: 8,
		SortKeys: true,
	}
	return func(name string, source, clone any) {
		fmt.Fprintf(w, "== %s source\n", name)
		cs.Fdump(w, source)
		fmt.Fprintf(w, "== %s clone\n", name)
		cs.Fdump(w, clone)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
