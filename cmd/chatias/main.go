package main

import (
	"fmt"
	"os"

	"github.com/Billhebert/chatIAS-sub004/sequence"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		runValidate(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runValidate(args []string) {
	seqs := load(args, "validate")
	for _, seq := range seqs {
		fmt.Printf("ok: %s (%d steps)\n", seq.ID, len(seq.Steps))
	}
	fmt.Printf("%d sequence(s) valid\n", len(seqs))
}

func runList(args []string) {
	seqs := load(args, "list")
	for _, seq := range seqs {
		name := seq.Name
		if name == "" {
			name = "-"
		}
		extras := ""
		if seq.ErrorHandling.Retry.Enabled {
			extras += " retry"
		}
		if seq.CircuitBreaker != nil && seq.CircuitBreaker.Enabled {
			extras += " breaker"
		}
		fmt.Printf("%-24s %-32s steps=%d%s\n", seq.ID, name, len(seq.Steps), extras)
	}
}

// load reads sequence definitions from the path argument, which may be a
// single YAML file or a directory.
func load(args []string, cmd string) []*sequence.ToolSequence {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: chatias %s <file-or-dir>\n", cmd)
		os.Exit(1)
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatias %s: %v\n", cmd, err)
		os.Exit(1)
	}

	var seqs []*sequence.ToolSequence
	if info.IsDir() {
		seqs, err = sequence.LoadDir(path)
	} else {
		seqs, err = sequence.LoadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatias %s: %v\n", cmd, err)
		os.Exit(1)
	}
	if len(seqs) == 0 {
		fmt.Fprintf(os.Stderr, "chatias %s: no sequences found in %s\n", cmd, path)
		os.Exit(1)
	}
	return seqs
}

func printVersion() {
	fmt.Printf("chatias %s (build %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func printUsage() {
	fmt.Println(`chatias - tool sequence definition utility

Usage:
  chatias validate <file-or-dir>   Validate sequence definitions
  chatias list <file-or-dir>       List sequence definitions
  chatias version                  Print version information
  chatias help                     Show this help`)
}
