package main

import (
	"fmt"
	"os"

	"github.com/erraggy/patchkit"
	"github.com/erraggy/patchkit/cmd/patchkit/commands"
	"github.com/erraggy/patchkit/internal/cliutil"
)

// validCommands lists every top-level command, for typo suggestions.
var validCommands = []string{"list", "match", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("patchkit v%s\n", patchkit.Version())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "list":
		err = commands.HandleList(args)
	case "match":
		err = commands.HandleMatch(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			cliutil.Writef(os.Stderr, "Did you mean: %s?\n", suggestion)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		cliutil.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}

// suggestCommand returns the closest valid command within edit distance 2,
// or "" if none is close enough.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, cmd := range validCommands {
		if d := editDistance(input, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

// editDistance returns the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Printf(`patchkit - bytecode patching toolkit

Usage:
  patchkit <command> [flags] [args]

Commands:
  list       List the methods of a bytecode listing
  match      Resolve fingerprint declarations against a listing
  mcp        Start an MCP server over stdio
  version    Show version information
  help       Show this help message

Run 'patchkit <command> --help' for more information on a command.

Build: %s
`, patchkit.UserAgent())
}
