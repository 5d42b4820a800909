package commands

import (
	"errors"
	"flag"
	"fmt"
	"path"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
)

// ListFlags contains flags for the list command
type ListFlags struct {
	Class   string
	Name    string
	Returns string
	Format  string
	Detail  bool
	Quiet   bool
}

// MethodEntry is one listed method in structured output.
type MethodEntry struct {
	Class        string   `json:"class" yaml:"class"`
	Name         string   `json:"name" yaml:"name"`
	Descriptor   string   `json:"descriptor" yaml:"descriptor"`
	Access       []string `json:"access,omitempty" yaml:"access,omitempty"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// SetupListFlags creates and configures a FlagSet for the list command.
// Returns the FlagSet and a ListFlags struct with bound flag variables.
func SetupListFlags() (*flag.FlagSet, *ListFlags) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	flags := &ListFlags{}

	fs.StringVar(&flags.Class, "class", "", "filter by class type descriptor (glob with *)")
	fs.StringVar(&flags.Name, "name", "", "filter by method name (glob with *)")
	fs.StringVar(&flags.Returns, "returns", "", "filter by return type descriptor prefix")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, yaml")
	fs.BoolVar(&flags.Detail, "detail", false, "include instruction listings")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no headers or diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no headers or diagnostic messages")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: patchkit list [flags] <listing|->\n\n")
		Writef(output, "List the methods of a bytecode listing.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  patchkit list app.yaml\n")
		Writef(output, "  patchkit list --class 'Lcom/example/*' --returns Z app.yaml\n")
		Writef(output, "  patchkit list --detail --format yaml --name isPremium app.yaml\n")
		Writef(output, "  cat app.yaml | patchkit list -q -\n")
	}

	return fs, flags
}

// HandleList executes the list command
func HandleList(args []string) error {
	fs, flags := SetupListFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	for _, pattern := range []string{flags.Class, flags.Name} {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("list command requires exactly one listing file or '-' for stdin")
	}
	listingPath := fs.Arg(0)

	program, err := loadListing(listingPath)
	if err != nil {
		return err
	}

	entries := collectMethods(program, flags)

	if flags.Format != FormatText {
		return OutputStructured(entries, flags.Format)
	}

	if !flags.Quiet {
		OutputHeader("Bytecode Listing", listingPath, program.Len())
	}
	if len(entries) == 0 {
		renderNoResults("methods", flags.Quiet)
		return nil
	}

	if flags.Detail {
		for _, e := range entries {
			Writef(stdout, "%s\n", e.Descriptor)
			for i, insn := range e.Instructions {
				Writef(stdout, "  %4d  %s\n", i, insn)
			}
			Writef(stdout, "\n")
		}
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Class, e.Name, e.Descriptor, strings.Join(e.Access, " ")})
	}
	RenderSummaryTable(stdout, []string{"CLASS", "METHOD", "DESCRIPTOR", "ACCESS"}, rows, flags.Quiet)
	if !flags.Quiet {
		Writef(stderr, "\n%d methods\n", len(entries))
	}
	return nil
}

func loadListing(listingPath string) (*bytecode.Program, error) {
	if listingPath != StdinFilePath {
		program, err := bytecode.ParseListingFile(listingPath)
		if err != nil {
			return nil, fmt.Errorf("loading listing: %w", err)
		}
		return program, nil
	}

	data, err := readInput(listingPath)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	program, err := bytecode.ParseListing(data)
	if err != nil {
		return nil, fmt.Errorf("loading listing: %w", err)
	}
	return program, nil
}

func collectMethods(program *bytecode.Program, flags *ListFlags) []MethodEntry {
	var entries []MethodEntry
	for _, c := range program.Classes() {
		if !globMatch(flags.Class, c.Type) {
			continue
		}
		for _, m := range c.Methods {
			if !globMatch(flags.Name, m.Name) || !strings.HasPrefix(m.ReturnType, flags.Returns) {
				continue
			}
			e := MethodEntry{
				Class:      c.Type,
				Name:       m.Name,
				Descriptor: m.Descriptor(),
				Access:     m.AccessFlags.Names(),
			}
			if flags.Detail {
				for _, insn := range m.Instructions {
					e.Instructions = append(e.Instructions, insn.String())
				}
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// globMatch reports whether name matches pattern. An empty pattern matches
// everything and a pattern without metacharacters must match exactly.
func globMatch(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern == name
	}
	ok, _ := path.Match(pattern, name)
	return ok
}
