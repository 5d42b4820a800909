package commands

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/erraggy/patchkit/fingerprint"
)

// MatchFlags contains flags for the match command
type MatchFlags struct {
	Format    string
	NoIndex   bool
	FoundOnly bool
	Strict    bool
	Quiet     bool
}

// MatchEntry is one fingerprint resolution in structured output.
type MatchEntry struct {
	Fingerprint string                    `json:"fingerprint" yaml:"fingerprint"`
	Found       bool                      `json:"found" yaml:"found"`
	Method      string                    `json:"method,omitempty" yaml:"method,omitempty"`
	Pattern     *fingerprint.PatternMatch `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Strings     []fingerprint.StringMatch `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// SetupMatchFlags creates and configures a FlagSet for the match command.
// Returns the FlagSet and a MatchFlags struct with bound flag variables.
func SetupMatchFlags() (*flag.FlagSet, *MatchFlags) {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	flags := &MatchFlags{}

	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, yaml")
	fs.BoolVar(&flags.NoIndex, "no-index", false, "scan every method instead of using the string index")
	fs.BoolVar(&flags.FoundOnly, "found-only", false, "only report fingerprints that matched")
	fs.BoolVar(&flags.Strict, "strict", false, "exit with an error if any fingerprint does not match")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no headers or diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no headers or diagnostic messages")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: patchkit match [flags] <listing|-> <fingerprints>\n\n")
		Writef(output, "Resolve fingerprint declarations against a bytecode listing.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  patchkit match app.yaml fingerprints.yaml\n")
		Writef(output, "  patchkit match --format json --found-only app.yaml fingerprints.yaml\n")
		Writef(output, "  patchkit match --strict app.yaml fingerprints.yaml\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    Matching completed (with --strict: every fingerprint matched)\n")
		Writef(output, "  1    Invalid input, or a fingerprint did not match with --strict\n")
	}

	return fs, flags
}

// HandleMatch executes the match command
func HandleMatch(args []string) error {
	fs, flags := SetupMatchFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("match command requires a listing and a fingerprints file")
	}
	listingPath, declPath := fs.Arg(0), fs.Arg(1)
	if declPath == StdinFilePath {
		return fmt.Errorf("fingerprints cannot be read from stdin")
	}

	program, err := loadListing(listingPath)
	if err != nil {
		return err
	}
	fps, err := fingerprint.ParseDeclarationsFile(declPath)
	if err != nil {
		return fmt.Errorf("loading fingerprints: %w", err)
	}

	var opts []fingerprint.ResolverOption
	if !flags.NoIndex {
		opts = append(opts, fingerprint.WithStringIndex())
	}
	resolver := fingerprint.NewResolver(opts...)

	var (
		entries []MatchEntry
		missing []string
	)
	for i, fp := range fps {
		name := fp.Name()
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		m, ok := resolver.ResolveModel(fp, program)
		if !ok {
			missing = append(missing, name)
			if flags.FoundOnly {
				continue
			}
			entries = append(entries, MatchEntry{Fingerprint: name})
			continue
		}
		entries = append(entries, MatchEntry{
			Fingerprint: name,
			Found:       true,
			Method:      m.Descriptor(),
			Pattern:     m.PatternMatch,
			Strings:     m.StringMatches,
		})
	}

	if flags.Format != FormatText {
		if err := OutputStructured(entries, flags.Format); err != nil {
			return err
		}
	} else {
		renderMatches(entries, listingPath, program.Len(), flags.Quiet)
	}

	if flags.Strict && len(missing) > 0 {
		return fmt.Errorf("%d of %d fingerprints did not match: %v", len(missing), len(fps), missing)
	}
	return nil
}

func renderMatches(entries []MatchEntry, listingPath string, classes int, quiet bool) {
	if !quiet {
		OutputHeader("Fingerprint Matches", listingPath, classes)
	}
	if len(entries) == 0 {
		renderNoResults("fingerprints", quiet)
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		method := "-"
		if e.Found {
			method = e.Method
		}
		rows = append(rows, []string{e.Fingerprint, strconv.FormatBool(e.Found), method})
	}
	RenderSummaryTable(stdout, []string{"FINGERPRINT", "FOUND", "METHOD"}, rows, quiet)

	if quiet {
		return
	}
	for _, e := range entries {
		if e.Pattern == nil {
			continue
		}
		for _, w := range e.Pattern.Warnings {
			Writef(stderr, "Warning: %s: %s\n", e.Fingerprint, w)
		}
	}
}
