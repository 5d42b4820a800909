// Package commands provides CLI command handlers for patchkit.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/patchkit"
	"github.com/erraggy/patchkit/internal/cliutil"
	"go.yaml.in/yaml/v4"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// stdout and stderr are the command output streams. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured outputs data in the specified format (json or yaml) to stdout.
// Returns an error if marshaling fails.
func OutputStructured(data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(stdout, "%s\n", bytes)
	return nil
}

// readInput reads a file, or stdin when path is StdinFilePath.
func readInput(path string) ([]byte, error) {
	if path == StdinFilePath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// FormatInputPath returns a display-friendly path for an input file.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// Writef writes formatted output to the writer.
func Writef(w io.Writer, format string, args ...any) {
	cliutil.Writef(w, format, args...)
}

// OutputHeader outputs the common diagnostic header to stderr.
func OutputHeader(title, listingPath string, classes int) {
	Writef(stderr, "%s\n", title)
	Writef(stderr, "patchkit version: %s\n", patchkit.Version())
	Writef(stderr, "Listing: %s\n", FormatInputPath(listingPath))
	Writef(stderr, "Classes: %d\n\n", classes)
}
