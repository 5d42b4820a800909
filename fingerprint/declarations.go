package fingerprint

import (
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/patcherrors"
	"go.yaml.in/yaml/v4"
)

// Declarations is a YAML/JSON document of fingerprint declarations.
//
// Example:
//
//	fingerprints:
//	  - name: premium-check
//	    returns: Z
//	    access: [public, static]
//	    parameters: [Ljava/lang/String;]
//	    strings: [premium]
//	    opcodes: [const-string, "*", move-result, return]
//	    fuzzy: 1
type Declarations struct {
	Fingerprints []Declaration `yaml:"fingerprints" json:"fingerprints"`
}

// Declaration is the document form of one Fingerprint.
// Omitted fields are not checked. An explicit empty parameters list requires
// a method without parameters.
type Declaration struct {
	Name       string    `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"Fingerprint name used in reports"`
	Returns    string    `yaml:"returns,omitempty" json:"returns,omitempty" jsonschema:"Return type descriptor prefix (e.g. Z or Ljava/lang/String;)"`
	Access     []string  `yaml:"access,omitempty" json:"access,omitempty" jsonschema:"Exact access flags (e.g. public static)"`
	Parameters *[]string `yaml:"parameters,omitempty" json:"parameters,omitempty" jsonschema:"Exact parameter type descriptors in order"`
	Strings    []string  `yaml:"strings,omitempty" json:"strings,omitempty" jsonschema:"String constants the method must reference"`
	Opcodes    []string  `yaml:"opcodes,omitempty" json:"opcodes,omitempty" jsonschema:"Opcode mnemonics in order; * matches any opcode"`
	Fuzzy      int       `yaml:"fuzzy,omitempty" json:"fuzzy,omitempty" jsonschema:"Number of tolerated opcode mismatches"`
}

// Fingerprint builds a Fingerprint from the declaration.
func (d Declaration) Fingerprint() (*Fingerprint, error) {
	opts := []Option{WithName(d.Name), WithFuzzyThreshold(d.Fuzzy)}

	if d.Returns != "" {
		opts = append(opts, WithReturnType(d.Returns))
	}
	if len(d.Access) > 0 {
		flags, err := bytecode.ParseAccessFlags(d.Access...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAccessFlags(flags))
	}
	if d.Parameters != nil {
		opts = append(opts, WithParameters(*d.Parameters...))
	}
	if len(d.Strings) > 0 {
		opts = append(opts, WithStrings(d.Strings...))
	}
	if len(d.Opcodes) > 0 {
		ops := make([]bytecode.Opcode, len(d.Opcodes))
		for i, name := range d.Opcodes {
			op, err := bytecode.ParseOpcode(name)
			if err != nil {
				return nil, fmt.Errorf("opcodes[%d]: %w", i, err)
			}
			ops[i] = op
		}
		opts = append(opts, WithOpcodes(ops...))
	}

	return New(opts...)
}

// ParseDeclarations parses fingerprint declarations from YAML or JSON bytes.
// Names must be unique when present.
func ParseDeclarations(data []byte) ([]*Fingerprint, error) {
	var doc Declarations

	// yaml.Unmarshal handles both YAML and JSON
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &patcherrors.ParseError{Message: "invalid fingerprint declarations", Cause: err}
	}

	return doc.Build()
}

// ParseDeclarationsFile parses fingerprint declarations from a file path.
func ParseDeclarationsFile(path string) ([]*Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}

	fps, err := ParseDeclarations(data)
	if err != nil {
		var pe *patcherrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}
	return fps, nil
}

// Build creates a Fingerprint for every declaration in document order.
func (doc *Declarations) Build() ([]*Fingerprint, error) {
	seen := make(map[string]bool, len(doc.Fingerprints))
	fps := make([]*Fingerprint, 0, len(doc.Fingerprints))
	for i, d := range doc.Fingerprints {
		loc := fmt.Sprintf("fingerprints[%d]", i)
		if d.Name != "" {
			if seen[d.Name] {
				return nil, &patcherrors.ParseError{Message: fmt.Sprintf("%s: duplicate name %q", loc, d.Name)}
			}
			seen[d.Name] = true
		}
		fp, err := d.Fingerprint()
		if err != nil {
			return nil, &patcherrors.ParseError{Message: loc, Cause: err}
		}
		fps = append(fps, fp)
	}
	return fps, nil
}
