package bytecode

import (
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/patchkit/internal/fileutil"
	"github.com/erraggy/patchkit/patcherrors"
	"go.yaml.in/yaml/v4"
)

// Listing is the YAML/JSON document form of a program.
//
// Example:
//
//	classes:
//	  - type: Lcom/example/Main;
//	    super: Ljava/lang/Object;
//	    access: [public]
//	    methods:
//	      - name: isPremium
//	        returns: Z
//	        access: [public, static]
//	        instructions:
//	          - const-string v0, "premium"
//	          - const/4 v1, 0
//	          - return v1
type Listing struct {
	Classes []ClassListing `yaml:"classes" json:"classes"`
}

// ClassListing is the document form of a Class.
type ClassListing struct {
	Type    string          `yaml:"type" json:"type"`
	Super   string          `yaml:"super,omitempty" json:"super,omitempty"`
	Access  []string        `yaml:"access,omitempty" json:"access,omitempty"`
	Methods []MethodListing `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// MethodListing is the document form of a Method.
type MethodListing struct {
	Name         string   `yaml:"name" json:"name"`
	Returns      string   `yaml:"returns" json:"returns"`
	Parameters   []string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Access       []string `yaml:"access,omitempty" json:"access,omitempty"`
	Instructions []string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
}

// ParseListing parses a program listing from YAML or JSON bytes.
func ParseListing(data []byte) (*Program, error) {
	var l Listing

	// yaml.Unmarshal handles both YAML and JSON
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, &patcherrors.ParseError{Message: "invalid listing", Cause: err}
	}

	return l.Program()
}

// ParseListingFile parses a program listing from a file path.
func ParseListingFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}

	p, err := ParseListing(data)
	if err != nil {
		var pe *patcherrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}

	return p, nil
}

// Program decodes the listing into a Program.
func (l *Listing) Program() (*Program, error) {
	classes := make([]*Class, 0, len(l.Classes))
	for ci, cl := range l.Classes {
		loc := fmt.Sprintf("classes[%d]", ci)
		flags, err := ParseAccessFlags(cl.Access...)
		if err != nil {
			return nil, &patcherrors.ParseError{Message: loc + ".access", Cause: err}
		}
		c := &Class{Type: cl.Type, SuperClass: cl.Super, AccessFlags: flags}

		for mi, ml := range cl.Methods {
			mloc := fmt.Sprintf("%s.methods[%d]", loc, mi)
			m, err := ml.method()
			if err != nil {
				return nil, &patcherrors.ParseError{Message: mloc, Cause: err}
			}
			c.AddMethod(m)
		}
		classes = append(classes, c)
	}

	p, err := NewProgram(classes...)
	if err != nil {
		return nil, &patcherrors.ParseError{Message: "invalid program", Cause: err}
	}
	return p, nil
}

func (ml MethodListing) method() (*Method, error) {
	if ml.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	flags, err := ParseAccessFlags(ml.Access...)
	if err != nil {
		return nil, err
	}
	m := &Method{
		Name:        ml.Name,
		ReturnType:  ml.Returns,
		Parameters:  ml.Parameters,
		AccessFlags: flags,
	}
	if m.ReturnType == "" {
		m.ReturnType = "V"
	}
	for i, text := range ml.Instructions {
		insn, err := ParseInstruction(text)
		if err != nil {
			return nil, fmt.Errorf("instructions[%d]: %w", i, err)
		}
		m.Instructions = append(m.Instructions, insn)
	}
	return m, nil
}

// NewListing encodes a model as a Listing, in enumeration order.
func NewListing(model Model) *Listing {
	l := &Listing{}
	for _, c := range model.Classes() {
		cl := ClassListing{
			Type:   c.Type,
			Super:  c.SuperClass,
			Access: c.AccessFlags.Names(),
		}
		for _, m := range c.Methods {
			ml := MethodListing{
				Name:       m.Name,
				Returns:    m.ReturnType,
				Parameters: m.Parameters,
				Access:     m.AccessFlags.Names(),
			}
			for _, insn := range m.Instructions {
				ml.Instructions = append(ml.Instructions, insn.String())
			}
			cl.Methods = append(cl.Methods, ml)
		}
		l.Classes = append(l.Classes, cl)
	}
	return l
}

// MarshalListing serializes a model to listing YAML bytes.
func MarshalListing(model Model) ([]byte, error) {
	data, err := yaml.Marshal(NewListing(model))
	if err != nil {
		return nil, fmt.Errorf("bytecode: failed to marshal listing: %w", err)
	}
	return data, nil
}

// WriteListingFile serializes a model to a listing file at path, readable
// and writable by the owner only.
func WriteListingFile(path string, model Model) error {
	data, err := MarshalListing(model)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("bytecode: failed to write listing: %w", err)
	}
	return nil
}
