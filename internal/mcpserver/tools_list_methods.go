package mcpserver

import (
	"context"
	"slices"
	"strings"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listMethodsInput struct {
	Listing listingInput `json:"listing"                jsonschema:"The bytecode listing to inspect"`
	Class   string       `json:"class,omitempty"        jsonschema:"Filter by class type descriptor (glob; * does not cross /)"`
	Name    string       `json:"name,omitempty"         jsonschema:"Filter by method name (glob)"`
	Returns string       `json:"returns,omitempty"      jsonschema:"Filter by return type descriptor prefix"`
	String  string       `json:"string,omitempty"       jsonschema:"Filter to methods referencing this exact string constant"`
	Detail  bool         `json:"detail,omitempty"       jsonschema:"Include instruction listings in the output"`
	GroupBy string       `json:"group_by,omitempty"     jsonschema:"Group results and return counts instead of individual items. Values: class\\, returns"`
	Offset  int          `json:"offset,omitempty"       jsonschema:"Skip the first N results (for pagination)"`
	Limit   int          `json:"limit,omitempty"        jsonschema:"Maximum number of results to return (default 100)"`
}

type methodSummary struct {
	Class        string   `json:"class"`
	Name         string   `json:"name"`
	Index        int      `json:"index"`
	Descriptor   string   `json:"descriptor"`
	Access       []string `json:"access,omitempty"`
	Instructions int      `json:"instruction_count"`
	Strings      []string `json:"strings,omitempty"`
	Listing      []string `json:"listing,omitempty"`
}

type listMethodsOutput struct {
	Total    int             `json:"total"`
	Matched  int             `json:"matched"`
	Returned int             `json:"returned"`
	Methods  []methodSummary `json:"methods,omitempty"`
	Groups   []groupCount    `json:"groups,omitempty"`
}

func handleListMethods(ctx context.Context, _ *mcp.CallToolRequest, input listMethodsInput) (*mcp.CallToolResult, listMethodsOutput, error) {
	if err := validateGroupBy(input.GroupBy, input.Detail, []string{"class", "returns"}); err != nil {
		return errResult(err), listMethodsOutput{}, nil
	}
	if err := validateGlobPattern(input.Class); err != nil {
		return errResult(err), listMethodsOutput{}, nil
	}
	if err := validateGlobPattern(input.Name); err != nil {
		return errResult(err), listMethodsOutput{}, nil
	}

	program, err := input.Listing.resolve(ctx)
	if err != nil {
		return errResult(err), listMethodsOutput{}, nil
	}

	var (
		total   int
		matched []methodSummary
	)
	for _, c := range program.Classes() {
		for i, m := range c.Methods {
			total++
			if !matchGlob(input.Class, c.Type) || !matchGlob(input.Name, m.Name) {
				continue
			}
			if !strings.HasPrefix(m.ReturnType, input.Returns) {
				continue
			}
			strs := methodStrings(m)
			if input.String != "" && !slices.Contains(strs, input.String) {
				continue
			}
			matched = append(matched, summarizeMethod(c, i, m, strs, input.Detail))
		}
	}

	output := listMethodsOutput{Total: total, Matched: len(matched)}

	if input.GroupBy != "" {
		output.Groups = groupAndSort(matched, func(s methodSummary) []string {
			if strings.EqualFold(input.GroupBy, "returns") {
				return []string{returnType(s.Descriptor)}
			}
			return []string{s.Class}
		})
		output.Returned = len(output.Groups)
		return nil, output, nil
	}

	output.Methods = paginate(matched, input.Offset, input.Limit)
	output.Returned = len(output.Methods)
	return nil, output, nil
}

func summarizeMethod(c *bytecode.Class, index int, m *bytecode.Method, strs []string, detail bool) methodSummary {
	s := methodSummary{
		Class:        c.Type,
		Name:         m.Name,
		Index:        index,
		Descriptor:   m.Descriptor(),
		Access:       m.AccessFlags.Names(),
		Instructions: len(m.Instructions),
		Strings:      strs,
	}
	if detail {
		s.Listing = makeSlice[string](len(m.Instructions))
		for _, insn := range m.Instructions {
			s.Listing = append(s.Listing, insn.String())
		}
	}
	return s
}

// methodStrings returns the distinct string constants of m in first-use order.
func methodStrings(m *bytecode.Method) []string {
	refs := m.Strings()
	out := makeSlice[string](len(refs))
	for _, ref := range refs {
		if !slices.Contains(out, ref.Value) {
			out = append(out, ref.Value)
		}
	}
	return out
}

// returnType extracts the return type from a method descriptor such as
// "Lapp/Gate;->isPremium()Z".
func returnType(descriptor string) string {
	if i := strings.LastIndexByte(descriptor, ')'); i >= 0 {
		return descriptor[i+1:]
	}
	return descriptor
}
