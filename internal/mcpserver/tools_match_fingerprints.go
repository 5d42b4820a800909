package mcpserver

import (
	"context"

	"github.com/erraggy/patchkit/fingerprint"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type matchFingerprintsInput struct {
	Listing      listingInput      `json:"listing"              jsonschema:"The bytecode listing to search"`
	Fingerprints declarationsInput `json:"fingerprints"         jsonschema:"The fingerprint declarations to resolve"`
	NoIndex      bool              `json:"no_index,omitempty"   jsonschema:"Scan every method instead of using the string index"`
	FoundOnly    bool              `json:"found_only,omitempty" jsonschema:"Only report fingerprints that matched"`
}

type patternSummary struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Warnings []string `json:"warnings,omitempty"`
}

type fingerprintResult struct {
	Name        string                    `json:"name"`
	Found       bool                      `json:"found"`
	Class       string                    `json:"class,omitempty"`
	Method      string                    `json:"method,omitempty"`
	Descriptor  string                    `json:"descriptor,omitempty"`
	MethodIndex int                       `json:"method_index"`
	Pattern     *patternSummary           `json:"pattern,omitempty"`
	Strings     []fingerprint.StringMatch `json:"strings,omitempty"`
}

type matchFingerprintsOutput struct {
	Total   int                 `json:"total"`
	Matched int                 `json:"matched"`
	Results []fingerprintResult `json:"results,omitempty"`
}

func handleMatchFingerprints(ctx context.Context, _ *mcp.CallToolRequest, input matchFingerprintsInput) (*mcp.CallToolResult, matchFingerprintsOutput, error) {
	program, err := input.Listing.resolve(ctx)
	if err != nil {
		return errResult(err), matchFingerprintsOutput{}, nil
	}
	fps, err := input.Fingerprints.resolve()
	if err != nil {
		return errResult(err), matchFingerprintsOutput{}, nil
	}

	var opts []fingerprint.ResolverOption
	if cfg.MatchUseIndex && !input.NoIndex {
		opts = append(opts, fingerprint.WithStringIndex())
	}
	resolver := fingerprint.NewResolver(opts...)

	output := matchFingerprintsOutput{
		Total:   len(fps),
		Results: makeSlice[fingerprintResult](len(fps)),
	}
	for _, fp := range fps {
		if err := ctx.Err(); err != nil {
			return errResult(err), matchFingerprintsOutput{}, nil
		}
		m, ok := resolver.Resolve(fp, program.Classes())
		if ok {
			output.Matched++
		} else if input.FoundOnly {
			continue
		}
		output.Results = append(output.Results, summarizeMatch(fp, m, ok))
	}
	return nil, output, nil
}

func summarizeMatch(fp *fingerprint.Fingerprint, m *fingerprint.Match, found bool) fingerprintResult {
	r := fingerprintResult{Name: fp.Name(), Found: found, MethodIndex: -1}
	if !found {
		return r
	}
	r.Class = m.Class.Type
	r.Method = m.Method.Name
	r.Descriptor = m.Descriptor()
	r.MethodIndex = m.MethodIndex
	r.Strings = m.StringMatches
	if pm := m.PatternMatch; pm != nil {
		r.Pattern = &patternSummary{Start: pm.StartIndex, End: pm.EndIndex}
		for _, w := range pm.Warnings {
			r.Pattern.Warnings = append(r.Pattern.Warnings, w.String())
		}
	}
	return r
}
