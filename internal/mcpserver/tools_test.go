package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listMethods(t *testing.T, input listMethodsInput) listMethodsOutput {
	t.Helper()
	if input.Listing == (listingInput{}) {
		input.Listing = listingInput{Content: testListingYAML}
	}
	res, output, err := handleListMethods(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Nil(t, res, "unexpected tool error")
	return output
}

func TestListMethods_All(t *testing.T) {
	output := listMethods(t, listMethodsInput{})
	assert.Equal(t, 3, output.Total)
	assert.Equal(t, 3, output.Matched)
	assert.Equal(t, 3, output.Returned)

	first := output.Methods[0]
	assert.Equal(t, "Lapp/Gate;", first.Class)
	assert.Equal(t, "isPremium", first.Name)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "Lapp/Gate;->isPremium()Z", first.Descriptor)
	assert.Equal(t, []string{"public", "static"}, first.Access)
	assert.Equal(t, 4, first.Instructions)
	assert.Equal(t, []string{"premium"}, first.Strings)
	assert.Empty(t, first.Listing)
}

func TestListMethods_Filters(t *testing.T) {
	tests := []struct {
		name  string
		input listMethodsInput
		want  []string
	}{
		{"class glob", listMethodsInput{Class: "Lapp/T*"}, []string{"color"}},
		{"exact name", listMethodsInput{Name: "reset"}, []string{"reset"}},
		{"name glob", listMethodsInput{Name: "*e*"}, []string{"isPremium", "reset"}},
		{"return prefix", listMethodsInput{Returns: "Ljava/"}, []string{"color"}},
		{"string", listMethodsInput{String: "premium"}, []string{"isPremium", "color"}},
		{"no match", listMethodsInput{Name: "absent"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := listMethods(t, tt.input)
			var got []string
			for _, m := range output.Methods {
				got = append(got, m.Name)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 3, output.Total)
		})
	}
}

func TestListMethods_Detail(t *testing.T) {
	output := listMethods(t, listMethodsInput{Name: "isPremium", Detail: true})
	require.Len(t, output.Methods, 1)
	assert.Equal(t, []string{
		`const-string v0, "premium"`,
		"invoke-static v0, Lapp/Store;->has(Ljava/lang/String;)Z",
		"move-result v1",
		"return v1",
	}, output.Methods[0].Listing)
}

func TestListMethods_GroupBy(t *testing.T) {
	output := listMethods(t, listMethodsInput{GroupBy: "class"})
	assert.Equal(t, []groupCount{{"Lapp/Gate;", 2}, {"Lapp/Theme;", 1}}, output.Groups)
	assert.Empty(t, output.Methods)

	output = listMethods(t, listMethodsInput{GroupBy: "returns"})
	assert.Equal(t, []groupCount{{"Ljava/lang/String;", 1}, {"V", 1}, {"Z", 1}}, output.Groups)
}

func TestListMethods_Pagination(t *testing.T) {
	output := listMethods(t, listMethodsInput{Offset: 1, Limit: 1})
	require.Len(t, output.Methods, 1)
	assert.Equal(t, "reset", output.Methods[0].Name)
	assert.Equal(t, 3, output.Matched)
	assert.Equal(t, 1, output.Returned)
}

func TestListMethods_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input listMethodsInput
	}{
		{"group_by with detail", listMethodsInput{Listing: listingInput{Content: testListingYAML}, GroupBy: "class", Detail: true}},
		{"bad group_by", listMethodsInput{Listing: listingInput{Content: testListingYAML}, GroupBy: "size"}},
		{"bad glob", listMethodsInput{Listing: listingInput{Content: testListingYAML}, Name: "[x"}},
		{"no listing", listMethodsInput{}},
		{"invalid listing", listMethodsInput{Listing: listingInput{Content: "classes: {broken"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := handleListMethods(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
		})
	}
}

func TestMatchFingerprints(t *testing.T) {
	for _, noIndex := range []bool{false, true} {
		input := matchFingerprintsInput{
			Listing:      listingInput{Content: testListingYAML},
			Fingerprints: declarationsInput{Content: testDeclarationsYAML},
			NoIndex:      noIndex,
		}
		res, output, err := handleMatchFingerprints(context.Background(), &mcp.CallToolRequest{}, input)
		require.NoError(t, err)
		require.Nil(t, res)

		assert.Equal(t, 3, output.Total)
		assert.Equal(t, 2, output.Matched)
		require.Len(t, output.Results, 3)

		premium := output.Results[0]
		assert.True(t, premium.Found)
		assert.Equal(t, "premium-check", premium.Name)
		assert.Equal(t, "Lapp/Gate;", premium.Class)
		assert.Equal(t, "isPremium", premium.Method)
		assert.Equal(t, "Lapp/Gate;->isPremium()Z", premium.Descriptor)
		require.NotNil(t, premium.Pattern)
		assert.Equal(t, 0, premium.Pattern.Start)
		assert.Equal(t, 3, premium.Pattern.End)
		assert.Empty(t, premium.Pattern.Warnings)
		require.Len(t, premium.Strings, 1)
		assert.Equal(t, 0, premium.Strings[0].Index)

		theme := output.Results[1]
		assert.True(t, theme.Found)
		assert.Equal(t, "color", theme.Method)
		assert.Nil(t, theme.Pattern)

		missing := output.Results[2]
		assert.False(t, missing.Found)
		assert.Equal(t, -1, missing.MethodIndex)
	}
}

func TestMatchFingerprints_FuzzyWarnings(t *testing.T) {
	decls := `fingerprints:
  - name: fuzzy
    opcodes: [const-string, invoke-virtual, move-result, return]
    fuzzy: 1
`
	input := matchFingerprintsInput{
		Listing:      listingInput{Content: testListingYAML},
		Fingerprints: declarationsInput{Content: decls},
	}
	res, output, err := handleMatchFingerprints(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Nil(t, res)
	require.Len(t, output.Results, 1)
	require.NotNil(t, output.Results[0].Pattern)
	assert.Equal(t, []string{"pattern[1] expected invoke-virtual, found invoke-static at instruction 1"}, output.Results[0].Pattern.Warnings)
}

func TestMatchFingerprints_FoundOnly(t *testing.T) {
	input := matchFingerprintsInput{
		Listing:      listingInput{Content: testListingYAML},
		Fingerprints: declarationsInput{Content: testDeclarationsYAML},
		FoundOnly:    true,
	}
	_, output, err := handleMatchFingerprints(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Equal(t, 3, output.Total)
	assert.Len(t, output.Results, 2)
}

func TestMatchFingerprints_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input matchFingerprintsInput
	}{
		{"no listing", matchFingerprintsInput{Fingerprints: declarationsInput{Content: testDeclarationsYAML}}},
		{"no declarations", matchFingerprintsInput{Listing: listingInput{Content: testListingYAML}}},
		{"unknown opcode", matchFingerprintsInput{
			Listing:      listingInput{Content: testListingYAML},
			Fingerprints: declarationsInput{Content: "fingerprints:\n  - opcodes: [not-an-opcode]\n"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := handleMatchFingerprints(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.True(t, res.IsError)
		})
	}
}
