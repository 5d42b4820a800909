package fingerprint_test

import (
	"fmt"
	"log"

	"github.com/erraggy/patchkit/bytecode"
	"github.com/erraggy/patchkit/fingerprint"
)

const listing = `
classes:
  - type: La/b;
    methods:
      - name: x
        returns: Z
        instructions:
          - const-string v0, "premium"
          - invoke-virtual v0, La/c;->d(Ljava/lang/String;)Z
          - move-result v1
          - return v1
`

func Example() {
	prog, err := bytecode.ParseListing([]byte(listing))
	if err != nil {
		log.Fatal(err)
	}

	fp := fingerprint.MustNew(
		fingerprint.WithName("premium-check"),
		fingerprint.WithReturnType("Z"),
		fingerprint.WithStrings("premium"),
		fingerprint.WithOpcodes(bytecode.OpConstString, bytecode.OpInvokeStatic, bytecode.OpMoveResult),
		fingerprint.WithFuzzyThreshold(1),
	)

	match, ok := fp.Resolve(prog)
	if !ok {
		log.Fatal("not found")
	}
	fmt.Println(match.Descriptor())
	for _, w := range match.PatternMatch.Warnings {
		fmt.Println(w)
	}
	// Output:
	// La/b;->x()Z
	// pattern[1] expected invoke-static, found invoke-virtual at instruction 1
}

func ExampleParseDeclarations() {
	fps, err := fingerprint.ParseDeclarations([]byte(`
fingerprints:
  - name: returns-bool
    returns: Z
    opcodes: ["*", "*", move-result]
`))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(fps), fps[0].Name(), fps[0].Opcodes())
	// Output: 1 returns-bool [* * move-result]
}
