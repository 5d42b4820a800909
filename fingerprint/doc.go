// Package fingerprint locates methods by structure instead of by name.
//
// Identifiers in a shipped program are routinely stripped or obfuscated, so a
// patch describes the method it wants instead: return type, access flags,
// parameter types, the string constants it loads, the shape of its opcode
// stream and an optional custom predicate. A Resolver scans classes in
// enumeration order and returns the first method satisfying every declared
// check.
//
// # Quick Start
//
//	fp := fingerprint.MustNew(
//	    fingerprint.WithName("premium-check"),
//	    fingerprint.WithReturnType("Z"),
//	    fingerprint.WithStrings("premium"),
//	    fingerprint.WithOpcodes(
//	        bytecode.OpConstString,
//	        bytecode.OpAny,
//	        bytecode.OpMoveResult,
//	        bytecode.OpReturn,
//	    ),
//	)
//
//	if _, ok := fp.Resolve(prog); !ok {
//	    log.Printf("%s not found", fp.Name())
//	}
//	match, err := fp.RequireMatch() // *patcherrors.MatchNotFoundError when absent
//	if err != nil {
//	    return err
//	}
//	method, err := match.MutableMethod()
//
// # Check Order
//
// Checks run cheapest first and stop at the first failure:
//
//  1. Return type prefix
//  2. Access flags, compared for equality
//  3. Parameter types, compared exactly and in order
//  4. Required strings, each needing its own occurrence
//  5. Opcode pattern
//  6. Instruction filters
//  7. Custom predicate
//
// # Opcode Patterns
//
// A pattern must appear as a contiguous run of instructions. bytecode.OpAny
// matches any opcode. With a fuzzy threshold T, up to T non-wildcard
// mismatches are tolerated across one match attempt and each is reported as a
// Warning on the PatternMatch. The earliest start index that matches wins.
//
// # Memoisation
//
// A Fingerprint stores its first successful match and returns it from every
// later resolution without scanning. A failed resolution stores nothing, so a
// fingerprint whose target is created by an earlier patch resolves once that
// patch has run.
//
// # Declarations
//
// Fingerprints can be declared in YAML or JSON and loaded with
// ParseDeclarations or ParseDeclarationsFile:
//
//	fingerprints:
//	  - name: premium-check
//	    returns: Z
//	    strings: [premium]
//	    opcodes: [const-string, "*", move-result, return]
//	    fuzzy: 1
package fingerprint
