// Package patchkit applies modular, dependency-aware patches to a compiled
// program's instruction set, locating the code to change by its structure
// rather than by (possibly obfuscated) names.
//
// # Overview
//
// The library consists of these packages:
//
//   - bytecode: In-memory program model (classes, methods, instructions) with
//     copy-on-write mutable handles and a YAML/JSON listing format
//   - sequence: Constrained subsequence matching over arbitrary sequences
//   - fingerprint: Declarative method fingerprints and their resolution
//   - patch: Patch construction, declared options, and the capability context
//     handed to patch callbacks
//   - patcher: Dependency graph, two-phase executor, and the RunWithOptions facade
//   - patcherrors: Structured error types shared by all packages
//
// # Installation
//
//	go get github.com/erraggy/patchkit
//
// # Quick Start
//
// Declare a fingerprint for the method to change:
//
//	import "github.com/erraggy/patchkit/fingerprint"
//
//	check := fingerprint.MustNew(
//		fingerprint.WithReturnType("Z"),
//		fingerprint.WithStrings("subscription_active"),
//		fingerprint.WithOpcodes(bytecode.OpConstString, bytecode.OpInvokeStatic, bytecode.OpMoveResult),
//	)
//
// Build a patch that resolves it and rewrites the method:
//
//	import "github.com/erraggy/patchkit/patch"
//
//	unlock := patch.MustNew(
//		patch.WithName("unlock"),
//		patch.Execute(patch.OnBytecode(func(_ patch.Context, model bytecode.Model) error {
//			check.Resolve(model)
//			m, err := check.RequireMatch()
//			if err != nil {
//				return err
//			}
//			method, err := m.MutableMethod()
//			if err != nil {
//				return err
//			}
//			return method.AddInstructions(0,
//				bytecode.Instruction{Opcode: bytecode.OpConst4, Registers: []int{0}, Literal: 1, HasLiteral: true},
//				bytecode.NewInstruction(bytecode.OpReturn, 0),
//			)
//		})),
//	)
//
// Run it against a listing:
//
//	import "github.com/erraggy/patchkit/patcher"
//
//	result, err := patcher.RunWithOptions(
//		patcher.WithPatches(unlock),
//		patcher.WithListingFile("app.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, res := range result.Failed() {
//		fmt.Printf("%s: %v\n", res.Patch, res.Err)
//	}
//
// # Execution Model
//
// Patches run in two phases. The execute phase visits patches depth-first,
// dependencies before dependents, in declared order. A patch whose dependency
// failed fails without running. The finalize phase then runs the finalize
// callbacks of every succeeded patch in reverse execution order. One failure
// never aborts the rest of the run; each patch reports its own result.
//
// See the patcher package documentation for more details.
//
// # Command-Line Tool
//
// The patchkit command lists the methods of a listing and resolves fingerprint
// files against it. The "patchkit mcp" subcommand serves the same read-only
// capabilities as MCP tools over stdio.
//
//	patchkit list --returns Z app.yaml
//	patchkit match app.yaml fingerprints.yaml
package patchkit
