// Package patcher runs patches in dependency order.
//
// A run has two phases. The execute phase walks the dependency graph depth
// first, executing each patch after its dependencies. The finalize phase then
// calls every succeeded patch's finalize callback in the exact reverse of the
// order the patches executed, across the whole run.
//
// # Quick Start
//
//	result, err := patcher.RunWithOptions(
//	    patcher.WithPatches(unlock, theme),
//	    patcher.WithListingFile("app.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err) // invalid options, unreadable listing, or a dependency cycle
//	}
//	if result.HasFailures() {
//	    for _, res := range result.Failed() {
//	        fmt.Printf("%s: %v\n", res.Patch, res.Err)
//	    }
//	}
//
// For incremental progress, drive the executor directly. Results arrive in
// attempt order as soon as each is final, and breaking out of the loop stops
// the run:
//
//	g, err := patcher.NewGraph(unlock, theme)
//	if err != nil {
//	    return err
//	}
//	exec := patcher.NewExecutor(g, patcher.WithCapabilities(patch.Capabilities{Bytecode: prog}))
//	for res := range exec.Run() {
//	    if res.Err != nil {
//	        break // fail fast
//	    }
//	}
//
// # Failure Isolation
//
// A failed execute, including an invalid option value or a panic, fails that
// patch and every patch that depends on it. A dependent fails with a
// *patcherrors.ExecuteError naming the dependency, and its own execute never
// runs. Patches on unrelated branches are unaffected. Finalize failures are
// recorded against their own patch only.
//
// # Ordering Example
//
// Given roots A and B, where B depends on C and D and only B and C have
// finalize callbacks, the callbacks run as:
//
//	execute A, execute C, execute D, execute B, finalize B, finalize C
//
// and the results are reported in the order A, C, D, B.
package patcher
