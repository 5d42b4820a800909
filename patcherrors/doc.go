// Package patcherrors provides structured error types for the patchkit library.
//
// Import path: github.com/erraggy/patchkit/patcherrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish configuration problems detected before a run
// from failures captured into individual patch results.
//
// # Error Types
//
//   - [ConfigError]: cyclic dependencies, invalid matcher ranges, duplicate option keys
//   - [MatchNotFoundError]: a match-required fingerprint accessor found nothing
//   - [ExecuteError]: a patch's execute callback failed, or a dependency failed
//   - [FinalizeError]: a patch's finalize callback failed
//   - [OptionError]: an option value was missing or rejected by its validator
//   - [ParseError]: a listing, declaration, or option values file was malformed
//
// # Sentinel Errors
//
//   - [ErrConfig]: Matches any [ConfigError]
//   - [ErrCyclicDependency]: Matches [ConfigError] with IsCycle=true
//   - [ErrMatchNotFound]: Matches any [MatchNotFoundError]
//   - [ErrExecute]: Matches any [ExecuteError]
//   - [ErrDependencyFailed]: Matches [ExecuteError] with a Dependency set
//   - [ErrFinalize]: Matches any [FinalizeError]
//   - [ErrOption]: Matches any [OptionError]
//   - [ErrParse]: Matches any [ParseError]
//
// # Usage Examples
//
// Configuration errors are returned before any patch executes:
//
//	graph, err := patcher.NewGraph(roots...)
//	if errors.Is(err, patcherrors.ErrCyclicDependency) {
//	    var cfgErr *patcherrors.ConfigError
//	    errors.As(err, &cfgErr)
//	    fmt.Println(strings.Join(cfgErr.Cycle, " -> "))
//	}
//
// Execute and finalize failures travel inside results:
//
//	for result := range executor.Run() {
//	    if errors.Is(result.Err, patcherrors.ErrDependencyFailed) {
//	        // blocked by an upstream failure
//	    }
//	}
package patcherrors
