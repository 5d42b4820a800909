// Package patch defines patches: named units of transformation with ordered
// dependencies, an execute phase and a finalize phase.
//
// # Declaring Patches
//
//	var sharedHook = patch.MustNew(
//	    patch.WithName("shared-hook"),
//	    patch.Execute(patch.OnBytecode(func(ctx patch.Context, model bytecode.Model) error {
//	        // locate and edit code
//	        return nil
//	    })),
//	)
//
//	var unlock = patch.MustNew(
//	    patch.WithName("unlock"),
//	    patch.DependsOn(sharedHook),
//	    patch.CompatibleWith("com.example.app", "1.2.0", "1.3.0"),
//	    patch.WithOption(patch.OptionDecl{
//	        Key:       "tier",
//	        Default:   "gold",
//	        Validator: patch.OneOf("gold", "platinum"),
//	    }),
//	    patch.Execute(func(ctx patch.Context) error {
//	        tier, err := patch.Value[string](ctx.Options(), "tier")
//	        ...
//	    }),
//	)
//
// A patch that refers to one assigned after it uses DependsOnLazy, which
// defers the lookup until the dependency graph is built.
//
// # Capabilities
//
// Callbacks receive a Context. It exposes only what the run supplied: the
// bytecode model, the resource store, and the patch's option values. Asking
// for a capability the run lacks returns an error wrapping
// ErrCapabilityUnavailable.
//
// # Options
//
// Option values are validated when the patch executes, not when the run
// starts, so an invalid value fails only the patch that declares it and the
// patches that depend on it.
//
// # Compatibility
//
// A patch that declares no packages is universal. Otherwise it applies to a
// package it lists, restricted to the listed versions when there are any.
package patch
