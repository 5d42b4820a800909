package patch

import "github.com/erraggy/patchkit/bytecode"

// OnBytecode adapts a callback that works on the bytecode model. The patch
// fails if the run supplies no model.
func OnBytecode(fn func(ctx Context, model bytecode.Model) error) func(Context) error {
	return func(ctx Context) error {
		model, err := ctx.Bytecode()
		if err != nil {
			return err
		}
		return fn(ctx, model)
	}
}

// OnResources adapts a callback that works on the resource store. The patch
// fails if the run supplies no store.
func OnResources(fn func(ctx Context, res ResourceStore) error) func(Context) error {
	return func(ctx Context) error {
		res, err := ctx.Resources()
		if err != nil {
			return err
		}
		return fn(ctx, res)
	}
}
