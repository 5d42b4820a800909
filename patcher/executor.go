package patcher

import (
	"fmt"
	"iter"

	"github.com/erraggy/patchkit/patch"
	"github.com/erraggy/patchkit/patcherrors"
)

// State is the per-run state of one patch.
type State int

const (
	// StateUnvisited means the patch has not been reached yet.
	StateUnvisited State = iota
	// StateExecuting means the patch or one of its dependencies is executing.
	StateExecuting
	// StateSucceeded means execute succeeded.
	StateSucceeded
	// StateFailed means execute failed or a dependency failed.
	StateFailed
	// StateFinalized means execute and finalize both succeeded.
	StateFinalized
	// StateFinalizeFailed means execute succeeded and finalize failed.
	StateFinalizeFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateFinalized:
		return "finalized"
	case StateFinalizeFailed:
		return "finalize-failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of one attempted patch.
type Result struct {
	// Patch is the attempted patch.
	Patch *patch.Patch
	// State is the patch's final state in the run.
	State State
	// Err is the execute failure, else the finalize failure, else nil.
	// It is a *patcherrors.ExecuteError or *patcherrors.FinalizeError.
	Err error
}

// Succeeded reports whether the patch completed without error.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// OptionValues maps patch names to the raw option values supplied to them.
type OptionValues map[string]map[string]any

// Executor runs the patches of a Graph.
//
// Execution is depth-first: a patch's dependencies execute, in declared order,
// before the patch itself, and each patch executes at most once per run. A
// patch whose dependency failed fails without executing and without visiting
// its remaining dependencies. Unrelated patches are unaffected.
//
// After the whole execute pass, every succeeded patch with a finalize callback
// is finalized once, in the exact reverse of execution order across the run.
// A failing finalize affects only its own patch.
//
// The executor is single-threaded and does no logging.
type Executor struct {
	graph  *Graph
	caps   patch.Capabilities
	values OptionValues
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithCapabilities sets the capabilities handed to every patch.
func WithCapabilities(caps patch.Capabilities) ExecutorOption {
	return func(e *Executor) {
		e.caps = caps
	}
}

// WithValues sets the option values, keyed by patch name.
func WithValues(values OptionValues) ExecutorOption {
	return func(e *Executor) {
		e.values = values
	}
}

// NewExecutor creates an Executor for g.
func NewExecutor(g *Graph, opts ...ExecutorOption) *Executor {
	e := &Executor{graph: g}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run returns the results of a new run, one per attempted patch, in attempt
// order. Each iteration of the returned sequence performs a fresh run.
//
// The sequence is lazy: a result is yielded as soon as it is final. Failed
// patches and patches without a finalize callback are final once they have
// executed; the others are final after their finalize. Breaking out of the
// loop stops the run and no further callback starts.
func (e *Executor) Run() iter.Seq[Result] {
	return func(yield func(Result) bool) {
		r := &run{
			exec:     e,
			byPatch:  make(map[*patch.Patch]*attempt),
			yield:    yield,
			attempts: make([]*attempt, 0, e.graph.Len()),
		}
		r.execute()
	}
}

// RunAll performs a run and collects every result.
func (e *Executor) RunAll() []Result {
	var results []Result
	for res := range e.Run() {
		results = append(results, res)
	}
	return results
}

type attempt struct {
	patch *patch.Patch
	state State
	err   error
	ctx   patch.Context
	final bool
}

func (a *attempt) result() Result {
	return Result{Patch: a.patch, State: a.state, Err: a.err}
}

// run holds the state of a single run.
type run struct {
	exec    *Executor
	byPatch map[*patch.Patch]*attempt

	// attempts in attempt order; executed holds the succeeded subset in
	// execution order.
	attempts []*attempt
	executed []*attempt

	next    int
	yield   func(Result) bool
	stopped bool
}

func (r *run) execute() {
	for _, root := range r.exec.graph.roots {
		r.visit(root)
		if r.stopped {
			return
		}
	}

	for i := len(r.executed) - 1; i >= 0; i-- {
		a := r.executed[i]
		if !a.patch.HasFinalize() {
			continue
		}
		if err := guard(func() error { return a.patch.RunFinalize(a.ctx) }); err != nil {
			a.state = StateFinalizeFailed
			a.err = &patcherrors.FinalizeError{Patch: a.patch.String(), Cause: err}
		} else {
			a.state = StateFinalized
		}
		a.final = true
		r.flush()
		if r.stopped {
			return
		}
	}
}

// visit executes p after its dependencies and returns its attempt.
// It returns nil if the run stopped before p's outcome was known.
func (r *run) visit(p *patch.Patch) *attempt {
	if a, ok := r.byPatch[p]; ok {
		return a
	}
	a := &attempt{patch: p, state: StateExecuting}
	r.byPatch[p] = a

	for _, d := range r.exec.graph.deps[p] {
		da := r.visit(d)
		if r.stopped {
			return nil
		}
		if da.state == StateFailed {
			a.state = StateFailed
			a.err = &patcherrors.ExecuteError{Patch: p.String(), Dependency: d.String()}
			r.complete(a)
			return a
		}
	}

	values := p.Values(r.exec.values[p.Name()])
	if err := values.Validate(); err != nil {
		a.state = StateFailed
		a.err = &patcherrors.ExecuteError{Patch: p.String(), Cause: err}
		r.complete(a)
		return a
	}

	a.ctx = patch.NewContext(p, r.exec.caps, values)
	if err := guard(func() error { return p.RunExecute(a.ctx) }); err != nil {
		a.state = StateFailed
		a.err = &patcherrors.ExecuteError{Patch: p.String(), Cause: err}
	} else {
		a.state = StateSucceeded
		r.executed = append(r.executed, a)
	}
	r.complete(a)
	return a
}

// complete records a finished execute phase and yields whatever became final.
func (r *run) complete(a *attempt) {
	a.final = a.state == StateFailed || !a.patch.HasFinalize()
	r.attempts = append(r.attempts, a)
	r.flush()
}

// flush yields final results in attempt order, stopping at the first result
// that is not yet final.
func (r *run) flush() {
	for !r.stopped && r.next < len(r.attempts) && r.attempts[r.next].final {
		res := r.attempts[r.next].result()
		r.next++
		if !r.yield(res) {
			r.stopped = true
		}
	}
}

// guard calls fn, converting a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
