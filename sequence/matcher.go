package sequence

import (
	"fmt"
	"slices"

	"github.com/erraggy/patchkit/patcherrors"
)

// Predicate tests one element of the target sequence at its absolute index.
type Predicate[T any] func(elem T, index int) bool

// Kind identifies how a slot picks its index.
type Kind int

const (
	// KindHead matches only at index 0.
	KindHead Kind = iota
	// KindAfter matches within a window after the previous slot's index.
	KindAfter
	// KindFree matches anywhere after the previous slot's index.
	KindFree
)

// String returns the slot kind name.
func (k Kind) String() string {
	switch k {
	case KindHead:
		return "head"
	case KindAfter:
		return "after"
	case KindFree:
		return "free"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Slot is one ordered predicate of a Matcher.
type Slot[T any] struct {
	kind   Kind
	ranged bool
	min    int
	max    int
	pred   Predicate[T]
}

// Head returns a slot that tests only the element at index 0.
// A Head slot is valid only as the first slot of a Matcher.
func Head[T any](p Predicate[T]) Slot[T] {
	return Slot[T]{kind: KindHead, pred: p}
}

// After returns an unranged slot that accepts the first satisfying index
// after the previous slot's index.
func After[T any](p Predicate[T]) Slot[T] {
	return Slot[T]{kind: KindAfter, pred: p}
}

// AfterWithin returns a slot that scans indices prev+lo through prev+hi,
// where prev is the previous slot's index (-1 for the first slot).
// AfterWithin(1, 1, p) requires the element immediately after the previous match.
func AfterWithin[T any](lo, hi int, p Predicate[T]) Slot[T] {
	return Slot[T]{kind: KindAfter, ranged: true, min: lo, max: hi, pred: p}
}

// Free returns a slot that scans forward without bound from the element after
// the previous slot's index, or from index 0 when it is the first slot.
func Free[T any](p Predicate[T]) Slot[T] {
	return Slot[T]{kind: KindFree, pred: p}
}

// Kind returns the slot kind.
func (s Slot[T]) Kind() Kind {
	return s.kind
}

// Range returns the slot's window and whether it has one.
func (s Slot[T]) Range() (lo, hi int, ok bool) {
	return s.min, s.max, s.ranged
}

// Matcher finds a leftmost-greedy assignment of strictly increasing indices
// to its ordered slots. Each slot takes the first index that satisfies it and
// a failing slot fails the whole attempt; earlier slots are never revisited.
//
// A Matcher holds the indices of its last successful match and is not safe
// for concurrent use.
type Matcher[T any] struct {
	slots   []Slot[T]
	indices []int
}

// New creates a Matcher from ordered slots.
// It returns a *patcherrors.ConfigError when a Head slot is not first, a
// range is invalid (min < 1 or max < min), or a predicate is nil.
func New[T any](slots ...Slot[T]) (*Matcher[T], error) {
	for i, s := range slots {
		if s.pred == nil {
			return nil, &patcherrors.ConfigError{
				Option:  fmt.Sprintf("slot %d", i),
				Message: "predicate cannot be nil",
			}
		}
		if s.kind == KindHead && i != 0 {
			return nil, &patcherrors.ConfigError{
				Option:  fmt.Sprintf("slot %d", i),
				Message: "head slot must be the first slot",
			}
		}
		if s.ranged && (s.min < 1 || s.max < s.min) {
			return nil, &patcherrors.ConfigError{
				Option:  "range",
				Value:   fmt.Sprintf("[%d, %d]", s.min, s.max),
				Message: fmt.Sprintf("slot %d: range requires 1 <= min <= max", i),
			}
		}
	}
	return &Matcher[T]{slots: slices.Clone(slots)}, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew[T any](slots ...Slot[T]) *Matcher[T] {
	m, err := New(slots...)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of slots.
func (m *Matcher[T]) Len() int {
	return len(m.slots)
}

// Clear discards the indices collected by the last match.
func (m *Matcher[T]) Clear() {
	m.indices = m.indices[:0]
}

// Indices returns the index matched by each slot in the last successful
// Match call. It is empty after a failed match or Clear.
func (m *Matcher[T]) Indices() []int {
	return slices.Clone(m.indices)
}

// Match clears previous results and matches the slots against seq.
// An empty slot list matches any sequence.
func (m *Matcher[T]) Match(seq []T) bool {
	m.Clear()
	prev := -1
	for _, s := range m.slots {
		idx := s.find(seq, prev)
		if idx < 0 {
			m.Clear()
			return false
		}
		m.indices = append(m.indices, idx)
		prev = idx
	}
	return true
}

// find returns the index the slot accepts after prev, or -1.
func (s Slot[T]) find(seq []T, prev int) int {
	switch s.kind {
	case KindHead:
		if len(seq) > 0 && s.pred(seq[0], 0) {
			return 0
		}
		return -1
	case KindAfter:
		if s.ranged {
			return scan(seq, prev+s.min, min(prev+s.max, len(seq)-1), s.pred)
		}
		return scan(seq, prev+1, len(seq)-1, s.pred)
	default:
		return scan(seq, prev+1, len(seq)-1, s.pred)
	}
}

func scan[T any](seq []T, lo, hi int, p Predicate[T]) int {
	for j := lo; j <= hi; j++ {
		if p(seq[j], j) {
			return j
		}
	}
	return -1
}
