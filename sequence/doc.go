// Package sequence provides constrained subsequence matching over slices.
//
// A Matcher holds ordered predicate slots and assigns each slot a strictly
// increasing index of the target slice. Slots come in three kinds:
//
//   - Head tests only index 0. It is valid only as the first slot.
//   - After scans the window following the previous slot's index. Unranged,
//     it scans to the end; AfterWithin(lo, hi, p) scans prev+lo through prev+hi.
//   - Free scans forward without bound from the element after the previous
//     slot's index.
//
// Matching is leftmost-greedy: each slot takes the first satisfying index
// and a slot that finds none fails the attempt. There is no backtracking.
//
// # Example
//
//	m := sequence.MustNew(
//	    sequence.Head(func(x, _ int) bool { return x == 1 }),
//	    sequence.AfterWithin(1, 2, func(x, _ int) bool { return x%2 == 0 }),
//	    sequence.Free(func(x, _ int) bool { return x > 8 }),
//	)
//	if m.Match([]int{1, 2, 3, 4, 9}) {
//	    fmt.Println(m.Indices()) // [0 1 4]
//	}
//
// Opcode pattern matching in the fingerprint package is built on this engine.
package sequence
