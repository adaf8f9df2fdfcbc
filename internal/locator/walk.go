// Package locator finds the single best capture region in a rendered page
// under one of three policies: largest table, centered block, or
// heading-anchored container.
//
// The climb heuristics are pure functions over an abstract Node so they can
// be unit-tested against synthetic trees; the DOM adapter materializes one
// ancestor chain per policy from a single JS snapshot.
package locator

import "github.com/go-scripts/snapcrop/internal/crop"

// Node is one element in an ancestor chain, abstracted away from the DOM.
type Node interface {
	Box() crop.Box
	Visible() bool
	BlockLevel() bool
	WrapperMatch() bool
	// Parent returns the next ancestor, or nil at the chain's end.
	Parent() Node
}

// Default size floors for the climb heuristics, in CSS pixels.
const (
	CenterMinWidth  = 200
	CenterMinHeight = 200

	HeadingMinWidth  = 300
	HeadingMinHeight = 150

	tableMinSize = 5
)

func bigEnough(n Node, minW, minH float64) bool {
	b := n.Box()
	return b.Width >= minW && b.Height >= minH
}

// ClimbToBlock walks up from n (inclusive) and returns the first ancestor
// that is block-level, visible, and at least minW by minH. Returns nil when
// the walk exhausts the chain.
func ClimbToBlock(n Node, minW, minH float64) Node {
	for ; n != nil; n = n.Parent() {
		if n.BlockLevel() && n.Visible() && bigEnough(n, minW, minH) {
			return n
		}
	}
	return nil
}

// ClimbToWrapper walks up from n (inclusive) and returns the first ancestor
// that matches a preferred wrapper selector and is at least minW by minH.
// Returns nil when none qualifies.
func ClimbToWrapper(n Node, minW, minH float64) Node {
	for ; n != nil; n = n.Parent() {
		if n.WrapperMatch() && n.Visible() && bigEnough(n, minW, minH) {
			return n
		}
	}
	return nil
}

// PickLargest returns the index of the box with the greatest area, ties
// broken by first in slice order (document order). Returns -1 for an empty
// slice.
func PickLargest(boxes []crop.Box) int {
	best := -1
	var bestArea float64
	for i, b := range boxes {
		if a := b.Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	return best
}
