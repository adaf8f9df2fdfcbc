package locator

import "github.com/go-scripts/snapcrop/internal/crop"

// nodeInfo mirrors one serialized chain entry from the JS snapshots.
type nodeInfo struct {
	Tag     string  `json:"tag"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
	Block   bool    `json:"block"`
	Wrapper bool    `json:"wrapper"`
}

// chainNode adapts a snapshot entry to the Node interface. steps counts
// parentElement hops from the chain origin, so the chosen node can be
// re-resolved in the live document.
type chainNode struct {
	info   nodeInfo
	parent *chainNode
	steps  int
}

func (c *chainNode) Box() crop.Box {
	return crop.Box{X: c.info.X, Y: c.info.Y, Width: c.info.Width, Height: c.info.Height}
}

func (c *chainNode) Visible() bool      { return c.info.Visible }
func (c *chainNode) BlockLevel() bool   { return c.info.Block }
func (c *chainNode) WrapperMatch() bool { return c.info.Wrapper }

func (c *chainNode) Parent() Node {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

// buildChain links snapshot entries into a parent chain and returns its
// head (the origin element), or nil for an empty snapshot.
func buildChain(infos []nodeInfo) *chainNode {
	var head, prev *chainNode
	for i := range infos {
		n := &chainNode{info: infos[i], steps: i}
		if prev == nil {
			head = n
		} else {
			prev.parent = n
		}
		prev = n
	}
	return head
}
