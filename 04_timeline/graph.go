package timeline

import "fmt"

// NodeKind enumerates the operations a composition graph can contain.
type NodeKind int

const (
	NodeSource NodeKind = iota
	NodePrepare
	NodeTransition
	NodeHold
	NodeTrim
	NodeOverlay
	NodeOutput
)

func (k NodeKind) String() string {
	switch k {
	case NodeSource:
		return "source"
	case NodePrepare:
		return "prepare"
	case NodeTransition:
		return "transition"
	case NodeHold:
		return "hold"
	case NodeTrim:
		return "trim"
	case NodeOverlay:
		return "overlay"
	case NodeOutput:
		return "output"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NodeID indexes into Graph.Nodes.
type NodeID int

// Node is one operation in the composition graph. Inputs are declared
// dependencies; which parameter fields are meaningful depends on Kind:
// Source carries the image and its display time, Transition the blend
// offset and fade length, Hold the extension, Trim the kept duration,
// Overlay the title.
type Node struct {
	ID     NodeID
	Kind   NodeKind
	Inputs []NodeID

	Source   *ImageSource
	Duration float64
	Offset   float64
	Fade     float64
	Overlay  *TextOverlay
}

// Graph is the typed, backend-independent form of a timeline. A lowering
// stage compiles it into a concrete encoder invocation; nothing in here
// knows what that encoder is.
type Graph struct {
	Nodes  []Node
	Output NodeID
}

func (g *Graph) add(n Node) NodeID {
	n.ID = NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	return n.ID
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) Node {
	return g.Nodes[id]
}

// Validate checks that every edge points backwards to an existing node,
// so the node list is already a topological order.
func (g *Graph) Validate() error {
	for _, n := range g.Nodes {
		for _, in := range n.Inputs {
			if in < 0 || int(in) >= len(g.Nodes) {
				return fmt.Errorf("node %d references missing input %d", n.ID, in)
			}
			if in >= n.ID {
				return fmt.Errorf("node %d references forward input %d", n.ID, in)
			}
		}
	}
	if g.Output < 0 || int(g.Output) >= len(g.Nodes) {
		return fmt.Errorf("output references missing node %d", g.Output)
	}
	return nil
}

// Graph lowers the timeline's arithmetic into an explicit operation
// graph: every source passes through a prepare node, transitions fold
// the prepared streams left to right, then the adjustment and overlay
// apply to the accumulated chain, in that order.
func (t *Timeline) Graph() *Graph {
	g := &Graph{}

	prepared := make([]NodeID, len(t.Segments))
	for i := range t.Segments {
		seg := &t.Segments[i]
		src := g.add(Node{
			Kind:     NodeSource,
			Source:   &seg.Source,
			Duration: seg.NominalDuration,
		})
		prepared[i] = g.add(Node{
			Kind:   NodePrepare,
			Inputs: []NodeID{src},
		})
	}

	chain := prepared[0]
	for _, tr := range t.Transitions {
		chain = g.add(Node{
			Kind:   NodeTransition,
			Inputs: []NodeID{chain, prepared[tr.RightIndex]},
			Offset: tr.Offset,
			Fade:   tr.Duration,
		})
	}

	switch t.Adjustment.Kind {
	case AdjustHold:
		chain = g.add(Node{
			Kind:     NodeHold,
			Inputs:   []NodeID{chain},
			Duration: t.Adjustment.Amount,
		})
	case AdjustTrim:
		chain = g.add(Node{
			Kind:     NodeTrim,
			Inputs:   []NodeID{chain},
			Duration: t.TargetDuration,
		})
	}

	if t.Overlay != nil {
		chain = g.add(Node{
			Kind:    NodeOverlay,
			Inputs:  []NodeID{chain},
			Overlay: t.Overlay,
		})
	}

	g.Output = g.add(Node{
		Kind:   NodeOutput,
		Inputs: []NodeID{chain},
	})
	return g
}

// Sources returns the graph's source nodes in input order.
func (g *Graph) Sources() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == NodeSource {
			out = append(out, n)
		}
	}
	return out
}
