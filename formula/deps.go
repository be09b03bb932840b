package formula

import (
	"github.com/vimeh/gridcore-sub002/grid"
)

// Dependencies walks the tree and collects every cell the expression reads,
// keyed by address. Range references contribute each covered cell, and
// duplicates collapse.
func Dependencies(root Node) map[string]grid.Coordinate {
	deps := make(map[string]grid.Coordinate)
	collectDeps(root, deps)
	return deps
}

func collectDeps(n Node, deps map[string]grid.Coordinate) {
	switch n := n.(type) {
	case *CellRef:
		if n.Address != nil {
			deps[n.Address.String()] = *n.Address
		}
	case *RangeRef:
		if n.Area != nil {
			for it := n.Area.Iter(); ; {
				c, ok := it.Next()
				if !ok {
					break
				}
				deps[c.String()] = c
			}
		}
	case *Call:
		for _, arg := range n.Args {
			collectDeps(arg, deps)
		}
	case *Unary:
		collectDeps(n.X, deps)
	case *Binary:
		collectDeps(n.Left, deps)
		collectDeps(n.Right, deps)
	}
}
