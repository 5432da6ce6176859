package gridreg

import (
	"fmt"

	"github.com/notargets/spheregrid/meshmeta"
)

// NodeKind identifies which mesh entity a grid is built over
type NodeKind uint8

const (
	CellNodes NodeKind = iota // cell centers
	EdgeNodes
	VertexNodes
)

func (k NodeKind) String() string {
	return [...]string{"cell", "edge", "vertex"}[k]
}

// NodeSet is the per-task input bundle for one node kind: global IDs and
// coordinates (radians) for the locally owned slots only, 1..solve count.
// RegisterAll consumes a NodeSet; afterwards its slices are released and
// the set must not be read again.
type NodeSet struct {
	Kind       NodeKind
	GlobalSize int       // total entities of this kind across all tasks
	GlobalIDs  []int     // local slot -> global ID
	LatRad     []float64 // per owned slot
	LonRad     []float64
}

// Check validates the bundle shape before registration.
func (ns *NodeSet) Check() error {
	n := len(ns.GlobalIDs)
	if n == 0 {
		return fmt.Errorf("%s node set owns no slots", ns.Kind)
	}
	if len(ns.LatRad) != n || len(ns.LonRad) != n {
		return fmt.Errorf("%s node set: %d IDs but %d/%d coordinates",
			ns.Kind, n, len(ns.LatRad), len(ns.LonRad))
	}
	if ns.GlobalSize < n {
		return fmt.Errorf("%s node set: %d owned slots exceed global size %d",
			ns.Kind, n, ns.GlobalSize)
	}
	for s, g := range ns.GlobalIDs {
		if g < 1 || g > ns.GlobalSize {
			return fmt.Errorf("%s node set slot %d: global ID %d outside 1..%d",
				ns.Kind, s+1, g, ns.GlobalSize)
		}
	}
	return nil
}

// release drops the input slices once the registered grids have captured
// everything they need. Post-condition: the NodeSet is no longer usable.
func (ns *NodeSet) release() {
	ns.GlobalIDs = nil
	ns.LatRad = nil
	ns.LonRad = nil
}

// CoordAxis is one coordinate object of a registered grid: the converted
// local values plus everything the I/O layer needs to place them in global
// file order.
type CoordAxis struct {
	Name       string
	DimName    string
	GlobalSize int
	Units      string // degrees_north or degrees_east

	// Local owned range, 1..LastSlot
	FirstSlot int
	LastSlot  int

	Values    []float64 // degrees, per owned slot
	GlobalIDs []int     // local slot -> global position in the file
}

// IndexTriplets is the local-to-global map of a registered grid, shape
// (3, N): row 0 the local slot, row 1 the constant vertical-block
// placeholder 1 (the horizontal index carries no level blocking), row 2
// the global ID. Backing storage is owned by the Grid it is registered
// under and must outlive the registry call.
type IndexTriplets struct {
	N    int
	Data []int // row-major, len 3*N
}

// BuildTriplets captures the global-ID buffer into a fresh triplet array.
// The caller's buffer is only read, never retained.
func BuildTriplets(globalIDs []int) *IndexTriplets {
	n := len(globalIDs)
	t := &IndexTriplets{N: n, Data: make([]int, 3*n)}
	for i, g := range globalIDs {
		t.Data[i] = i + 1
		t.Data[n+i] = 1
		t.Data[2*n+i] = g
	}
	return t
}

// At returns the triplet entry at (row, slot-1).
func (t *IndexTriplets) At(row, i int) int {
	if row < 0 || row > 2 || i < 0 || i >= t.N {
		panic(fmt.Sprintf("gridreg: triplet index (%d,%d) outside (3,%d)", row, i, t.N))
	}
	return t.Data[row*t.N+i]
}

// Grid is a named, decomposition-tagged registration handed to the I/O
// layer. Unstructured and not block-indexed: each task's contribution is an
// arbitrary subset of global positions, not a rectangular sub-block.
type Grid struct {
	Name      string
	DecompTag string

	Lat *CoordAxis
	Lon *CoordAxis

	Triplets *IndexTriplets

	Unstructured bool
	BlockIndexed bool
}

// buildAxes converts a node set's coordinates to degrees and wraps them in
// the latitude/longitude axis pair under the given names.
func buildAxes(ns *NodeSet, n naming) (lat, lon *CoordAxis) {
	count := len(ns.GlobalIDs)
	ids := append([]int(nil), ns.GlobalIDs...)
	lat = &CoordAxis{
		Name:       n.latName,
		DimName:    n.dimName,
		GlobalSize: ns.GlobalSize,
		Units:      "degrees_north",
		FirstSlot:  1,
		LastSlot:   count,
		Values:     meshmeta.ToDegrees(ns.LatRad),
		GlobalIDs:  ids,
	}
	lon = &CoordAxis{
		Name:       n.lonName,
		DimName:    n.dimName,
		GlobalSize: ns.GlobalSize,
		Units:      "degrees_east",
		FirstSlot:  1,
		LastSlot:   count,
		Values:     meshmeta.ToDegrees(ns.LonRad),
		GlobalIDs:  ids,
	}
	return lat, lon
}
