// Package meshsource supplies the inputs the decomposition core assumes
// from its collaborators: per-task column ownership lists from the mesh
// partitioner and per-entity global-ID/coordinate arrays from the mesh
// store. Two producers exist: a deterministic synthetic layout for tests
// and tooling, and an adapter over gocfd mesh files partitioned with METIS.
package meshsource

import (
	"fmt"
	"math"

	"github.com/notargets/spheregrid/gridreg"
	"github.com/notargets/spheregrid/meshmeta"
)

// EarthRadius is the default sphere radius in meters when the mesh file
// header does not provide one.
const EarthRadius = 6.37122e6

// Decomposed bundles a populated HorizMesh with per-task ownership of all
// three node kinds. It is the hand-off point between the upstream
// partitioner/mesh store and the decomposition core.
type Decomposed struct {
	Mesh *meshmeta.HorizMesh

	// OwnedColumns[task] lists the global cell IDs task owns, ordered by
	// local slot ascending. Feeds decomp.NewBlockLayout directly.
	OwnedColumns [][]int

	ownedEdges [][]int
	ownedVerts [][]int

	// Global per-entity coordinates (radians), indexed by global ID - 1
	edgeLat, edgeLon []float64
	vertLat, vertLon []float64
}

// NumTasks returns the number of tasks in the decomposition.
func (d *Decomposed) NumTasks() int {
	return len(d.OwnedColumns)
}

// NodeSets gathers the locally owned coordinate slices for one task into
// the three registration bundles. Each call builds fresh slices, so the
// registry is free to consume them.
func (d *Decomposed) NodeSets(task int) (cells, edges, verts *gridreg.NodeSet, err error) {
	if task < 0 || task >= d.NumTasks() {
		return nil, nil, nil, fmt.Errorf("task %d outside 0..%d", task, d.NumTasks()-1)
	}
	cells = gatherNodeSet(gridreg.CellNodes, d.Mesh.NumCellsGlobal,
		d.OwnedColumns[task], d.Mesh.CellLat, d.Mesh.CellLon)
	edges = gatherNodeSet(gridreg.EdgeNodes, d.Mesh.NumEdgesGlobal,
		d.ownedEdges[task], d.edgeLat, d.edgeLon)
	verts = gatherNodeSet(gridreg.VertexNodes, d.Mesh.NumVerticesGlobal,
		d.ownedVerts[task], d.vertLat, d.vertLon)
	return cells, edges, verts, nil
}

func gatherNodeSet(kind gridreg.NodeKind, globalSize int, owned []int,
	lat, lon []float64) *gridreg.NodeSet {

	ns := &gridreg.NodeSet{
		Kind:       kind,
		GlobalSize: globalSize,
		GlobalIDs:  append([]int(nil), owned...),
		LatRad:     make([]float64, len(owned)),
		LonRad:     make([]float64, len(owned)),
	}
	for s, g := range owned {
		ns.LatRad[s] = lat[g-1]
		ns.LonRad[s] = lon[g-1]
	}
	return ns
}

// blockDistribute assigns 1..total contiguously across numTasks lists,
// front-loading the remainder.
func blockDistribute(total, numTasks int) [][]int {
	out := make([][]int, numTasks)
	base := total / numTasks
	rem := total % numTasks
	next := 1
	for t := 0; t < numTasks; t++ {
		n := base
		if t < rem {
			n++
		}
		ids := make([]int, n)
		for i := range ids {
			ids[i] = next
			next++
		}
		out[t] = ids
	}
	return out
}

// latLonOf projects a point onto the unit sphere and returns latitude in
// [-π/2,π/2] and longitude in [0,2π).
func latLonOf(x, y, z float64) (lat, lon float64) {
	r := math.Sqrt(x*x + y*y + z*z)
	lat = math.Asin(z / r)
	lon = math.Atan2(y, x)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lat, lon
}
