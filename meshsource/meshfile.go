package meshsource

import (
	"fmt"
	"log"
	"math"

	"github.com/notargets/gocfd/DG3D/mesh/partitioner"
	"github.com/notargets/gocfd/DG3D/mesh/readers"

	"github.com/notargets/spheregrid/meshmeta"
)

// FromMeshFile reads a gocfd-supported mesh (gambit/gmsh/su2), partitions
// it with METIS into numTasks blocks when the file carries no EToP, and
// projects element centroids, face midpoints, and vertices onto the unit
// sphere to produce cell/edge/vertex coordinates. Per-cell area is the
// equal solid-angle share; a mesh store with true dual-mesh areas replaces
// it upstream.
func FromMeshFile(path string, numTasks, numLevels int) (*Decomposed, error) {
	if numTasks < 1 || numLevels < 1 {
		return nil, fmt.Errorf("invalid decomposition request: tasks=%d, levels=%d", numTasks, numLevels)
	}

	msh, err := readers.ReadMeshFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh %s: %w", path, err)
	}
	if msh.NumFaces == 0 {
		msh.BuildConnectivity()
	}

	if len(msh.EToP) != msh.NumElements {
		mp := partitioner.NewMeshPartitioner(msh, partitioner.DefaultPartitionConfig(int32(numTasks)))
		if err := mp.Partition(); err != nil {
			return nil, fmt.Errorf("partitioning %s into %d blocks: %w", path, numTasks, err)
		}
	}
	log.Printf("mesh %s: %d cells, %d edges, %d vertices across %d tasks",
		path, msh.NumElements, msh.NumFaces, msh.NumVertices, numTasks)

	d := &Decomposed{
		OwnedColumns: make([][]int, numTasks),
		ownedEdges:   make([][]int, numTasks),
		ownedVerts:   make([][]int, numTasks),
	}

	// Cell centers: element centroids on the unit sphere
	cellLat := make([]float64, msh.NumElements)
	cellLon := make([]float64, msh.NumElements)
	maxEdgesPerCell := 0
	for e, verts := range msh.EtoV {
		var cx, cy, cz float64
		for _, v := range verts {
			cx += msh.Vertices[v][0]
			cy += msh.Vertices[v][1]
			cz += msh.Vertices[v][2]
		}
		n := float64(len(verts))
		cellLat[e], cellLon[e] = latLonOf(cx/n, cy/n, cz/n)
		if len(verts) > maxEdgesPerCell {
			maxEdgesPerCell = len(verts)
		}
	}

	// Solve ownership straight from the partitioner's element map; slot
	// order is ascending global ID within each task
	for e, t := range msh.EToP {
		if t < 0 || t >= numTasks {
			return nil, fmt.Errorf("element %d assigned to partition %d, expected 0..%d",
				e, t, numTasks-1)
		}
		d.OwnedColumns[t] = append(d.OwnedColumns[t], e+1)
	}
	maxColumns := 0
	for t, owned := range d.OwnedColumns {
		if len(owned) == 0 {
			return nil, fmt.Errorf("task %d owns no cells; partition too fine for %d elements",
				t, msh.NumElements)
		}
		if len(owned) > maxColumns {
			maxColumns = len(owned)
		}
	}

	// Edges: unique faces, midpoint projected; owned by the parent
	// element's task
	d.edgeLat = make([]float64, msh.NumFaces)
	d.edgeLon = make([]float64, msh.NumFaces)
	for f, face := range msh.Faces {
		var cx, cy, cz float64
		for _, v := range face.Vertices {
			cx += msh.Vertices[v][0]
			cy += msh.Vertices[v][1]
			cz += msh.Vertices[v][2]
		}
		n := float64(len(face.Vertices))
		d.edgeLat[f], d.edgeLon[f] = latLonOf(cx/n, cy/n, cz/n)
		d.ownedEdges[msh.EToP[face.Element]] = append(d.ownedEdges[msh.EToP[face.Element]], f+1)
	}

	// Vertices: owned by the task of the first element that references them
	d.vertLat = make([]float64, msh.NumVertices)
	d.vertLon = make([]float64, msh.NumVertices)
	vertOwner := make([]int, msh.NumVertices)
	for i := range vertOwner {
		vertOwner[i] = -1
	}
	for e, verts := range msh.EtoV {
		for _, v := range verts {
			if vertOwner[v] < 0 {
				vertOwner[v] = msh.EToP[e]
			}
		}
	}
	for v := 0; v < msh.NumVertices; v++ {
		d.vertLat[v], d.vertLon[v] = latLonOf(
			msh.Vertices[v][0], msh.Vertices[v][1], msh.Vertices[v][2])
		t := vertOwner[v]
		if t < 0 {
			t = 0 // unreferenced vertex, park it on task 0
		}
		d.ownedVerts[t] = append(d.ownedVerts[t], v+1)
	}

	area := make([]float64, msh.NumElements)
	share := 4 * math.Pi * EarthRadius * EarthRadius / float64(msh.NumElements)
	for i := range area {
		area[i] = share
	}

	d.Mesh, err = meshmeta.NewHorizMesh(msh.NumElements, msh.NumFaces, msh.NumVertices,
		maxColumns, maxEdgesPerCell, numLevels, cellLon, cellLat, area, EarthRadius)
	if err != nil {
		return nil, err
	}
	return d, nil
}
