package meshsource

import (
	"fmt"
	"math"

	"github.com/notargets/spheregrid/meshmeta"
)

// Synthetic builds a deterministic decomposition: numTasks tasks, each
// owning columnsPerTask contiguous global cell IDs (task t owns
// t*n+1..(t+1)*n). Cell centers sit on a Fibonacci lattice, every cell
// carries an equal share of the sphere's area, and edge/vertex counts
// follow Euler's formula for a triangulated sphere with N faces.
func Synthetic(numTasks, columnsPerTask, numLevels int) (*Decomposed, error) {
	if numTasks < 1 || columnsPerTask < 1 || numLevels < 1 {
		return nil, fmt.Errorf("invalid synthetic layout: tasks=%d, columns=%d, levels=%d",
			numTasks, columnsPerTask, numLevels)
	}

	numCells := numTasks * columnsPerTask
	// V - E + F = 2 with F = numCells
	numEdges := 3 * numCells / 2
	if numEdges < 1 {
		numEdges = 1
	}
	numVerts := numEdges - numCells + 2

	cellLat, cellLon := fibonacciLattice(numCells)
	edgeLat, edgeLon := fibonacciLattice(numEdges)
	vertLat, vertLon := fibonacciLattice(numVerts)

	area := make([]float64, numCells)
	share := 4 * math.Pi * EarthRadius * EarthRadius / float64(numCells)
	for i := range area {
		area[i] = share
	}

	mesh, err := meshmeta.NewHorizMesh(numCells, numEdges, numVerts,
		columnsPerTask, 6, numLevels, cellLon, cellLat, area, EarthRadius)
	if err != nil {
		return nil, err
	}

	return &Decomposed{
		Mesh:         mesh,
		OwnedColumns: blockDistribute(numCells, numTasks),
		ownedEdges:   blockDistribute(numEdges, numTasks),
		ownedVerts:   blockDistribute(numVerts, numTasks),
		edgeLat:      edgeLat,
		edgeLon:      edgeLon,
		vertLat:      vertLat,
		vertLon:      vertLon,
	}, nil
}

// fibonacciLattice spreads n points quasi-uniformly over the sphere
func fibonacciLattice(n int) (lat, lon []float64) {
	lat = make([]float64, n)
	lon = make([]float64, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		lat[i] = math.Asin(z)
		lon[i] = math.Mod(golden*float64(i), 2*math.Pi)
		if lon[i] < 0 {
			lon[i] += 2 * math.Pi
		}
	}
	return lat, lon
}
