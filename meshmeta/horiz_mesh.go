package meshmeta

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// RadToDeg converts radians to degrees when used with floats.Scale.
const RadToDeg = 180.0 / math.Pi

// HorizMesh holds the process-wide facts about the horizontal mesh,
// gathered once at startup from the mesh store and the initial-condition
// header. It is populated exactly once and read-only thereafter, so any
// number of goroutines may query it concurrently without locking.
type HorizMesh struct {
	// Global entity counts across all tasks
	NumCellsGlobal    int
	NumEdgesGlobal    int
	NumVerticesGlobal int

	// Sizing bounds
	MaxColumnsPerTask int
	MaxEdgesPerCell   int
	NumLevels         int // vertical midpoints; interfaces = NumLevels+1

	// Global per-cell arrays ordered by global cell ID:
	// slot i holds the value for cell i+1 (cell IDs are 1-based)
	CellLon  []float64 // radians
	CellLat  []float64 // radians
	CellArea []float64 // raw area, units of SphereRadius^2

	// Radius used to normalize area to the unit sphere
	SphereRadius float64
}

// NewHorizMesh validates the gathered metadata and freezes it into a
// HorizMesh. An inconsistent gather (mismatched array lengths, nonpositive
// counts or radius) is an initialization failure that cannot be recovered.
func NewHorizMesh(numCells, numEdges, numVertices, maxColumns, maxEdges,
	numLevels int, lon, lat, area []float64, sphereRadius float64) (*HorizMesh, error) {

	if numCells <= 0 || numEdges <= 0 || numVertices <= 0 {
		return nil, fmt.Errorf("invalid global counts: cells=%d, edges=%d, vertices=%d",
			numCells, numEdges, numVertices)
	}
	if maxColumns <= 0 || maxEdges <= 0 || numLevels <= 0 {
		return nil, fmt.Errorf("invalid sizing bounds: maxColumns=%d, maxEdges=%d, levels=%d",
			maxColumns, maxEdges, numLevels)
	}
	if len(lon) != numCells || len(lat) != numCells || len(area) != numCells {
		return nil, fmt.Errorf("per-cell array lengths %d/%d/%d do not match global cell count %d",
			len(lon), len(lat), len(area), numCells)
	}
	if !(sphereRadius > 0) {
		return nil, fmt.Errorf("sphere radius %g must be positive", sphereRadius)
	}

	return &HorizMesh{
		NumCellsGlobal:    numCells,
		NumEdgesGlobal:    numEdges,
		NumVerticesGlobal: numVertices,
		MaxColumnsPerTask: maxColumns,
		MaxEdgesPerCell:   maxEdges,
		NumLevels:         numLevels,
		CellLon:           lon,
		CellLat:           lat,
		CellArea:          area,
		SphereRadius:      sphereRadius,
	}, nil
}

// NumLevelInterfaces returns the vertical interface count, uniform across
// all columns: midpoints plus one.
func (m *HorizMesh) NumLevelInterfaces() int {
	return m.NumLevels + 1
}

// NormalizedArea returns a fresh copy of the per-cell area divided by
// SphereRadius^2, i.e. the solid angle each cell subtends. True division,
// not reciprocal scaling: consumers compare against raw/R^2 exactly.
func (m *HorizMesh) NormalizedArea() []float64 {
	r2 := m.SphereRadius * m.SphereRadius
	out := make([]float64, len(m.CellArea))
	for i, a := range m.CellArea {
		out[i] = a / r2
	}
	return out
}

// CellLatDeg returns a fresh copy of the per-cell latitude in degrees.
func (m *HorizMesh) CellLatDeg() []float64 {
	return ToDegrees(m.CellLat)
}

// CellLonDeg returns a fresh copy of the per-cell longitude in degrees.
func (m *HorizMesh) CellLonDeg() []float64 {
	return ToDegrees(m.CellLon)
}

// ToDegrees converts an angle array from radians to degrees without
// touching the source.
func ToDegrees(rad []float64) []float64 {
	out := make([]float64, len(rad))
	copy(out, rad)
	floats.Scale(RadToDeg, out)
	return out
}
