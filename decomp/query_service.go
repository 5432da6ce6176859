package decomp

import (
	"errors"
	"fmt"

	"github.com/notargets/spheregrid/meshmeta"
)

// Sentinel fills for oversized caller buffers
const (
	ColumnFill   = 0  // unused tail of a column list
	SentinelFill = -1 // unused tail of a level list or owner result
)

// ErrUnsupportedQuery tags requests this decomposition defines no answer
// for, such as legacy named parameters of lat/lon grids. Callers treat it
// as fatal; it exists so an unsupported query cannot be mistaken for a
// valid zero answer.
var ErrUnsupportedQuery = errors.New("query not supported for unstructured column decomposition")

// QueryService is the read-only decomposition query surface used by the
// physics/coupling layer. All answers derive from the immutable BlockLayout
// and HorizMesh, so every method is safe for concurrent use.
//
// Buffer-too-small and out-of-range arguments are contract violations by
// the caller, not transient conditions: those methods panic with a
// descriptive message instead of returning an error.
type QueryService struct {
	Layout *BlockLayout
	Mesh   *meshmeta.HorizMesh
}

// NewQueryService checks that the layout and mesh metadata describe the
// same global grid.
func NewQueryService(layout *BlockLayout, mesh *meshmeta.HorizMesh) (*QueryService, error) {
	if layout == nil || mesh == nil {
		return nil, fmt.Errorf("nil layout or mesh metadata")
	}
	if layout.NumColumnsGlobal != mesh.NumCellsGlobal {
		return nil, fmt.Errorf("layout covers %d columns but mesh has %d cells",
			layout.NumColumnsGlobal, mesh.NumCellsGlobal)
	}
	return &QueryService{Layout: layout, Mesh: mesh}, nil
}

// BlockBounds returns the valid 1-based block ID range. Each task owns
// exactly one block, so this is always (1, number of tasks).
func (q *QueryService) BlockBounds() (first, last int) {
	return 1, q.Layout.NumBlocks
}

// ColumnCount returns the number of columns block blockID owns.
func (q *QueryService) ColumnCount(blockID int) int {
	q.Layout.checkBlockID(blockID)
	return q.Layout.ColumnsPerBlock[blockID-1]
}

// ColumnList returns the global column IDs owned by blockID, ordered by
// local slot ascending, in a buffer of bufSize entries. bufSize must be at
// least the block's column count; entries past the count are ColumnFill.
func (q *QueryService) ColumnList(blockID, bufSize int) []int {
	n := q.ColumnCount(blockID)
	if bufSize < n {
		panic(fmt.Sprintf("decomp: column buffer size %d < %d columns in block %d",
			bufSize, n, blockID))
	}
	out := make([]int, bufSize)
	copy(out, q.Layout.GlobalIDsInBlock[blockID-1])
	for i := n; i < bufSize; i++ {
		out[i] = ColumnFill
	}
	return out
}

// LevelCount returns the number of vertical levels for the given column.
// The count is uniform across all columns and blocks: interface levels,
// midpoints plus one.
func (q *QueryService) LevelCount(blockID, slot int) int {
	q.Layout.GlobalID(blockID, slot) // bounds check only
	return q.Mesh.NumLevelInterfaces()
}

// LevelList returns level indices 0..LevelCount-1 ascending in a buffer of
// bufSize entries; entries past the level count are SentinelFill.
func (q *QueryService) LevelList(blockID, slot, bufSize int) []int {
	n := q.LevelCount(blockID, slot)
	if bufSize < n {
		panic(fmt.Sprintf("decomp: level buffer size %d < %d levels", bufSize, n))
	}
	out := make([]int, bufSize)
	for i := 0; i < n; i++ {
		out[i] = i
	}
	for i := n; i < bufSize; i++ {
		out[i] = SentinelFill
	}
	return out
}

// OwnerCount returns the number of blocks that solve the given column:
// always one. Halo copies in neighboring blocks are intentionally not
// counted as owners.
func (q *QueryService) OwnerCount(globalID int) int {
	q.Layout.checkGlobalID(globalID)
	return 1
}

// OwnerLookup resolves each requested global column ID to its owning block
// and local slot. resultSlots is the per-request result width and must be
// at least 1; slots past the first are SentinelFill since ownership is unique.
// The returned arrays are len(globalIDs)*resultSlots, request-major.
func (q *QueryService) OwnerLookup(globalIDs []int, resultSlots int) (blocks, slots []int) {
	if resultSlots < 1 {
		panic(fmt.Sprintf("decomp: owner result width %d < 1", resultSlots))
	}
	blocks = make([]int, len(globalIDs)*resultSlots)
	slots = make([]int, len(globalIDs)*resultSlots)
	for i, g := range globalIDs {
		b, s := q.Layout.Owner(g)
		base := i * resultSlots
		blocks[base], slots[base] = b, s
		for j := 1; j < resultSlots; j++ {
			blocks[base+j], slots[base+j] = SentinelFill, SentinelFill
		}
	}
	return blocks, slots
}

// BlockOwnerTask returns the task that owns a block: task numbering is
// zero-based, block numbering one-based, so this is blockID-1.
func (q *QueryService) BlockOwnerTask(blockID int) int {
	q.Layout.checkBlockID(blockID)
	return blockID - 1
}

// GlobalHorizontalExtent reports the grid extent. An unstructured mesh has
// no native 2-D lon/lat shape, so the grid is one-dimensional: the first
// extent is the global cell count and the second, when requested, is 1.
func (q *QueryService) GlobalHorizontalExtent(wantSecond bool) (dim1, dim2 int) {
	if wantSecond {
		return q.Mesh.NumCellsGlobal, 1
	}
	return q.Mesh.NumCellsGlobal, 0
}

// CoordRequest selects which global coordinate arrays GlobalCoordinates
// fills. Unrequested fields come back nil.
type CoordRequest struct {
	Lat    bool // radians
	Lon    bool // radians
	LatDeg bool
	LonDeg bool
	Area   bool // normalized by SphereRadius^2
	Weight bool // identical to Area: columns carry no separate quadrature weight
}

// CoordSet holds the arrays produced by GlobalCoordinates, each ordered by
// global cell ID.
type CoordSet struct {
	Lat, Lon       []float64
	LatDeg, LonDeg []float64
	Area, Weight   []float64
}

// GlobalCoordinates returns the requested global coordinate arrays. The
// caller states how many columns it expects; a mismatch with the actual
// global count is a contract violation.
func (q *QueryService) GlobalCoordinates(expected int, req CoordRequest) (CoordSet, error) {
	var cs CoordSet
	if expected != q.Mesh.NumCellsGlobal {
		return cs, fmt.Errorf("expected column count %d does not match global cell count %d",
			expected, q.Mesh.NumCellsGlobal)
	}
	if req.Lat {
		cs.Lat = append([]float64(nil), q.Mesh.CellLat...)
	}
	if req.Lon {
		cs.Lon = append([]float64(nil), q.Mesh.CellLon...)
	}
	if req.LatDeg {
		cs.LatDeg = q.Mesh.CellLatDeg()
	}
	if req.LonDeg {
		cs.LonDeg = q.Mesh.CellLonDeg()
	}
	if req.Area {
		cs.Area = q.Mesh.NormalizedArea()
	}
	if req.Weight {
		cs.Weight = q.Mesh.NormalizedArea()
	}
	return cs, nil
}

// NamedParameter answers legacy scalar grid queries. The unstructured
// column decomposition defines none of them, so every name resolves to
// ErrUnsupportedQuery.
func (q *QueryService) NamedParameter(name string) (float64, error) {
	return 0, fmt.Errorf("named parameter %q: %w", name, ErrUnsupportedQuery)
}
