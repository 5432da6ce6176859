package decomp

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/spheregrid/meshmeta"
)

// testService builds the reference scenario: 4 tasks, 40 global columns,
// each task owning 10 contiguous IDs
func testService(t *testing.T) *QueryService {
	t.Helper()
	const numCells = 40
	lat := make([]float64, numCells)
	lon := make([]float64, numCells)
	area := make([]float64, numCells)
	for i := 0; i < numCells; i++ {
		lat[i] = -math.Pi/2 + math.Pi*float64(i)/float64(numCells-1)
		lon[i] = 2 * math.Pi * float64(i) / float64(numCells)
		area[i] = 1.0e12 + float64(i)
	}
	mesh, err := meshmeta.NewHorizMesh(numCells, 60, 22, 10, 6, 32,
		lon, lat, area, 6.37122e6)
	if err != nil {
		t.Fatalf("NewHorizMesh failed: %v", err)
	}
	layout, err := NewBlockLayout(numCells, contiguousLists(4, 10))
	if err != nil {
		t.Fatalf("NewBlockLayout failed: %v", err)
	}
	qs, err := NewQueryService(layout, mesh)
	if err != nil {
		t.Fatalf("NewQueryService failed: %v", err)
	}
	return qs
}

func TestQueryService_CountMismatch(t *testing.T) {
	layout, _ := NewBlockLayout(6, contiguousLists(2, 3))
	mesh, err := meshmeta.NewHorizMesh(8, 12, 6, 4, 6, 10,
		make([]float64, 8), make([]float64, 8), make([]float64, 8), 1.0)
	if err != nil {
		t.Fatalf("NewHorizMesh failed: %v", err)
	}
	if _, err := NewQueryService(layout, mesh); err == nil {
		t.Error("Expected error for layout/mesh count mismatch")
	}
}

func TestQueryService_BlockBounds(t *testing.T) {
	qs := testService(t)
	first, last := qs.BlockBounds()
	if first != 1 || last != 4 {
		t.Errorf("BlockBounds() = (%d,%d), expected (1,4)", first, last)
	}
}

func TestQueryService_ColumnCountSumsToGlobal(t *testing.T) {
	qs := testService(t)
	first, last := qs.BlockBounds()
	total := 0
	for b := first; b <= last; b++ {
		total += qs.ColumnCount(b)
	}
	if total != qs.Mesh.NumCellsGlobal {
		t.Errorf("column counts sum to %d, expected %d", total, qs.Mesh.NumCellsGlobal)
	}
}

func TestQueryService_ColumnList(t *testing.T) {
	qs := testService(t)

	t.Run("ExactBuffer", func(t *testing.T) {
		if n := qs.ColumnCount(2); n != 10 {
			t.Fatalf("ColumnCount(2) = %d, expected 10", n)
		}
		list := qs.ColumnList(2, 10)
		for i := 0; i < 10; i++ {
			if list[i] != 11+i {
				t.Errorf("ColumnList(2,10)[%d] = %d, expected %d", i, list[i], 11+i)
			}
		}
	})

	t.Run("OversizedBufferSentinel", func(t *testing.T) {
		list := qs.ColumnList(2, 12)
		for i := 0; i < 10; i++ {
			if list[i] != 11+i {
				t.Errorf("slot %d: got %d, expected %d", i+1, list[i], 11+i)
			}
		}
		if list[10] != ColumnFill || list[11] != ColumnFill {
			t.Errorf("tail = [%d %d], expected sentinel %d", list[10], list[11], ColumnFill)
		}
	})

	t.Run("BufferTooSmall", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for buffer size 5 < 10 columns")
			}
		}()
		qs.ColumnList(2, 5)
	})
}

func TestQueryService_Levels(t *testing.T) {
	qs := testService(t)
	plev := qs.Mesh.NumLevels

	if n := qs.LevelCount(1, 1); n != plev+1 {
		t.Errorf("LevelCount = %d, expected %d interfaces", n, plev+1)
	}

	t.Run("AscendingWithSentinelTail", func(t *testing.T) {
		buf := qs.LevelList(1, 1, plev+4)
		for i := 0; i <= plev; i++ {
			if buf[i] != i {
				t.Errorf("level[%d] = %d, expected %d", i, buf[i], i)
			}
		}
		for i := plev + 1; i < plev+4; i++ {
			if buf[i] != SentinelFill {
				t.Errorf("tail[%d] = %d, expected %d", i, buf[i], SentinelFill)
			}
		}
	})

	t.Run("BufferTooSmall", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for level buffer smaller than interface count")
			}
		}()
		qs.LevelList(1, 1, plev)
	})
}

func TestQueryService_OwnerLookup(t *testing.T) {
	qs := testService(t)

	t.Run("SingleColumn", func(t *testing.T) {
		blocks, slots := qs.OwnerLookup([]int{15}, 1)
		if blocks[0] != 2 || slots[0] != 5 {
			t.Errorf("OwnerLookup([15]) = (%d,%d), expected (2,5)", blocks[0], slots[0])
		}
	})

	t.Run("ExtraSlotsSentinel", func(t *testing.T) {
		blocks, slots := qs.OwnerLookup([]int{15, 40}, 3)
		if blocks[0] != 2 || slots[0] != 5 {
			t.Errorf("request 0: (%d,%d), expected (2,5)", blocks[0], slots[0])
		}
		if blocks[3] != 4 || slots[3] != 10 {
			t.Errorf("request 1: (%d,%d), expected (4,10)", blocks[3], slots[3])
		}
		for _, i := range []int{1, 2, 4, 5} {
			if blocks[i] != SentinelFill || slots[i] != SentinelFill {
				t.Errorf("extra slot %d = (%d,%d), expected sentinel", i, blocks[i], slots[i])
			}
		}
	})

	t.Run("RoundTripAllColumns", func(t *testing.T) {
		for g := 1; g <= qs.Mesh.NumCellsGlobal; g++ {
			if qs.OwnerCount(g) != 1 {
				t.Fatalf("OwnerCount(%d) != 1", g)
			}
			blocks, slots := qs.OwnerLookup([]int{g}, 1)
			list := qs.ColumnList(blocks[0], qs.ColumnCount(blocks[0]))
			if list[slots[0]-1] != g {
				t.Errorf("column %d: owner (%d,%d) holds %d", g, blocks[0], slots[0], list[slots[0]-1])
			}
		}
	})

	t.Run("EmptyResultWidth", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for result width 0")
			}
		}()
		qs.OwnerLookup([]int{1}, 0)
	})
}

func TestQueryService_BlockOwnerTask(t *testing.T) {
	qs := testService(t)
	first, last := qs.BlockBounds()
	for b := first; b <= last; b++ {
		if task := qs.BlockOwnerTask(b); task != b-1 {
			t.Errorf("BlockOwnerTask(%d) = %d, expected %d", b, task, b-1)
		}
	}
}

func TestQueryService_GlobalHorizontalExtent(t *testing.T) {
	qs := testService(t)
	d1, d2 := qs.GlobalHorizontalExtent(true)
	if d1 != 40 || d2 != 1 {
		t.Errorf("extent = (%d,%d), expected (40,1)", d1, d2)
	}
	d1, _ = qs.GlobalHorizontalExtent(false)
	if d1 != 40 {
		t.Errorf("extent dim1 = %d, expected 40", d1)
	}
}

func TestQueryService_GlobalCoordinates(t *testing.T) {
	qs := testService(t)

	t.Run("ExpectedCountMismatch", func(t *testing.T) {
		if _, err := qs.GlobalCoordinates(39, CoordRequest{Lat: true}); err == nil {
			t.Error("Expected error for expected count 39 != 40")
		}
	})

	t.Run("DegreesExact", func(t *testing.T) {
		cs, err := qs.GlobalCoordinates(40, CoordRequest{Lat: true, LatDeg: true, LonDeg: true})
		if err != nil {
			t.Fatalf("GlobalCoordinates failed: %v", err)
		}
		for i := range cs.Lat {
			if want := cs.Lat[i] * meshmeta.RadToDeg; cs.LatDeg[i] != want {
				t.Errorf("lat[%d] degrees = %v, expected %v", i, cs.LatDeg[i], want)
			}
			if want := qs.Mesh.CellLon[i] * meshmeta.RadToDeg; cs.LonDeg[i] != want {
				t.Errorf("lon[%d] degrees = %v, expected %v", i, cs.LonDeg[i], want)
			}
		}
	})

	t.Run("AreaWeightNormalized", func(t *testing.T) {
		cs, err := qs.GlobalCoordinates(40, CoordRequest{Area: true, Weight: true})
		if err != nil {
			t.Fatalf("GlobalCoordinates failed: %v", err)
		}
		r2 := qs.Mesh.SphereRadius * qs.Mesh.SphereRadius
		for i := range cs.Area {
			if want := qs.Mesh.CellArea[i] / r2; cs.Area[i] != want {
				t.Errorf("area[%d] = %v, expected %v", i, cs.Area[i], want)
			}
			if cs.Weight[i] != cs.Area[i] {
				t.Errorf("weight[%d] = %v != area %v", i, cs.Weight[i], cs.Area[i])
			}
		}
	})

	t.Run("UnrequestedFieldsNil", func(t *testing.T) {
		cs, err := qs.GlobalCoordinates(40, CoordRequest{Lon: true})
		if err != nil {
			t.Fatalf("GlobalCoordinates failed: %v", err)
		}
		if cs.Lon == nil {
			t.Error("requested Lon came back nil")
		}
		if cs.Lat != nil || cs.Area != nil || cs.Weight != nil || cs.LatDeg != nil {
			t.Error("unrequested fields were populated")
		}
	})
}

func TestQueryService_NamedParameter(t *testing.T) {
	qs := testService(t)
	_, err := qs.NamedParameter("num_lats")
	if !errors.Is(err, ErrUnsupportedQuery) {
		t.Errorf("expected ErrUnsupportedQuery, got %v", err)
	}
}
