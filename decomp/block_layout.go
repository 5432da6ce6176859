package decomp

import (
	"fmt"
)

// BlockLayout is the global <-> local <-> owner mapping for the column
// decomposition. One block per task: block IDs and local slots are 1-based,
// task IDs are 0-based. Built once from the partitioner's per-task ownership
// lists and immutable afterwards, so concurrent readers need no locking.
type BlockLayout struct {
	NumBlocks        int
	NumColumnsGlobal int

	// ColumnsPerBlock[b-1] is the number of columns block b owns
	ColumnsPerBlock []int

	// GlobalIDsInBlock[b-1][s-1] is the global column ID at slot s of block b,
	// ordered by local slot ascending
	GlobalIDsInBlock [][]int

	// Inverse maps, indexed by global ID - 1
	ownerOfColumn []int // owning block ID
	slotOfColumn  []int // slot within the owning block
}

// NewBlockLayout builds the mapping from per-task ownership lists. The lists
// must form a partition of 1..numColumnsGlobal: counts sum to the global
// total, no global ID claimed twice, no ID out of range. Halo copies held by
// neighboring blocks are not part of the lists; only solve ownership is.
// Any violation means the upstream partition is inconsistent and
// construction fails.
func NewBlockLayout(numColumnsGlobal int, ownedIDs [][]int) (*BlockLayout, error) {
	if numColumnsGlobal <= 0 {
		return nil, fmt.Errorf("global column count %d must be positive", numColumnsGlobal)
	}
	numBlocks := len(ownedIDs)
	if numBlocks == 0 {
		return nil, fmt.Errorf("no ownership lists supplied")
	}

	bl := &BlockLayout{
		NumBlocks:        numBlocks,
		NumColumnsGlobal: numColumnsGlobal,
		ColumnsPerBlock:  make([]int, numBlocks),
		GlobalIDsInBlock: make([][]int, numBlocks),
		ownerOfColumn:    make([]int, numColumnsGlobal),
		slotOfColumn:     make([]int, numColumnsGlobal),
	}

	total := 0
	for b, ids := range ownedIDs {
		bl.ColumnsPerBlock[b] = len(ids)
		total += len(ids)

		owned := make([]int, len(ids))
		copy(owned, ids)
		bl.GlobalIDsInBlock[b] = owned

		for s, g := range owned {
			if g < 1 || g > numColumnsGlobal {
				return nil, fmt.Errorf("block %d slot %d: global column ID %d outside 1..%d",
					b+1, s+1, g, numColumnsGlobal)
			}
			if prev := bl.ownerOfColumn[g-1]; prev != 0 {
				return nil, fmt.Errorf("global column %d claimed by both block %d and block %d",
					g, prev, b+1)
			}
			bl.ownerOfColumn[g-1] = b + 1
			bl.slotOfColumn[g-1] = s + 1
		}
	}

	if total != numColumnsGlobal {
		return nil, fmt.Errorf("ownership lists cover %d columns, expected %d", total, numColumnsGlobal)
	}
	// Cover + no overlap implies no gap; ownerOfColumn has no zero left

	return bl, nil
}

// Owner returns the owning block ID and local slot of a global column.
// Both are 1-based. Panics if the ID is out of range.
func (bl *BlockLayout) Owner(globalID int) (blockID, slot int) {
	bl.checkGlobalID(globalID)
	return bl.ownerOfColumn[globalID-1], bl.slotOfColumn[globalID-1]
}

// GlobalID returns the global column ID at the given slot of a block.
func (bl *BlockLayout) GlobalID(blockID, slot int) int {
	bl.checkBlockID(blockID)
	if slot < 1 || slot > bl.ColumnsPerBlock[blockID-1] {
		panic(fmt.Sprintf("decomp: slot %d outside 1..%d for block %d",
			slot, bl.ColumnsPerBlock[blockID-1], blockID))
	}
	return bl.GlobalIDsInBlock[blockID-1][slot-1]
}

// Validate re-checks the round-trip invariant: for every global column,
// indexing its owner's list at its slot returns the column itself.
func (bl *BlockLayout) Validate() error {
	for g := 1; g <= bl.NumColumnsGlobal; g++ {
		b, s := bl.ownerOfColumn[g-1], bl.slotOfColumn[g-1]
		if bl.GlobalIDsInBlock[b-1][s-1] != g {
			return fmt.Errorf("round-trip failure: column %d maps to block %d slot %d which holds %d",
				g, b, s, bl.GlobalIDsInBlock[b-1][s-1])
		}
	}
	return nil
}

func (bl *BlockLayout) checkBlockID(blockID int) {
	if blockID < 1 || blockID > bl.NumBlocks {
		panic(fmt.Sprintf("decomp: block ID %d outside bounds [1,%d]", blockID, bl.NumBlocks))
	}
}

func (bl *BlockLayout) checkGlobalID(globalID int) {
	if globalID < 1 || globalID > bl.NumColumnsGlobal {
		panic(fmt.Sprintf("decomp: global column ID %d outside 1..%d", globalID, bl.NumColumnsGlobal))
	}
}
