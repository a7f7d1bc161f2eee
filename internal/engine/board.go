// Package engine implements the falling-block simulation: the board grid,
// the active figure with its collision and rotation rules, row collapse and
// the scoring policy. It is pure logic with no I/O.
package engine

// Board and figure dimensions.
const (
	MapWidth   = 10
	MapHeight  = 16
	FigureSize = 3
)

// Difficulty is the number of distinct block types in play.
const (
	MinBlockTypes = 4
	MaxBlockTypes = 8
)

// Grid is the raw cell storage of a board, row-major with row 0 on top.
// A cell holds 0 for empty or a block type 1..MaxBlockTypes.
type Grid [MapHeight][MapWidth]uint8

// Board is the fixed-size playfield.
type Board struct {
	cells Grid

	// Violation, when set, is called for Place/Clear outside the grid.
	// Such calls are otherwise ignored.
	Violation func(op string, x, y int)
}

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < MapWidth && y >= 0 && y < MapHeight
}

// IsOccupied reports whether a cell holds a block.
// Coordinates outside the board count as occupied.
func (b *Board) IsOccupied(x, y int) bool {
	if !InBounds(x, y) {
		return true
	}
	return b.cells[y][x] != 0
}

// At returns the block type at (x, y), or 0 outside the board.
func (b *Board) At(x, y int) uint8 {
	if !InBounds(x, y) {
		return 0
	}
	return b.cells[y][x]
}

// Place writes a block type into a cell.
func (b *Board) Place(x, y int, t uint8) {
	if !InBounds(x, y) {
		b.violate("place", x, y)
		return
	}
	b.cells[y][x] = t
}

// Clear empties a cell.
func (b *Board) Clear(x, y int) {
	if !InBounds(x, y) {
		b.violate("clear", x, y)
		return
	}
	b.cells[y][x] = 0
}

// Reset empties the whole board.
func (b *Board) Reset() {
	b.cells = Grid{}
}

// RowFull reports whether every cell of row y is occupied.
func (b *Board) RowFull(y int) bool {
	if y < 0 || y >= MapHeight {
		return false
	}
	for x := 0; x < MapWidth; x++ {
		if b.cells[y][x] == 0 {
			return false
		}
	}
	return true
}

// Cells returns a copy of the grid.
func (b *Board) Cells() Grid {
	return b.cells
}

// Load replaces the grid wholesale, e.g. from a save.
func (b *Board) Load(g Grid) {
	b.cells = g
}

// Count returns the number of occupied cells.
func (b *Board) Count() int {
	n := 0
	for y := range b.cells {
		for _, c := range b.cells[y] {
			if c != 0 {
				n++
			}
		}
	}
	return n
}

func (b *Board) violate(op string, x, y int) {
	if b.Violation != nil {
		b.Violation(op, x, y)
	}
}
