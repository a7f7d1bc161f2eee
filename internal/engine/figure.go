package engine

// ByteSource supplies random bytes for figure generation.
type ByteSource interface {
	NextByte() byte
}

// Orientation of a figure.
type Orientation uint8

const (
	Vertical   Orientation = iota // Cells extend along +Y from the anchor
	Horizontal                    // Cells extend along +X from the anchor
)

// Direction of a figure move.
type Direction int

const (
	Left Direction = iota
	Right
	Down
)

func (d Direction) delta() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 1
	}
}

// Point is a board coordinate.
type Point struct {
	X, Y int
}

// Figure is the active falling piece: FigureSize blocks in a line.
type Figure struct {
	Blocks [FigureSize]uint8
	X, Y   int
	Orient Orientation
}

// Generate draws a new figure from src. Each block type is 1 + b%blockTypes;
// one more byte picks the orientation. The figure spawns at the top centre.
func Generate(src ByteSource, blockTypes int) Figure {
	blockTypes = ClampBlockTypes(blockTypes)

	var f Figure
	for i := range f.Blocks {
		f.Blocks[i] = uint8(1 + int(src.NextByte())%blockTypes)
	}
	f.Orient = Orientation(src.NextByte() & 1)
	f.X, f.Y = spawnAnchor(f.Orient)
	return f
}

func spawnAnchor(o Orientation) (x, y int) {
	if o == Horizontal {
		return (MapWidth - FigureSize) / 2, 0
	}
	return MapWidth / 2, 0
}

// ClampBlockTypes restricts a difficulty to the supported range.
func ClampBlockTypes(n int) int {
	if n < MinBlockTypes {
		return MinBlockTypes
	}
	if n > MaxBlockTypes {
		return MaxBlockTypes
	}
	return n
}

func cellsAt(x, y int, o Orientation) [FigureSize]Point {
	var pts [FigureSize]Point
	for i := range pts {
		if o == Horizontal {
			pts[i] = Point{x + i, y}
		} else {
			pts[i] = Point{x, y + i}
		}
	}
	return pts
}

// Cells returns the board coordinates the figure occupies, in block order.
func (f *Figure) Cells() [FigureSize]Point {
	return cellsAt(f.X, f.Y, f.Orient)
}

func fitsAt(b *Board, x, y int, o Orientation) bool {
	for _, p := range cellsAt(x, y, o) {
		if b.IsOccupied(p.X, p.Y) {
			return false
		}
	}
	return true
}

// Fits reports whether every figure cell is on the board and empty.
func (f *Figure) Fits(b *Board) bool {
	return fitsAt(b, f.X, f.Y, f.Orient)
}

// CanMove reports whether the figure can shift one cell in dir.
// The board never holds the figure's own cells, so no exclusion is needed.
func (f *Figure) CanMove(b *Board, dir Direction) bool {
	dx, dy := dir.delta()
	return fitsAt(b, f.X+dx, f.Y+dy, f.Orient)
}

// Move shifts the anchor one cell in dir. Call only after CanMove.
func (f *Figure) Move(dir Direction) {
	dx, dy := dir.delta()
	f.X += dx
	f.Y += dy
}

// CanRotate computes the anchor after toggling orientation around the middle
// block, clamped into the board, and validates the resulting cells.
func (f *Figure) CanRotate(b *Board) (ok bool, x, y int) {
	mid := FigureSize / 2
	next := Horizontal
	if f.Orient == Horizontal {
		next = Vertical
		x, y = f.X+mid, f.Y-mid
	} else {
		x, y = f.X-mid, f.Y+mid
	}

	maxX, maxY := MapWidth-1, MapHeight-1
	if next == Horizontal {
		maxX = MapWidth - FigureSize
	} else {
		maxY = MapHeight - FigureSize
	}
	x = clamp(x, 0, maxX)
	y = clamp(y, 0, maxY)

	if !fitsAt(b, x, y, next) {
		return false, f.X, f.Y
	}
	return true, x, y
}

// Rotate toggles orientation and moves the anchor to (x, y) in one step.
// Call only with coordinates accepted by CanRotate.
func (f *Figure) Rotate(x, y int) {
	if f.Orient == Horizontal {
		f.Orient = Vertical
	} else {
		f.Orient = Horizontal
	}
	f.X, f.Y = x, y
}

// TryRotate rotates if possible and reports whether it did.
func (f *Figure) TryRotate(b *Board) bool {
	ok, x, y := f.CanRotate(b)
	if ok {
		f.Rotate(x, y)
	}
	return ok
}

// FreezeInto copies the figure's blocks into the board.
func (f *Figure) FreezeInto(b *Board) {
	for i, p := range f.Cells() {
		b.Place(p.X, p.Y, f.Blocks[i])
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
