package engine

// Collapse removes every full row and compacts the rest downward.
// Each column is rebuilt bottom-up with a destination pointer that skips
// removed rows; the vacated top rows are emptied. Returns the rows removed.
func Collapse(b *Board) int {
	var full [MapHeight]bool
	n := 0
	for y := 0; y < MapHeight; y++ {
		if b.RowFull(y) {
			full[y] = true
			n++
		}
	}
	if n == 0 {
		return 0
	}

	for x := 0; x < MapWidth; x++ {
		dst := MapHeight - 1
		for y := MapHeight - 1; y >= 0; y-- {
			if full[y] {
				continue
			}
			b.cells[dst][x] = b.cells[y][x]
			dst--
		}
		for ; dst >= 0; dst-- {
			b.cells[dst][x] = 0
		}
	}
	return n
}
