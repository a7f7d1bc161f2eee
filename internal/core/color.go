package core

// Color is the foreground color of a screen cell.
// The platform maps it to an ANSI color.
type Color uint8

// Palette shared by every screen.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
	ColorBrightWhite
)

// blockColors indexes by block type; 0 is the empty cell.
var blockColors = [...]Color{
	ColorGray,
	ColorRed,
	ColorGreen,
	ColorYellow,
	ColorBlue,
	ColorMagenta,
	ColorCyan,
	ColorOrange,
	ColorWhite,
}

// BlockColor returns the color used to draw a block type.
func BlockColor(blockType uint8) Color {
	if int(blockType) >= len(blockColors) {
		return ColorBrightWhite
	}
	return blockColors[blockType]
}
