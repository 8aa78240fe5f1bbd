package tile

// Color is the presentation color of a tile, encoded as 0xRRGGBB.
// The rendering layer owns the interpretation; the game only stores it.
type Color int

// Colors tiles are painted with.
const (
	Red    Color = 0xFF0000
	Green  Color = 0x00FF00
	Blue   Color = 0x0000FF
	Yellow Color = 0xFFFF00
	Purple Color = 0xA020F0
	Orange Color = 0xFFA500
	Cyan   Color = 0x00FFFF
)
