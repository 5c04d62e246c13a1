// Package color provides the board-role color assigned to a matched player
package color

// Color is the role a player holds for the lifetime of a session
type Color string

// The two possible role assignments. The earlier-queued player is always
// White and moves first.
const (
	White Color = "white"
	Black Color = "black"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}
