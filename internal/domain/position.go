package domain

// Position is the canvas location of a node. It is presentation-only and the
// solver ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
