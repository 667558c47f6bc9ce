package domain

// Position is a pair of normalized viewport coordinates in [0,1]
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Scale converts the normalized position into viewport pixels
func (p Position) Scale(width, height float64) (float64, float64) {
	return p.X * width, p.Y * height
}

// InBounds reports whether both coordinates lie in [0,1]
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// LabelOffset is the pixel offset applied when drawing a node's info box
type LabelOffset struct {
	DX float64 `json:"dx" yaml:"dx"`
	DY float64 `json:"dy" yaml:"dy"`
}
