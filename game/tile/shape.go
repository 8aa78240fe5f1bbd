package tile

type (
	// Position is a pair of signed integer coordinates.
	// As part of a shape it is an offset relative to the shape's reference point (0,0);
	// as a hook it is an absolute grid coordinate.
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	// Shape is the ordered collection of offsets that defines which cells a tile occupies
	// relative to its reference point.  Insertion order is preserved and duplicates are allowed.
	Shape []Position
)

// switchAxis swaps the x and y coordinate of every offset.
// Combined with an axis inversion it produces a quarter rotation.
func (s Shape) switchAxis() {
	for i, p := range s {
		s[i] = Position{X: p.Y, Y: p.X}
	}
}

// invertX reflects every offset about the midline of the shape's bounding box on the x axis.
// The bounding box itself does not move.
func (s Shape) invertX() {
	min, max := s.boundsX()
	for i, p := range s {
		upperDiff := max - p.X
		lowerDiff := p.X - min
		if upperDiff < lowerDiff {
			s[i].X = min + upperDiff
		} else {
			s[i].X = max - lowerDiff
		}
	}
}

// invertY reflects every offset about the midline of the shape's bounding box on the y axis.
func (s Shape) invertY() {
	min, max := s.boundsY()
	for i, p := range s {
		upperDiff := max - p.Y
		lowerDiff := p.Y - min
		if upperDiff < lowerDiff {
			s[i].Y = min + upperDiff
		} else {
			s[i].Y = max - lowerDiff
		}
	}
}

// center shifts every offset so the shape's bounding box is symmetric about (0,0).
// Division truncates, so shapes with even spans lean toward the negative side.
func (s Shape) center() {
	if len(s) == 0 {
		return
	}
	minX, maxX := s.boundsX()
	minY, maxY := s.boundsY()
	diffX := maxX - minX
	if maxX < 0 {
		diffX = -minX - -maxX
	}
	diffY := maxY - minY
	if maxY < 0 {
		diffY = -minY - -maxY
	}
	offsetX := -(maxX - diffX/2)
	offsetY := -(maxY - diffY/2)
	for i := range s {
		s[i].X += offsetX
		s[i].Y += offsetY
	}
}

// boundsX computes the minimum and maximum x coordinate of the shape.
// The shape must not be empty.
func (s Shape) boundsX() (min, max int) {
	min, max = s[0].X, s[0].X
	for _, p := range s {
		if p.X < min {
			min = p.X
		}
		if p.X > max {
			max = p.X
		}
	}
	return min, max
}

// boundsY computes the minimum and maximum y coordinate of the shape.
// The shape must not be empty.
func (s Shape) boundsY() (min, max int) {
	min, max = s[0].Y, s[0].Y
	for _, p := range s {
		if p.Y < min {
			min = p.Y
		}
		if p.Y > max {
			max = p.Y
		}
	}
	return min, max
}
