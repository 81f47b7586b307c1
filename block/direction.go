package block

// Dir indexes the eight directions a block can connect to a neighbour in.
// Only the first four (LEFT..RIGHT_UP) are stored per block in the vertex
// cost table; the remaining four are derived via the mirror rule in
// Vertex.Cost.
type Dir int8

const (
	Left Dir = iota
	LeftUp
	Up
	RightUp
	Right
	RightDown
	Down
	LeftDown
)

// stored reports whether dir has a directly-stored slot in the vertex
// table (the first four directions) as opposed to being derived from the
// neighbour's mirrored slot.
func (d Dir) stored() bool { return d < Right }

// Opposite returns the direction that points back along d.
func (d Dir) Opposite() Dir {
	return (d + 4) % 8
}

// deltas holds the block-coordinate offset of each dir, i.e. Δ(dir) from §4.B.
var deltas = [8][2]int32{
	Left:      {-1, 0},
	LeftUp:    {-1, -1},
	Up:        {0, -1},
	RightUp:   {1, -1},
	Right:     {1, 0},
	RightDown: {1, 1},
	Down:      {0, 1},
	LeftDown:  {-1, 1},
}

// Delta returns (dx, dz) for dir.
func (d Dir) Delta() (int32, int32) {
	v := deltas[d]
	return v[0], v[1]
}

// IsDiagonal reports whether dir is one of the four diagonal directions.
func (d Dir) IsDiagonal() bool {
	switch d {
	case LeftUp, RightUp, RightDown, LeftDown:
		return true
	default:
		return false
	}
}

// AllDirs enumerates all eight directions in the order §4.F's TestBlock
// loop expects them to be tried.
var AllDirs = [8]Dir{Left, LeftUp, Up, RightUp, Right, RightDown, Down, LeftDown}
