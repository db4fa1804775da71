package universe

import "fmt"

//grid is the flat row-major cell storage, index = x + y*width
type grid struct {
	width  int
	height int
	cells  []Cell
}

func newGrid(width int, height int) grid {
	return grid{width: width, height: height, cells: make([]Cell, width*height)}
}

//index converts coordinates to the buffer offset
func (g *grid) index(c Coords) (int, error) {
	if c.X < 0 || c.Y < 0 || c.X >= g.width || c.Y >= g.height {
		return 0, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrInvalidCoords, c.X, c.Y, g.width, g.height)
	}
	return c.X + c.Y*g.width, nil
}

//coords converts the buffer offset back to coordinates
func (g *grid) coords(i int) Coords {
	return Coords{X: i % g.width, Y: i / g.width}
}

//wrap reduces offset into [0, bound), negative offsets wrap from the end
func wrap(offset int, bound int) int {
	m := offset % bound
	if m < 0 {
		m += bound
	}
	return m
}
