package universe

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

/*
	Conway's Game of Life on a toroidal field
	the field is split into row bands, each band is computed by its own goroutine
	from the current generation into the second buffer; the buffers are swapped when all bands are done
*/

const (
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

//workArea is the band of rows [y1, y2] handled by one worker
type workArea struct {
	y1 int
	y2 int
}

type GameOfLife struct {
	grid
	next      []Cell
	workAreas []workArea
}

//NewGameOfLife creates the all-dead field
//workers <= 0 means one worker per available CPU
func NewGameOfLife(width int, height int, workers int) (*GameOfLife, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g := GameOfLife{
		grid:      newGrid(width, height),
		next:      make([]Cell, width*height),
		workAreas: splitRows(width, height, workers),
	}
	return &g, nil
}

//splitRows splits the field into at most workers bands of rows
func splitRows(width int, height int, workers int) []workArea {
	if width == 0 || height == 0 {
		return nil
	}
	linesPerWorker := height / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < height {
		linesPerWorker++
	}
	areas := make([]workArea, 0, workers)
	for y1 := 0; y1 < height; y1 += linesPerWorker {
		y2 := min(y1+linesPerWorker-1, height-1)
		areas = append(areas, workArea{y1, y2})
	}
	return areas
}

//Workers returns the number of row bands computed in parallel
func (g *GameOfLife) Workers() int {
	return len(g.workAreas)
}

func (g *GameOfLife) Size() (int, int) {
	return g.width, g.height
}

func (g *GameOfLife) Cell(c Coords) (Cell, error) {
	i, err := g.index(c)
	if err != nil {
		return Dead, err
	}
	return g.cells[i], nil
}

func (g *GameOfLife) SetCell(c Coords, cell Cell) error {
	i, err := g.index(c)
	if err != nil {
		return err
	}
	g.cells[i] = cell
	return nil
}

//NeighbourCount counts live cells around c, the field edges wrap to the opposite side
func (g *GameOfLife) NeighbourCount(c Coords) (uint8, error) {
	if _, err := g.index(c); err != nil {
		return 0, err
	}
	var n uint8
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			i, err := g.index(Coords{wrap(c.X+dx, g.width), wrap(c.Y+dy, g.height)})
			if err != nil {
				return 0, err
			}
			if g.cells[i] {
				n++
			}
		}
	}
	return n, nil
}

//NextCell returns the state of the cell in the next generation
func (g *GameOfLife) NextCell(c Coords) (Cell, error) {
	n, err := g.NeighbourCount(c)
	if err != nil {
		return Dead, err
	}
	cell, _ := g.Cell(c)
	return Cell(n == 3 || (n == 2 && cell == Alive)), nil
}

func (g *GameOfLife) State() []Cell {
	return slices.Clone(g.cells)
}

//SetState replaces the field with the row-major state
//the field is not touched when the length doesn't match
func (g *GameOfLife) SetState(state []Cell) error {
	if len(state) != len(g.cells) {
		return fmt.Errorf("%w: got %d cells, want %d", ErrInvalidSize, len(state), len(g.cells))
	}
	copy(g.cells, state)
	return nil
}

func (g *GameOfLife) SetStateWith(cell Cell) {
	for i := range g.cells {
		g.cells[i] = cell
	}
}

//SetStateFn calls f concurrently from the worker goroutines, f must be safe for concurrent use
func (g *GameOfLife) SetStateFn(f func(Coords) Cell) {
	//the callback never fails, so walkAreas has no error to report
	_ = g.walkAreas(func(i int, c Coords) error {
		g.cells[i] = f(c)
		return nil
	})
}

func (g *GameOfLife) NextState() []Cell {
	next := make([]Cell, len(g.cells))
	g.calcNext(next)
	return next
}

func (g *GameOfLife) Population() uint64 {
	var n uint64
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

//Step calculates the next generation into the spare buffer and swaps the buffers
func (g *GameOfLife) Step() {
	g.calcNext(g.next)
	g.cells, g.next = g.next, g.cells
}

//calcNext writes the next generation to dst, reading only the current one
func (g *GameOfLife) calcNext(dst []Cell) {
	err := g.walkAreas(func(i int, c Coords) error {
		next, err := g.NextCell(c)
		if err != nil {
			return err
		}
		dst[i] = next
		return nil
	})
	if err != nil {
		//coordinates come from the field itself, so this is a bug
		panic(fmt.Sprintf("game of life: next generation: %v", err))
	}
}

//walkAreas starts one goroutine per work area and calls cb for each cell of the area
//returns the first error, cb calls of different areas run concurrently
func (g *GameOfLife) walkAreas(cb func(i int, c Coords) error) error {
	var eg errgroup.Group
	for _, wa := range g.workAreas {
		eg.Go(func() error {
			for y := wa.y1; y <= wa.y2; y++ {
				for x := 0; x < g.width; x++ {
					if err := cb(x+y*g.width, Coords{x, y}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
