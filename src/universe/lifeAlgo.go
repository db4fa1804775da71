package universe

import (
	"errors"
	"fmt"
	"sort"
)

//Cell is the state of a single cell
type Cell bool

const (
	Dead  Cell = false
	Alive Cell = true
)

func (c Cell) String() string {
	if c {
		return "Alive"
	}
	return "Dead"
}

//Coords is a position on the field, valid range is [0, width) x [0, height)
type Coords struct {
	X int
	Y int
}

var (
	ErrInvalidCoords   = errors.New("invalid coordinates")
	ErrInvalidSize     = errors.New("invalid size")
	ErrUnknownEngine   = errors.New("unknown engine")
	ErrUnknownTemplate = errors.New("unknown template")
)

//LifeAlgo is the interface to any cellular automaton engine.
//Implementations own their grid exclusively; mutating calls (Step, SetCell, SetState*)
//must not run concurrently with each other or with reads on the same instance.
type LifeAlgo interface {
	Size() (width int, height int)
	Cell(c Coords) (Cell, error)
	SetCell(c Coords, cell Cell) error
	NeighbourCount(c Coords) (uint8, error)
	NextCell(c Coords) (Cell, error)
	//State returns a row-major copy of the current generation
	State() []Cell
	SetState(state []Cell) error
	SetStateWith(cell Cell)
	//SetStateFn sets every cell to f(coords), f is called exactly once per cell
	SetStateFn(f func(Coords) Cell)
	//NextState computes the next generation without committing it
	NextState() []Cell
	Population() uint64
	Step()
}

//Factory creates the engine for the given options
type Factory func(o *Options) (LifeAlgo, error)

var engines = map[string]Factory{
	"parallel": func(o *Options) (LifeAlgo, error) {
		return NewGameOfLife(o.Width, o.Height, o.Workers)
	},
	"serial": func(o *Options) (LifeAlgo, error) {
		return NewGameOfLife(o.Width, o.Height, 1)
	},
}

//RegisterEngine adds the engine factory under the name, replacing an existing one
func RegisterEngine(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	engines[name] = f
}

//Engines returns sorted names of the registered engines
func Engines() []string {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//NewEngine creates the engine registered as o.Engine
func NewEngine(o *Options) (LifeAlgo, error) {
	f, ok := engines[o.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, o.Engine)
	}
	return f(o)
}
