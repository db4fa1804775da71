package universe

import "math/rand/v2"

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string   //template name
	Descr       string   //template descr
	Coordinates []Coords //live cells
}

var (
	TemplateBlock = Template{
		"block",
		"2x2 still life",
		[]Coords{{1, 1}, {2, 1}, {1, 2}, {2, 2}},
	}
	TemplateBlinker = Template{
		"blinker",
		"period 2 oscillator",
		[]Coords{{1, 2}, {2, 2}, {3, 2}},
	}
	TemplateGlider = Template{
		"glider",
		"moves one cell diagonally every 4 generations",
		[]Coords{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},
	}
	TemplateTestSample = Template{
		"testSample",
		"the test sample with 3 stable patterns",
		[]Coords{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}, {4, 2}, {4, 3}, {5, 3}},
	}

	DefaultTemplates = []Template{TemplateBlock, TemplateBlinker, TemplateGlider, TemplateTestSample}
)

//RandomSeeder returns the seeding function for SetStateFn.
//Every cell gets its own PCG stream keyed by the seed and the coordinates,
//so the function keeps no shared state, is safe for concurrent calls
//and produces the same field for the same seed in any call order.
func RandomSeeder(seed uint64) func(Coords) Cell {
	return func(c Coords) Cell {
		key := uint64(uint32(c.X)) | uint64(uint32(c.Y))<<32
		var p rand.PCG
		p.Seed(seed, key)
		return Cell(p.Uint64()&1 == 1)
	}
}
