package view

import (
	"fmt"
	"strings"

	"golife/src/universe"
)

const (
	AliveSymbol = '#'
	DeadSymbol  = ' '
)

//StateReader is the read-only access to the field the renderers need
type StateReader interface {
	Size() (width int, height int)
	State() []universe.Cell
}

//Render returns the field as text, one line per row, cells separated by a space
func Render(r StateReader) string {
	w, h := r.Size()
	state := r.State()
	var b strings.Builder
	b.Grow(2 * w * h)
	for y := 0; y < h; y++ {
		//line feed char
		if y != 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			if x != 0 {
				b.WriteByte(' ')
			}
			if state[x+y*w] {
				b.WriteByte(AliveSymbol)
			} else {
				b.WriteByte(DeadSymbol)
			}
		}
	}
	return b.String()
}

//RenderDebug is Render with the dimensions header
func RenderDebug(r StateReader) string {
	w, h := r.Size()
	return fmt.Sprintf("Dimensions: %dx%d\n", w, h) + Render(r)
}
