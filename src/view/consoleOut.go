package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"
	"golife/src/universe"
)

//ConsoleOut is the non-interactive viewer, prints every generation as text
type ConsoleOut struct {
	u         *universe.Universe
	w         io.Writer
	startTime time.Time
	debug     bool //print the dimensions header
	quiet     bool //print progress only, without the field
}

func NewConsoleOut(w io.Writer, debug bool, quiet bool) *ConsoleOut {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOut{w: w, debug: debug, quiet: quiet}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	if st.RunningMode == universe.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
		}
		c.printField(st)
		_, _ = fmt.Fprintln(c.w, aurora.Red("\nFinished:"))
		c.printHashData(resultData)
		return
	}
	if st.RunningMode == universe.RunningStateStep {
		//the state switches to Step before the calculation
		return
	}
	c.printField(st)
}

func (c *ConsoleOut) Register(u *universe.Universe) {
	c.u = u
	o := c.u.Options()
	_, _ = fmt.Fprintln(c.w, aurora.Green("Running configuration:"))
	_, _ = fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	_, _ = fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	_, _ = fmt.Fprintf(c.w, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nSimulation started...")
	c.printField(c.u.Status())
}

func (c *ConsoleOut) printField(st universe.Status) {
	if c.quiet {
		if st.IterationNum%10 == 0 {
			_, _ = fmt.Fprintf(c.w, "  Iterations done: %v\n", st.IterationNum)
		}
		return
	}
	_, _ = fmt.Fprintln(c.w, aurora.Cyan(fmt.Sprintf("Generation %v, live cells: %v", st.IterationNum, st.LiveCells)))
	a := c.u.Snapshot()
	if c.debug {
		_, _ = fmt.Fprintln(c.w, RenderDebug(a))
	} else {
		_, _ = fmt.Fprintln(c.w, Render(a))
	}
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
