package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/integrii/flaggy"
	"golife/src/universe"
	"golife/src/view"
)

type EnvOptions struct {
	interactive bool
	randomData  bool
	debug       bool
	quiet       bool
	template    string
}

func main() {
	eo, uo := initOptions()

	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.NewUniverse(uo, stateCh)
	if err != nil {
		log.Fatalln(err)
	}

	if eo.randomData {
		u.SettleWithRandomData()
		if stateCh != nil {
			<-stateCh //cleared before the fill
		}
	} else if err := settleTemplate(u, eo.template); err != nil {
		log.Fatalln(err)
	}

	if eo.interactive {
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		v.Start()
		u.Close()
		return
	}

	v := view.NewConsoleOut(nil, eo.debug, eo.quiet)
	u.RegisterViewer(v)
	v.Start()

	startTime := time.Now()
	u.Run()
	for st := range stateCh {
		if st.RunningMode == universe.RunningStateFinished {
			totalTime := time.Since(startTime).Round(time.Millisecond)
			fmt.Printf("Finished, iteration is: %v, total running time: %v\n", st.IterationNum, totalTime)
			break
		}
	}
	u.Close()
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {
	o := universe.DefaultUniverseOptions
	uo = &o
	uo.Seed = uint64(time.Now().UnixNano())
	eo = &EnvOptions{template: universe.TemplateTestSample.Name}

	templateNames := make([]string, 0, len(universe.DefaultTemplates))
	for _, t := range universe.DefaultTemplates {
		templateNames = append(templateNames, t.Name)
	}

	flaggy.SetName("golife")
	flaggy.SetDescription("Conway's Game of Life on a toroidal field")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 runs until the field is stable")
	flaggy.Int(&uo.Workers, "w", "workers", "Number of parallel workers, 0 for one per CPU")
	flaggy.UInt64(&uo.Seed, "", "seed", "Seed for the random data")
	flaggy.String(&uo.Engine, "e", "engine", "Engine to use ["+strings.Join(universe.Engines(), "|")+"]")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.String(&eo.template, "t", "template", "Seeding template ["+strings.Join(templateNames, "|")+"]")
	flaggy.Bool(&eo.debug, "d", "debug", "Print the field dimensions with every generation")
	flaggy.Bool(&eo.quiet, "q", "quiet", "Print the progress only")

	flaggy.Parse()

	if !contains(universe.Engines(), uo.Engine) {
		flaggy.ShowHelpAndExit("unknown engine")
	}
	if uo.Width < 0 || uo.Height < 0 {
		flaggy.ShowHelpAndExit("field size can't be negative")
	}

	return
}

//settleTemplate populates the universe with the template
//cells outside the field are skipped with a warning, an unknown template is an error
func settleTemplate(u *universe.Universe, name string) error {
	err := u.SettleTemplate(name)
	if errors.Is(err, universe.ErrInvalidCoords) {
		log.Printf("template %q doesn't fit the field: %v", name, err)
		return nil
	}
	return err
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
