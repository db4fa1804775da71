package universe

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

//Area is a read-only snapshot of the field
type Area struct {
	Width  int
	Height int
	Cells  []Cell //row-major
}

func (a Area) Size() (int, int) {
	return a.Width, a.Height
}

func (a Area) State() []Cell {
	return a.Cells
}

//Cell returns the cell at x, y, Dead outside the area
func (a Area) Cell(x int, y int) Cell {
	if x < 0 || y < 0 || x >= a.Width || y >= a.Height {
		return Dead
	}
	return a.Cells[x+y*a.Width]
}

//Options represents the Universe's configurable options
type Options struct {
	Width    int
	Height   int
	Workers  int    //parallel workers, 0 is one per CPU
	Engine   string //registered engine name
	Interval time.Duration
	MaxSteps int    //0 is unlimited
	Seed     uint64 //seed for SettleWithRandomData
	//advanced options (engine specific)
	Advanced map[string]interface{}
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     uint64
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u *Universe)
	Start()
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
	DefEngine             = "parallel"
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

var DefaultUniverseOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Engine:   DefEngine,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

//Universe drives a LifeAlgo engine.
//All the engine mutations are done by the main loop goroutine or under the area lock,
//so the engine always has a single writer.
type Universe struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	area struct {
		algo LifeAlgo
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer //guarded by the area lock
	templates map[string]Template
	controlCh chan func()
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

//NewUniverse creates the Universe instance with the engine selected by o.Engine
//and starts the main loop. stateCh may be nil; otherwise it must be read,
//every running state switch is written to it.
func NewUniverse(o *Options, stateCh chan Status) (*Universe, error) {
	if o == nil {
		def := DefaultUniverseOptions
		o = &def
	}
	if o.Engine == "" {
		o.Engine = DefEngine
	}
	algo, err := NewEngine(o)
	if err != nil {
		return nil, err
	}
	o.Advanced = make(map[string]interface{})
	o.Advanced["engine"] = o.Engine
	if gol, ok := algo.(*GameOfLife); ok {
		o.Advanced["Workers"] = gol.Workers()
	}

	u := Universe{
		options:   *o,
		stateCh:   stateCh,
		templates: map[string]Template{},
		controlCh: make(chan func()),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	u.area.algo = algo
	for _, t := range DefaultTemplates {
		u.AddTemplate(t)
	}
	go u.mainLoop()
	return &u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *Universe) AddTemplate(tmpl Template) {
	u.area.Lock()
	u.templates[tmpl.Name] = tmpl
	u.area.Unlock()
}

//Settle makes the cells at the coordinates alive
//out of range coordinates are skipped and reported in the returned error
func (u *Universe) Settle(vc []Coords) error {
	u.area.Lock()
	err := u.settle(vc, Alive)
	u.area.Unlock()
	u.updateLiveCells()
	u.refreshView()
	return err
}

//SettleTemplate populates the universe with the seeding template
func (u *Universe) SettleTemplate(name string) error {
	u.area.Lock()
	tmpl, ok := u.templates[name]
	u.area.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return u.Settle(tmpl.Coordinates)
}

//SettleWithRandomData clears the universe and populates it with random data from Options.Seed
//returns when the field is filled, does nothing while the simulation is running
//the clearing writes the Status to the stateCh
func (u *Universe) SettleWithRandomData() {
	done := make(chan struct{}, 1)
	ok := u.exec(func() {
		defer func() { done <- struct{}{} }()
		mode := u.Status().RunningMode
		if mode != RunningStateManual && mode != RunningStateFinished {
			return
		}
		u.clear()
		u.area.Lock()
		u.area.algo.SetStateFn(RandomSeeder(u.options.Seed))
		u.area.Unlock()
		u.updateLiveCells()
		u.refreshView()
	})
	if ok {
		<-done
	}
}

//InverseCell inverses the cell state at c
func (u *Universe) InverseCell(c Coords) error {
	u.area.Lock()
	cell, err := u.area.algo.Cell(c)
	if err == nil {
		err = u.area.algo.SetCell(c, !cell)
	}
	u.area.Unlock()
	if err != nil {
		return err
	}
	u.updateLiveCells()
	u.refreshView()
	return nil
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
//it is safe to register while the simulation is running
func (u *Universe) RegisterViewer(v Viewer) {
	v.Register(u)
	u.area.Lock()
	u.views = append(u.views, v)
	u.area.Unlock()
}

//StateCh returns the channel with the universe's status updates
func (u *Universe) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *Universe) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *Universe) Options() Options {
	return u.options
}

//Snapshot returns the copy of the current generation
func (u *Universe) Snapshot() Area {
	u.area.Lock()
	defer u.area.Unlock()
	w, h := u.area.algo.Size()
	return Area{Width: w, Height: h, Cells: u.area.algo.State()}
}

//Run starts the universe simulation, returns immediately
func (u *Universe) Run() {
	u.exec(u.run)
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *Universe) Stop() {
	u.exec(u.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *Universe) Step() {
	u.exec(u.step)
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (u *Universe) Clear() {
	u.exec(u.clear)
}

//Close stops the main loop, returns immediately
func (u *Universe) Close() {
	u.closeOnce.Do(func() {
		close(u.closeCh)
	})
}

//exec passes the command to the main loop, returns false when the loop is stopped
func (u *Universe) exec(cmd func()) bool {
	select {
	case u.controlCh <- cmd:
		return true
	case <-u.doneCh:
		return false
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *Universe) mainLoop() {
	defer close(u.doneCh)
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.closeCh:
			return
		}
	}
}

//settle places the cell state at the coordinates
func (u *Universe) settle(vc []Coords, cell Cell) error {
	var errs []error
	for _, c := range vc {
		if err := u.area.algo.SetCell(c, cell); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (u *Universe) updateLiveCells() {
	u.area.Lock()
	n := u.area.algo.Population()
	u.area.Unlock()
	u.state.Lock()
	u.state.LiveCells = n
	u.state.Unlock()
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *Universe) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (u *Universe) run() {
	if u.Status().RunningMode == RunningStateRun {
		return
	}
	u.switchRunningState(RunningStateRun)
	go func() {
		done := make(chan struct{}, 1)
		for u.Status().RunningMode == RunningStateRun {
			ok := u.exec(func() {
				//Stop may be handled before this step
				if u.Status().RunningMode == RunningStateRun {
					u.step()
				}
				done <- struct{}{}
			})
			if !ok {
				return
			}
			<-done
			if u.options.Interval > 0 {
				select {
				case <-time.After(u.options.Interval):
				case <-u.doneCh:
					return
				}
			}
		}
	}()
}

//stop stops the universe running cycle
func (u *Universe) stop() {
	if u.Status().RunningMode == RunningStateRun {
		u.switchRunningState(RunningStateManual)
	}
}

//step does the new one state calculation for entire universe
//the run finishes when all cells are dead, the generation stays the same or MaxSteps is reached
func (u *Universe) step() {
	rm := u.Status().RunningMode
	u.switchRunningState(RunningStateStep)

	u.area.Lock()
	start := time.Now()
	prev := u.area.algo.State()
	u.area.algo.Step()
	changed := !slices.Equal(prev, u.area.algo.State())
	liveCells := u.area.algo.Population()
	elapsed := time.Since(start)
	u.area.Unlock()

	u.state.Lock()
	u.state.IterationNum++
	u.state.LiveCells = liveCells
	u.state.IterationTime = elapsed
	iter := u.state.IterationNum
	u.state.Unlock()

	maxIter := u.options.MaxSteps
	if liveCells == 0 || !changed || (maxIter != 0 && iter >= maxIter) {
		u.switchRunningState(RunningStateFinished)
	} else {
		u.switchRunningState(rm)
	}
	u.refreshView()
}

//clear clears the universe data, reset all counters
func (u *Universe) clear() {
	u.area.Lock()
	u.area.algo.SetStateWith(Dead)
	u.area.Unlock()

	u.state.Lock()
	u.state.IterationNum = 0
	u.state.LiveCells = 0
	u.state.IterationTime = 0
	u.state.Unlock()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//refreshView calls Refresh event for all registered views
//viewers read the universe back, so they are called without the lock
func (u *Universe) refreshView() {
	u.area.Lock()
	views := slices.Clone(u.views)
	u.area.Unlock()
	for _, v := range views {
		v.Refresh()
	}
}
