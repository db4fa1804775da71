package universe

import (
	"errors"
	"slices"
	"testing"
	"time"
)

const (
	width  = 200
	height = 200
)

func newStateCh() chan Status {
	return make(chan Status, 100)
}

func newUniverseOptions() *Options {
	o := DefaultUniverseOptions
	o.Interval = 0
	o.Width = width
	o.Height = height
	return &o
}

func newTestUniverse(t testing.TB, o *Options) (*Universe, chan Status) {
	t.Helper()
	stateCh := newStateCh()
	u, err := NewUniverse(o, stateCh)
	if err != nil {
		t.Fatalf("NewUniverse: %v", err)
	}
	t.Cleanup(u.Close)
	return u, stateCh
}

//waitFor reads the statuses until the mode is reached
func waitFor(t testing.TB, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timeout waiting for running state %v", mode)
		}
	}
}

func TestNewUniverse(t *testing.T) {
	u, err := NewUniverse(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()
	o := u.Options()
	if o.Width != DefWidth || o.Height != DefHeight || o.Engine != DefEngine {
		t.Errorf("default options = %+v", o)
	}
	if o.Advanced["engine"] != DefEngine {
		t.Errorf("Advanced[engine] = %v", o.Advanced["engine"])
	}
	if a := u.Snapshot(); a.Width != DefWidth || a.Height != DefHeight || len(a.Cells) != DefWidth*DefHeight {
		t.Errorf("Snapshot() is %dx%d with %d cells", a.Width, a.Height, len(a.Cells))
	}

	if _, err := NewUniverse(&Options{Width: 3, Height: 3, Engine: "nope"}, nil); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("unknown engine error = %v", err)
	}
	if _, err := NewUniverse(&Options{Width: -3, Height: 3}, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("negative width error = %v", err)
	}
}

func TestUniverseSettle(t *testing.T) {
	u, _ := newTestUniverse(t, &Options{Width: 5, Height: 5, Engine: "serial"})

	err := u.Settle([]Coords{{1, 1}, {10, 10}, {2, 2}})
	if !errors.Is(err, ErrInvalidCoords) {
		t.Errorf("Settle error = %v, want ErrInvalidCoords", err)
	}
	a := u.Snapshot()
	if a.Cell(1, 1) != Alive || a.Cell(2, 2) != Alive {
		t.Error("valid coordinates were not settled")
	}
	if n := u.Status().LiveCells; n != 2 {
		t.Errorf("LiveCells = %d, want 2", n)
	}

	if err := u.SettleTemplate("missing"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("SettleTemplate(missing) error = %v", err)
	}
	u.AddTemplate(Template{"corner", "", []Coords{{4, 4}}})
	if err := u.SettleTemplate("corner"); err != nil {
		t.Fatal(err)
	}
	if u.Snapshot().Cell(4, 4) != Alive {
		t.Error("template cell is not alive")
	}

	if err := u.InverseCell(Coords{1, 1}); err != nil {
		t.Fatal(err)
	}
	if u.Snapshot().Cell(1, 1) != Dead {
		t.Error("InverseCell didn't kill the cell")
	}
	if err := u.InverseCell(Coords{5, 0}); !errors.Is(err, ErrInvalidCoords) {
		t.Errorf("InverseCell out of range error = %v", err)
	}
	if n := u.Status().LiveCells; n != 2 {
		t.Errorf("LiveCells = %d, want 2", n)
	}
}

func TestUniverseStep(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 5, Height: 5, Engine: "parallel", Workers: 2})
	if err := u.SettleTemplate(TemplateBlinker.Name); err != nil {
		t.Fatal(err)
	}

	u.Step()
	if st := <-stateCh; st.RunningMode != RunningStateStep {
		t.Fatalf("first state = %v, want Step", st.RunningMode)
	}
	st := <-stateCh
	if st.RunningMode != RunningStateManual {
		t.Fatalf("second state = %v, want Manual", st.RunningMode)
	}
	if st.IterationNum != 1 || st.LiveCells != 3 {
		t.Errorf("status after step = %+v", st)
	}

	a := u.Snapshot()
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := Cell(x == 2 && y >= 1 && y <= 3)
			if a.Cell(x, y) != want {
				t.Errorf("cell (%d,%d) = %v, want %v", x, y, a.Cell(x, y), want)
			}
		}
	}

	u.Clear()
	st = waitFor(t, stateCh, RunningStateManual)
	if st.IterationNum != 0 || st.LiveCells != 0 {
		t.Errorf("status after clear = %+v", st)
	}
	if slices.Contains(u.Snapshot().Cells, Alive) {
		t.Error("field is not empty after Clear")
	}
}

func TestUniverseRunMaxSteps(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 8, Height: 8, Engine: "parallel", MaxSteps: 3})
	if err := u.SettleTemplate(TemplateGlider.Name); err != nil {
		t.Fatal(err)
	}
	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 3 {
		t.Errorf("finished at iteration %d, want 3", st.IterationNum)
	}
	if st.LiveCells != 5 {
		t.Errorf("LiveCells = %d, want 5", st.LiveCells)
	}
}

func TestUniverseRunStillLife(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 6, Height: 6, Engine: "serial"})
	if err := u.SettleTemplate(TemplateBlock.Name); err != nil {
		t.Fatal(err)
	}
	u.Run()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.IterationNum != 1 || st.LiveCells != 4 {
		t.Errorf("still life finished with %+v", st)
	}
}

func TestUniverseRunDiesOut(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 6, Height: 6, Engine: "serial"})
	if err := u.Settle([]Coords{{1, 1}, {4, 4}}); err != nil {
		t.Fatal(err)
	}
	u.Step()
	st := waitFor(t, stateCh, RunningStateFinished)
	if st.LiveCells != 0 {
		t.Errorf("LiveCells = %d, want 0", st.LiveCells)
	}
}

func TestUniverseStop(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 8, Height: 8, Engine: "parallel", Interval: time.Millisecond})
	if err := u.SettleTemplate(TemplateGlider.Name); err != nil {
		t.Fatal(err)
	}
	u.Run()
	waitFor(t, stateCh, RunningStateStep)
	u.Stop()
	st := waitFor(t, stateCh, RunningStateManual)
	if st.IterationNum == 0 {
		t.Error("no steps done before Stop")
	}
	if mode := u.Status().RunningMode; mode != RunningStateManual {
		t.Errorf("running mode after Stop = %v", mode)
	}
}

func TestUniverseRandomData(t *testing.T) {
	o := Options{Width: 16, Height: 16, Engine: "parallel", Seed: 7}
	u1, stateCh1 := newTestUniverse(t, &o)
	o2 := Options{Width: 16, Height: 16, Engine: "serial", Seed: 7}
	u2, _ := newTestUniverse(t, &o2)

	u1.SettleWithRandomData()
	u2.SettleWithRandomData()
	if st := <-stateCh1; st.RunningMode != RunningStateManual {
		t.Errorf("state after random fill = %v, want Manual", st.RunningMode)
	}

	a1, a2 := u1.Snapshot(), u2.Snapshot()
	if !slices.Equal(a1.Cells, a2.Cells) {
		t.Error("same seed produced different fields")
	}
	live := u1.Status().LiveCells
	if live == 0 || live == 16*16 {
		t.Errorf("random fill has %d live cells", live)
	}
}

func TestUniverseClosed(t *testing.T) {
	u, err := NewUniverse(&Options{Width: 3, Height: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	u.Close()
	u.Close()
	//commands are dropped once the main loop is stopped
	done := make(chan struct{})
	go func() {
		u.SettleWithRandomData()
		u.Step()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("commands block after Close")
	}
}

type countingViewer struct {
	u         *Universe
	refreshes int
}

func (v *countingViewer) Refresh()             { v.refreshes++ }
func (v *countingViewer) Register(u *Universe) { v.u = u }
func (v *countingViewer) Start()               {}

func TestUniverseViewer(t *testing.T) {
	u, _ := newTestUniverse(t, &Options{Width: 4, Height: 4})
	v := &countingViewer{}
	u.RegisterViewer(v)
	if v.u != u {
		t.Fatal("viewer is not registered")
	}
	_ = u.Settle([]Coords{{0, 0}})
	_ = u.InverseCell(Coords{0, 0})
	if v.refreshes != 2 {
		t.Errorf("refreshes = %d, want 2", v.refreshes)
	}
}

func universeStep(u *Universe, b *testing.B) {
	stateCh := u.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		u.Clear()
		<-stateCh //wait for finish
		_ = u.SettleTemplate(TemplateTestSample.Name)
		b.StartTimer()
		u.Step()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateManual || st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	u.Close()
}

func universeRun(u *Universe, b *testing.B) {
	stateCh := u.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		u.Clear()
		<-stateCh //wait for finish
		_ = u.SettleTemplate(TemplateTestSample.Name)
		b.StartTimer()
		u.Run()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	u.Close()
}

func Benchmark_Step(b *testing.B) {
	for _, e := range Engines() {
		b.Run(e, func(b *testing.B) {
			o := newUniverseOptions()
			o.Engine = e
			u, err := NewUniverse(o, newStateCh())
			if err != nil {
				b.Fatal(err)
			}
			universeStep(u, b)
		})
	}
}

func Benchmark_Universe(b *testing.B) {
	for _, e := range Engines() {
		b.Run(e, func(b *testing.B) {
			o := newUniverseOptions()
			o.Engine = e
			u, err := NewUniverse(o, newStateCh())
			if err != nil {
				b.Fatal(err)
			}
			universeRun(u, b)
		})
	}
}

func TestUniverseRegisterWhileRunning(t *testing.T) {
	u, stateCh := newTestUniverse(t, &Options{Width: 8, Height: 8, Engine: "parallel", MaxSteps: 50})
	if err := u.SettleTemplate(TemplateGlider.Name); err != nil {
		t.Fatal(err)
	}
	u.Run()
	v := &countingViewer{}
	u.RegisterViewer(v)
	waitFor(t, stateCh, RunningStateFinished)
	if v.u != u {
		t.Error("viewer is not registered")
	}
}
