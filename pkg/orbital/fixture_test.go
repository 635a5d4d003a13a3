package orbital

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

// system is a complete set of context inputs.
type system struct {
	up, dn int64

	nuclNum   int64
	nuclCoord []float64
	charge    []float64

	typ             kernel.ShellType
	shellNum        int64
	primNum         int64
	aoNum           int64
	nucleusIndex    []int64
	nucleusShellNum []int64
	shellAngMom     []int32
	shellFactor     []float64
	shellPrimNum    []int64
	shellPrimIndex  []int64
	exponent        []float64
	coefficient     []float64
	primFactor      []float64
	aoFactor        []float64

	moNum  int64
	moCoef []float64

	points []float64
}

// water is a water-like molecule: s, s and p shells on oxygen, one s shell on
// each hydrogen. 7 AOs, 4 MOs.
func water() system {
	return system{
		up:      5,
		dn:      5,
		nuclNum: 3,
		nuclCoord: []float64{
			0, 0, 0.2217,
			0, 1.4309, -0.8867,
			0, -1.4309, -0.8867,
		},
		charge: []float64{8, 1, 1},

		typ:             kernel.Gaussian,
		shellNum:        5,
		primNum:         8,
		aoNum:           7,
		nucleusIndex:    []int64{0, 3, 4},
		nucleusShellNum: []int64{3, 1, 1},
		shellAngMom:     []int32{0, 0, 1, 0, 0},
		shellFactor:     []float64{1, 1, 1, 1, 1},
		shellPrimNum:    []int64{2, 1, 1, 2, 2},
		shellPrimIndex:  []int64{0, 2, 3, 4, 6},
		exponent:        []float64{130.7, 23.8, 0.38, 1.17, 3.42, 0.62, 3.42, 0.62},
		coefficient:     []float64{0.15, 0.54, 1, 1, 0.15, 0.54, 0.15, 0.54},
		primFactor:      []float64{41.9, 10.7, 0.49, 1.3, 1.79, 0.50, 1.79, 0.50},
		aoFactor:        []float64{1, 1, 1, 1, 1, 1, 1},

		moNum: 4,
		moCoef: []float64{
			0.99, 0.02, 0, 0, 0, -0.01, -0.01,
			-0.21, 0.85, 0, 0, 0.12, 0.15, 0.15,
			0, 0, 0, 0.61, -0.03, 0.44, -0.44,
			0.08, -0.52, 0, 0, 0.78, 0.27, 0.27,
		},

		points: []float64{
			0.1, 0.2, 0.3,
			-0.4, 0.9, -0.6,
			0.0, -1.2, -0.7,
			0.7, 0.3, 0.5,
			-0.2, -0.1, 1.1,
		},
	}
}

func (s system) pointNum() int { return len(s.points) / 3 }

// load sets every group of s on c, failing the test on the first error.
func (s system) load(t *testing.T, c *Context) {
	t.Helper()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"electron_num", func() error { return c.SetElectronNum(s.up, s.dn) }},
		{"nucleus_num", func() error { return c.SetNucleusNum(s.nuclNum) }},
		{"nucleus_coord", func() error { return c.SetNucleusCoord(Normal, s.nuclCoord) }},
		{"nucleus_charge", func() error { return c.SetNucleusCharge(s.charge) }},
		{"ao_type", func() error { return c.SetAOBasisType(s.typ) }},
		{"shell_num", func() error { return c.SetAOBasisShellNum(s.shellNum) }},
		{"prim_num", func() error { return c.SetAOBasisPrimNum(s.primNum) }},
		{"ao_num", func() error { return c.SetAONum(s.aoNum) }},
		{"nucleus_index", func() error { return c.SetAOBasisNucleusIndex(s.nucleusIndex) }},
		{"nucleus_shell_num", func() error { return c.SetAOBasisNucleusShellNum(s.nucleusShellNum) }},
		{"shell_ang_mom", func() error { return c.SetAOBasisShellAngMom(s.shellAngMom) }},
		{"shell_factor", func() error { return c.SetAOBasisShellFactor(s.shellFactor) }},
		{"shell_prim_num", func() error { return c.SetAOBasisShellPrimNum(s.shellPrimNum) }},
		{"shell_prim_index", func() error { return c.SetAOBasisShellPrimIndex(s.shellPrimIndex) }},
		{"exponent", func() error { return c.SetAOBasisExponent(s.exponent) }},
		{"coefficient", func() error { return c.SetAOBasisCoefficient(s.coefficient) }},
		{"prim_factor", func() error { return c.SetAOBasisPrimFactor(s.primFactor) }},
		{"ao_factor", func() error { return c.SetAOBasisAOFactor(s.aoFactor) }},
		{"mo_num", func() error { return c.SetMONum(s.moNum) }},
		{"mo_coefficient", func() error { return c.SetMOCoefficient(s.moCoef) }},
		{"points", func() error { return c.SetPoints(Normal, s.points) }},
	}
	for _, st := range steps {
		if err := st.fn(); err != nil {
			t.Fatalf("set %s: %v", st.name, err)
		}
	}
}

// countingEvaluator wraps the kernel evaluator and counts invocations.
type countingEvaluator struct {
	inner    KernelEvaluator
	ao, mo   atomic.Int64
	failNext atomic.Bool
}

var errInjected = errors.New("injected kernel failure")

func (e *countingEvaluator) AO(b *kernel.Basis, nuclCoord, points []float64, vgl bool, out []float64) error {
	e.ao.Add(1)
	if e.failNext.CompareAndSwap(true, false) {
		return errInjected
	}
	return e.inner.AO(b, nuclCoord, points, vgl, out)
}

func (e *countingEvaluator) MO(ao []float64, rows, aoNum int, coef []float64, moNum int, out []float64) error {
	e.mo.Add(1)
	if e.failNext.CompareAndSwap(true, false) {
		return errInjected
	}
	return e.inner.MO(ao, rows, aoNum, coef, moNum, out)
}

func newLoaded(t *testing.T, dev memory.Device) (*Context, *countingEvaluator, system) {
	t.Helper()
	ev := &countingEvaluator{inner: KernelEvaluator{Options: kernel.Options{Workers: 2}}}
	c := New(dev, WithEvaluator(ev))
	s := water()
	s.load(t, c)
	return c, ev, s
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("got error %v, want kind %v", err, kind)
	}
}
