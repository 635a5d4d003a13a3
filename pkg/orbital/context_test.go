package orbital

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/samcharles93/orbital/internal/device/emulated"
	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

func TestReadinessGating(t *testing.T) {
	t.Parallel()
	c := New(nil)
	s := water()

	for _, g := range Groups() {
		if c.Provided(g) {
			t.Fatalf("%s provided on a fresh context", g)
		}
	}

	wantKind(t, c.SetAOBasisType(kernel.Gaussian), ErrNotReady)
	if err := c.SetElectronNum(s.up, s.dn); err != nil {
		t.Fatalf("SetElectronNum: %v", err)
	}
	err := c.SetAOBasisShellNum(s.shellNum)
	wantKind(t, err, ErrNotReady)
	if want := "nucleus not provided"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not name the missing group", err)
	}

	wantKind(t, c.SetNucleusCoord(Normal, s.nuclCoord), ErrNotReady)
	if err := c.SetNucleusNum(s.nuclNum); err != nil {
		t.Fatalf("SetNucleusNum: %v", err)
	}
	if err := c.SetNucleusCoord(Normal, s.nuclCoord); err != nil {
		t.Fatalf("SetNucleusCoord: %v", err)
	}
	if c.NucleusProvided() {
		t.Fatal("nucleus provided without charges")
	}
	if err := c.SetNucleusCharge(s.charge); err != nil {
		t.Fatalf("SetNucleusCharge: %v", err)
	}
	if !c.NucleusProvided() {
		t.Fatal("nucleus not provided after all fields set")
	}

	wantKind(t, c.SetAOBasisExponent(s.exponent), ErrNotReady) // prim_num unset
	if err := c.SetMONum(s.moNum); err != nil {
		t.Fatalf("SetMONum: %v", err)
	}
	wantKind(t, c.SetMOCoefficient(s.moCoef), ErrNotReady)
	wantKind(t, c.GetAOValue(make([]float64, 100)), ErrNotReady)

	c2, _, _ := newLoaded(t, nil)
	for _, g := range Groups() {
		if !c2.Provided(g) {
			t.Fatalf("%s not provided after full load", g)
		}
	}
}

func TestFailedSetterLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	c, _, s := newLoaded(t, nil)
	date := c.Date()
	version := c.Version(GroupAOBasis)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"short exponent", func() error { return c.SetAOBasisExponent(s.exponent[:3]) }},
		{"negative exponent", func() error {
			bad := append([]float64(nil), s.exponent...)
			bad[1] = -1
			return c.SetAOBasisExponent(bad)
		}},
		{"ang mom above 7", func() error { return c.SetAOBasisShellAngMom([]int32{0, 0, 8, 0, 0}) }},
		{"bad type", func() error { return c.SetAOBasisType('X') }},
		{"zero shell count", func() error { return c.SetAOBasisShellNum(0) }},
		{"zero prim count in shell", func() error { return c.SetAOBasisShellPrimNum([]int64{2, 0, 1, 2, 2}) }},
	}
	for _, tc := range tests {
		if err := tc.fn(); KindOf(err) != ErrInvalidArgument {
			t.Fatalf("%s: got %v, want invalid argument", tc.name, err)
		}
	}
	wantKind(t, c.SetElectronNum(0, 0), ErrInvalidArgument)
	wantKind(t, c.SetMOCoefficient(s.moCoef[:7]), ErrInvalidArgument)

	if c.Date() != date || c.Version(GroupAOBasis) != version {
		t.Fatalf("failed setters moved versions: date %d->%d", date, c.Date())
	}
	got := make([]float64, len(s.exponent))
	if err := c.GetAOBasisExponent(got); err != nil {
		t.Fatalf("GetAOBasisExponent: %v", err)
	}
	if diff := cmp.Diff(s.exponent, got); diff != "" {
		t.Fatalf("exponent changed (-want +got):\n%s", diff)
	}
}

func TestSettersCopyInputs(t *testing.T) {
	t.Parallel()
	c, _, s := newLoaded(t, nil)
	s.charge[0] = 99
	got := make([]float64, 3)
	if err := c.GetNucleusCharge(got); err != nil {
		t.Fatalf("GetNucleusCharge: %v", err)
	}
	if got[0] != 8 {
		t.Fatalf("charge aliased caller slice: %v", got)
	}
}

func TestCountChangeRevokesProvided(t *testing.T) {
	t.Parallel()
	c, _, s := newLoaded(t, nil)
	if err := c.SetMONum(s.moNum + 1); err != nil {
		t.Fatalf("SetMONum: %v", err)
	}
	if c.MOBasisProvided() {
		t.Fatal("mo basis still provided with mismatched coefficient shape")
	}
	wantKind(t, c.GetMOValue(make([]float64, 1000)), ErrNotReady)
	if !c.AOBasisProvided() {
		t.Fatal("ao basis should be unaffected")
	}
}

func TestTransposedCoordinates(t *testing.T) {
	t.Parallel()
	c := New(nil)
	s := water()
	n := s.pointNum()
	tr := make([]float64, 3*n)
	for i := range n {
		for k := range 3 {
			tr[k*n+i] = s.points[3*i+k]
		}
	}
	if err := c.SetPoints(Transposed, tr); err != nil {
		t.Fatalf("SetPoints: %v", err)
	}
	got := make([]float64, 3*n)
	if err := c.GetPoints(Normal, got); err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if diff := cmp.Diff(s.points, got); diff != "" {
		t.Fatalf("points (-want +got):\n%s", diff)
	}
	back := make([]float64, 3*n)
	if err := c.GetPoints(Transposed, back); err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if diff := cmp.Diff(tr, back); diff != "" {
		t.Fatalf("transposed points (-want +got):\n%s", diff)
	}
	wantKind(t, c.SetPoints('X', tr), ErrInvalidArgument)
	wantKind(t, c.SetPoints(Normal, tr[:4]), ErrInvalidArgument)
}

func TestTouch(t *testing.T) {
	t.Parallel()
	empty := New(nil)
	if err := empty.Touch(); err != nil {
		t.Fatalf("Touch on empty context: %v", err)
	}
	if empty.Date() != 0 {
		t.Fatalf("Touch on empty context moved the date to %d", empty.Date())
	}

	c, ev, s := newLoaded(t, nil)
	out := make([]float64, s.pointNum()*int(s.moNum))
	if err := c.GetMOValue(out); err != nil {
		t.Fatalf("GetMOValue: %v", err)
	}
	if err := c.Touch(); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	for _, k := range Kinds() {
		if c.Fresh(k) {
			t.Fatalf("%s fresh after Touch", k)
		}
	}
	if err := c.GetMOValue(out); err != nil {
		t.Fatalf("GetMOValue: %v", err)
	}
	if ev.ao.Load() != 2 || ev.mo.Load() != 2 {
		t.Fatalf("evaluations ao=%d mo=%d, want 2/2", ev.ao.Load(), ev.mo.Load())
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	t.Parallel()
	dev := emulated.New(0)
	c, _, s := newLoaded(t, dev)

	if _, err := c.MallocDevice(64); err != nil {
		t.Fatalf("MallocDevice: %v", err)
	}
	if _, err := c.MallocHost(64); err != nil {
		t.Fatalf("MallocHost: %v", err)
	}
	vgl := make([]float64, s.pointNum()*kernel.VGLSlots*int(s.moNum))
	if err := c.GetMOVgl(vgl); err != nil {
		t.Fatalf("GetMOVgl: %v", err)
	}
	if h, d := c.Live(); h == 0 || d == 0 {
		t.Fatalf("live = (%d, %d), want buffers in both locations", h, d)
	}

	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if h, d := c.Live(); h != 0 || d != 0 {
		t.Fatalf("live after destroy = (%d, %d)", h, d)
	}
	if st := dev.Stats(); st.Regions != 0 {
		t.Fatalf("device still holds %d regions", st.Regions)
	}
	wantKind(t, c.Destroy(), ErrResource)
	wantKind(t, c.GetMOVgl(vgl), ErrNotReady)
	wantKind(t, c.SetElectronNum(1, 1), ErrNotReady)
	wantKind(t, c.Touch(), ErrNotReady)
	if c.ElectronProvided() {
		t.Fatal("destroyed context reports provided groups")
	}
}

func TestContextScopedMemory(t *testing.T) {
	t.Parallel()
	host := New(nil)
	_, err := host.MallocDevice(8)
	wantKind(t, err, ErrResource)
	_, err = host.MallocHost(0)
	wantKind(t, err, ErrInvalidArgument)

	c := New(emulated.New(0))
	other := New(emulated.New(0))
	buf, err := c.MallocDevice(32)
	if err != nil {
		t.Fatalf("MallocDevice: %v", err)
	}
	in := []float64{1, 2, 3, 4}
	if err := MemcpyH2D(c, buf, in); err != nil {
		t.Fatalf("MemcpyH2D: %v", err)
	}
	out := make([]float64, 4)
	if err := MemcpyD2H(c, out, buf); err != nil {
		t.Fatalf("MemcpyD2H: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	wantKind(t, MemcpyH2D(c, buf, make([]float64, 5)), ErrInvalidArgument)
	wantKind(t, other.Free(buf), ErrInvalidArgument)
	if err := c.Free(buf); err != nil {
		t.Fatalf("Free: %v", err)
	}
	wantKind(t, c.Free(buf), ErrResource)
}

func TestDeviceInputsAndOutputs(t *testing.T) {
	t.Parallel()
	s := water()
	ref, _, _ := newLoaded(t, nil)
	want := make([]float64, s.pointNum()*int(s.moNum))
	if err := ref.GetMOValue(want); err != nil {
		t.Fatalf("reference GetMOValue: %v", err)
	}

	dev := emulated.New(0)
	c, _, _ := newLoaded(t, dev)
	toDevice := func(v []float64) memory.Buffer {
		t.Helper()
		b, err := c.MallocDevice(int64(len(v)) * 8)
		if err != nil {
			t.Fatalf("MallocDevice: %v", err)
		}
		if err := MemcpyH2D(c, b, v); err != nil {
			t.Fatalf("MemcpyH2D: %v", err)
		}
		return b
	}
	if err := c.SetPointsDevice(Normal, int64(s.pointNum()), toDevice(s.points)); err != nil {
		t.Fatalf("SetPointsDevice: %v", err)
	}
	if err := c.SetMOCoefficientDevice(toDevice(s.moCoef)); err != nil {
		t.Fatalf("SetMOCoefficientDevice: %v", err)
	}

	out, err := c.MallocDevice(int64(len(want)) * 8)
	if err != nil {
		t.Fatalf("MallocDevice: %v", err)
	}
	if err := c.GetMOValueDevice(out); err != nil {
		t.Fatalf("GetMOValueDevice: %v", err)
	}
	before := dev.Stats().HostToDevice
	if err := c.GetMOValueDevice(out); err != nil {
		t.Fatalf("GetMOValueDevice: %v", err)
	}
	if got := dev.Stats().HostToDevice; got != before {
		t.Fatalf("fresh mirror re-uploaded: %d host-to-device copies, want %d", got, before)
	}

	got := make([]float64, len(want))
	if err := MemcpyD2H(c, got, out); err != nil {
		t.Fatalf("MemcpyD2H: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("device MO values (-want +got):\n%s", diff)
	}

	coef := make([]float64, len(s.moCoef))
	coefBuf := toDevice(coef)
	if err := c.GetMOCoefficientDevice(coefBuf); err != nil {
		t.Fatalf("GetMOCoefficientDevice: %v", err)
	}
	if err := MemcpyD2H(c, coef, coefBuf); err != nil {
		t.Fatalf("MemcpyD2H: %v", err)
	}
	if diff := cmp.Diff(s.moCoef, coef); diff != "" {
		t.Fatalf("coefficients (-want +got):\n%s", diff)
	}
}

func TestWithLoggerAcceptsSlog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(nil, WithLogger(log), WithWorkers(1))
	s := water()
	s.load(t, c)
	if err := c.GetAOValue(make([]float64, s.pointNum()*int(s.aoNum))); err != nil {
		t.Fatalf("GetAOValue: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"context_id":"`+c.ID().String()+`"`) {
		t.Fatalf("records not tagged with the context id:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"recomputed"`) || !strings.Contains(out, `"kind":"ao_value"`) {
		t.Fatalf("recompute not logged:\n%s", out)
	}
	if err := New(nil, WithLogger(nil)).Touch(); err != nil {
		t.Fatalf("Touch with nil logger: %v", err)
	}
}
