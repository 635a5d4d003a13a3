package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testBasis has s, p and d shells on nucleus 0 and one s shell on nucleus 1.
func testBasis(typ ShellType) *Basis {
	return &Basis{
		Type:            typ,
		NucleusIndex:    []int64{0, 3},
		NucleusShellNum: []int64{3, 1},
		ShellAngMom:     []int32{0, 1, 2, 0},
		ShellFactor:     []float64{1, 0.9, 1.1, 1},
		ShellPrimNum:    []int64{2, 1, 1, 1},
		ShellPrimIndex:  []int64{0, 2, 3, 4},
		Exponent:        []float64{1.3, 0.4, 0.8, 0.6, 1.1},
		Coefficient:     []float64{0.4, 0.6, 1, 1, 1},
		PrimFactor:      []float64{1.2, 0.7, 1, 0.5, 0.9},
		AOFactor:        []float64{1, 1, 1, 1, 1, 0.5, 0.5, 1, 0.5, 1, 1},
		AONum:           11,
	}
}

var testNuclei = []float64{
	0, 0, 0,
	0.3, -0.2, 1.4,
}

var testPoints = []float64{
	0.5, 0.25, -0.3,
	-0.7, 0.1, 0.9,
	0.2, -0.6, 0.4,
	1.1, 0.8, -0.5,
}

func TestCartesianPowersOrdering(t *testing.T) {
	t.Parallel()
	got := CartesianPowers(2)
	want := [][3]int{{2, 0, 0}, {1, 1, 0}, {1, 0, 1}, {0, 2, 0}, {0, 1, 1}, {0, 0, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CartesianPowers(2) mismatch (-want +got):\n%s", diff)
	}
	for l := 0; l <= MaxAngMom; l++ {
		if n := len(CartesianPowers(l)); n != CartesianCount(l) {
			t.Fatalf("l=%d: %d powers, count says %d", l, n, CartesianCount(l))
		}
	}
}

func TestSingleGaussianAnalytic(t *testing.T) {
	t.Parallel()
	b := &Basis{
		Type:            Gaussian,
		NucleusIndex:    []int64{0},
		NucleusShellNum: []int64{1},
		ShellAngMom:     []int32{0},
		ShellFactor:     []float64{1},
		ShellPrimNum:    []int64{1},
		ShellPrimIndex:  []int64{0},
		Exponent:        []float64{1},
		Coefficient:     []float64{1},
		PrimFactor:      []float64{1},
		AOFactor:        []float64{1},
		AONum:           1,
	}
	pt := []float64{0.3, -0.4, 0.5}
	out := make([]float64, VGLSlots)
	if err := AOVGL(b, []float64{0, 0, 0}, pt, out, Options{Workers: 1}); err != nil {
		t.Fatalf("AOVGL: %v", err)
	}
	r2 := 0.3*0.3 + 0.4*0.4 + 0.5*0.5
	e := math.Exp(-r2)
	want := []float64{e, -2 * 0.3 * e, 2 * 0.4 * e, -2 * 0.5 * e, (4*r2 - 6) * e}
	if diff := cmp.Diff(want, out, cmpopts.EquateApprox(0, 1e-14)); diff != "" {
		t.Fatalf("VGL mismatch (-want +got):\n%s", diff)
	}
}

func TestVGLMatchesFiniteDifferences(t *testing.T) {
	t.Parallel()
	for _, typ := range []ShellType{Gaussian, Slater} {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()
			b := testBasis(typ)
			ao := b.AONum
			const h = 1e-4

			value := func(pt []float64) []float64 {
				out := make([]float64, ao)
				if err := AOValue(b, testNuclei, pt, out, Options{Workers: 1}); err != nil {
					t.Fatalf("AOValue: %v", err)
				}
				return out
			}

			for p := 0; p < len(testPoints)/3; p++ {
				pt := testPoints[3*p : 3*p+3]
				vgl := make([]float64, VGLSlots*ao)
				if err := AOVGL(b, testNuclei, pt, vgl, Options{Workers: 1}); err != nil {
					t.Fatalf("AOVGL: %v", err)
				}
				center := value(pt)
				lap := make([]float64, ao)
				for d := 0; d < 3; d++ {
					plus := append([]float64(nil), pt...)
					minus := append([]float64(nil), pt...)
					plus[d] += h
					minus[d] -= h
					vp, vm := value(plus), value(minus)
					for k := 0; k < ao; k++ {
						grad := (vp[k] - vm[k]) / (2 * h)
						if got := vgl[(1+d)*ao+k]; math.Abs(got-grad) > 1e-6 {
							t.Fatalf("point %d ao %d d%d: analytic %v, numeric %v", p, k, d, got, grad)
						}
						lap[k] += (vp[k] - 2*center[k] + vm[k]) / (h * h)
					}
				}
				for k := 0; k < ao; k++ {
					if got := vgl[k]; got != center[k] {
						t.Fatalf("point %d ao %d: VGL value %v != value-only %v", p, k, got, center[k])
					}
					if got := vgl[4*ao+k]; math.Abs(got-lap[k]) > 1e-4 {
						t.Fatalf("point %d ao %d laplacian: analytic %v, numeric %v", p, k, got, lap[k])
					}
				}
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	t.Parallel()
	b := testBasis(Gaussian)
	const n = 200
	points := make([]float64, 3*n)
	for i := range points {
		points[i] = math.Sin(float64(i)*0.37) * 2
	}
	serial := make([]float64, n*VGLSlots*b.AONum)
	parallel := make([]float64, n*VGLSlots*b.AONum)
	if err := AOVGL(b, testNuclei, points, serial, Options{Workers: 1}); err != nil {
		t.Fatalf("serial: %v", err)
	}
	if err := AOVGL(b, testNuclei, points, parallel, Options{Workers: 8}); err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("parallel evaluation differs:\n%s", diff)
	}
}

func TestValidateRejectsInconsistentBasis(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(b *Basis)
	}{
		{"ao count", func(b *Basis) { b.AONum = 10; b.AOFactor = b.AOFactor[:10] }},
		{"shell range", func(b *Basis) { b.NucleusShellNum[1] = 2 }},
		{"prim range", func(b *Basis) { b.ShellPrimNum[3] = 4 }},
		{"ang mom", func(b *Basis) { b.ShellAngMom[0] = MaxAngMom + 1 }},
		{"type", func(b *Basis) { b.Type = 'X' }},
		{"uncovered shell", func(b *Basis) { b.NucleusShellNum[0] = 2 }},
		{"overlapping shells", func(b *Basis) { b.NucleusIndex[1] = 2 }},
		{"shared first shell", func(b *Basis) { b.NucleusIndex[1] = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := testBasis(Gaussian)
			tc.mutate(b)
			out := make([]float64, VGLSlots*11*4)
			err := AOVGL(b, testNuclei, testPoints, out, Options{})
			if !errors.Is(err, ErrInconsistentBasis) {
				t.Fatalf("got %v, want ErrInconsistentBasis", err)
			}
		})
	}
}

// Shell ranges that overlap while still summing to shell_num must not reach
// the per-point loops, where the extra AOs would overrun the row.
func TestValidateRejectsSharedShells(t *testing.T) {
	t.Parallel()
	b := &Basis{
		Type:            Gaussian,
		NucleusIndex:    []int64{0, 0},
		NucleusShellNum: []int64{1, 1},
		ShellAngMom:     []int32{1, 0},
		ShellFactor:     []float64{1, 1},
		ShellPrimNum:    []int64{1, 1},
		ShellPrimIndex:  []int64{0, 1},
		Exponent:        []float64{0.5, 0.7},
		Coefficient:     []float64{1, 1},
		PrimFactor:      []float64{1, 1},
		AOFactor:        []float64{1, 1, 1, 1},
		AONum:           4,
	}
	if err := b.Validate(2); !errors.Is(err, ErrInconsistentBasis) {
		t.Fatalf("Validate: got %v, want ErrInconsistentBasis", err)
	}
	for _, vgl := range []bool{false, true} {
		out := make([]float64, 4*VGLSlots*4)
		var err error
		if vgl {
			err = AOVGL(b, testNuclei, testPoints, out, Options{Workers: 4})
		} else {
			err = AOValue(b, testNuclei, testPoints, out, Options{Workers: 4})
		}
		if !errors.Is(err, ErrInconsistentBasis) {
			t.Fatalf("vgl=%v: got %v, want ErrInconsistentBasis", vgl, err)
		}
	}
}

func TestEvaluateRejectsShortOutput(t *testing.T) {
	t.Parallel()
	b := testBasis(Gaussian)
	out := make([]float64, 3)
	if err := AOValue(b, testNuclei, testPoints, out, Options{}); !errors.Is(err, ErrShape) {
		t.Fatalf("got %v, want ErrShape", err)
	}
}

func TestNonFiniteIsReported(t *testing.T) {
	t.Parallel()
	b := testBasis(Gaussian)
	b.AOFactor[0] = math.Inf(1)
	out := make([]float64, 4*b.AONum)
	if err := AOValue(b, testNuclei, testPoints, out, Options{}); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("got %v, want ErrNonFinite", err)
	}
}

func TestMOProductMatchesNaive(t *testing.T) {
	t.Parallel()
	const rows, aoNum, moNum = 4, 3, 2
	ao := []float64{
		1, 2, 3,
		0, -1, 4,
		2, 2, 2,
		0.5, 0, -0.5,
	}
	coef := []float64{
		1, 0, 1,
		-1, 2, 0.5,
	}
	out := make([]float64, rows*moNum)
	if err := MO(ao, rows, aoNum, coef, moNum, out); err != nil {
		t.Fatalf("MO: %v", err)
	}
	want := make([]float64, rows*moNum)
	for r := 0; r < rows; r++ {
		for m := 0; m < moNum; m++ {
			for k := 0; k < aoNum; k++ {
				want[r*moNum+m] += ao[r*aoNum+k] * coef[m*aoNum+k]
			}
		}
	}
	if diff := cmp.Diff(want, out, cmpopts.EquateApprox(0, 1e-15)); diff != "" {
		t.Fatalf("MO mismatch (-want +got):\n%s", diff)
	}
}

func TestMORejectsBadShapes(t *testing.T) {
	t.Parallel()
	if err := MO(make([]float64, 4), 2, 2, make([]float64, 4), 2, make([]float64, 3)); !errors.Is(err, ErrShape) {
		t.Fatalf("short output: got %v", err)
	}
	if err := MO(nil, 0, 2, nil, 2, nil); !errors.Is(err, ErrShape) {
		t.Fatalf("zero rows: got %v", err)
	}
}
