package kernel

import (
	"errors"
	"fmt"
)

// ShellType selects the radial form of every shell in a basis.
type ShellType byte

const (
	Gaussian ShellType = 'G'
	Slater   ShellType = 'S'
)

func (t ShellType) Valid() bool {
	return t == Gaussian || t == Slater
}

// MaxAngMom bounds the angular momentum accepted per shell.
const MaxAngMom = 7

var (
	ErrInconsistentBasis = errors.New("inconsistent basis definition")
	ErrNonFinite         = errors.New("non-finite orbital value")
	ErrShape             = errors.New("array shape mismatch")
)

// Basis is an AO basis in flat, index-addressed form. Shells belonging to
// nucleus i are NucleusIndex[i] .. NucleusIndex[i]+NucleusShellNum[i]-1 and
// primitives of shell s are ShellPrimIndex[s] .. +ShellPrimNum[s]-1.
type Basis struct {
	Type            ShellType
	NucleusIndex    []int64
	NucleusShellNum []int64
	ShellAngMom     []int32
	ShellFactor     []float64
	ShellPrimNum    []int64
	ShellPrimIndex  []int64
	Exponent        []float64
	Coefficient     []float64
	PrimFactor      []float64
	AOFactor        []float64
	AONum           int
}

// CartesianCount is the number of Cartesian components of angular momentum l.
func CartesianCount(l int) int {
	return (l + 1) * (l + 2) / 2
}

// CartesianPowers lists the (a, b, c) exponents of x^a y^b z^c for angular
// momentum l, in x-major order: l=2 gives xx, xy, xz, yy, yz, zz.
func CartesianPowers(l int) [][3]int {
	out := make([][3]int, 0, CartesianCount(l))
	for a := l; a >= 0; a-- {
		for b := l - a; b >= 0; b-- {
			out = append(out, [3]int{a, b, l - a - b})
		}
	}
	return out
}

type shellRef struct {
	nucleus int
	shell   int
	aoStart int
	powers  [][3]int
}

// plan orders shells nucleus by nucleus and assigns AO offsets.
func (b *Basis) plan(nuclNum int) ([]shellRef, error) {
	if err := b.Validate(nuclNum); err != nil {
		return nil, err
	}
	refs := make([]shellRef, 0, len(b.ShellAngMom))
	ao := 0
	for i := 0; i < nuclNum; i++ {
		first := int(b.NucleusIndex[i])
		for s := first; s < first+int(b.NucleusShellNum[i]); s++ {
			l := int(b.ShellAngMom[s])
			refs = append(refs, shellRef{nucleus: i, shell: s, aoStart: ao, powers: CartesianPowers(l)})
			ao += CartesianCount(l)
		}
	}
	if ao != b.AONum {
		return nil, fmt.Errorf("%w: planned %d AOs, ao_num is %d", ErrInconsistentBasis, ao, b.AONum)
	}
	return refs, nil
}

// Validate checks the cross-field consistency of the basis against a nucleus
// count. Per-field ranges are the caller's responsibility.
func (b *Basis) Validate(nuclNum int) error {
	if !b.Type.Valid() {
		return fmt.Errorf("%w: unknown shell type %q", ErrInconsistentBasis, byte(b.Type))
	}
	if len(b.NucleusIndex) != nuclNum || len(b.NucleusShellNum) != nuclNum {
		return fmt.Errorf("%w: nucleus arrays sized %d/%d, want %d",
			ErrInconsistentBasis, len(b.NucleusIndex), len(b.NucleusShellNum), nuclNum)
	}
	shellNum := len(b.ShellAngMom)
	if len(b.ShellFactor) != shellNum || len(b.ShellPrimNum) != shellNum || len(b.ShellPrimIndex) != shellNum {
		return fmt.Errorf("%w: per-shell arrays disagree on shell count", ErrInconsistentBasis)
	}
	primNum := len(b.Exponent)
	if len(b.Coefficient) != primNum || len(b.PrimFactor) != primNum {
		return fmt.Errorf("%w: per-primitive arrays disagree on primitive count", ErrInconsistentBasis)
	}
	if len(b.AOFactor) != b.AONum {
		return fmt.Errorf("%w: ao_factor has %d entries, want %d", ErrInconsistentBasis, len(b.AOFactor), b.AONum)
	}

	// Every shell belongs to exactly one nucleus.
	owner := make([]int, shellNum)
	for s := range owner {
		owner[s] = -1
	}
	for i := 0; i < nuclNum; i++ {
		first, n := b.NucleusIndex[i], b.NucleusShellNum[i]
		if first < 0 || n < 0 || first+n > int64(shellNum) {
			return fmt.Errorf("%w: nucleus %d shells [%d,%d) outside shell_num %d",
				ErrInconsistentBasis, i, first, first+n, shellNum)
		}
		for s := first; s < first+n; s++ {
			if owner[s] >= 0 {
				return fmt.Errorf("%w: shell %d claimed by nuclei %d and %d", ErrInconsistentBasis, s, owner[s], i)
			}
			owner[s] = i
		}
	}
	for s, o := range owner {
		if o < 0 {
			return fmt.Errorf("%w: shell %d belongs to no nucleus", ErrInconsistentBasis, s)
		}
	}

	aoCount := 0
	for s := 0; s < shellNum; s++ {
		l := int(b.ShellAngMom[s])
		if l < 0 || l > MaxAngMom {
			return fmt.Errorf("%w: shell %d angular momentum %d", ErrInconsistentBasis, s, l)
		}
		first, n := b.ShellPrimIndex[s], b.ShellPrimNum[s]
		if first < 0 || n <= 0 || first+n > int64(primNum) {
			return fmt.Errorf("%w: shell %d primitives [%d,%d) outside prim_num %d",
				ErrInconsistentBasis, s, first, first+n, primNum)
		}
		aoCount += CartesianCount(l)
	}
	if aoCount != b.AONum {
		return fmt.Errorf("%w: shells span %d AOs, ao_num is %d", ErrInconsistentBasis, aoCount, b.AONum)
	}
	return nil
}
