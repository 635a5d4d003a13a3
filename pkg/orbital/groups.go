package orbital

import (
	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

// Group identifies a versioned collection of input fields.
type Group uint8

const (
	GroupElectron Group = iota
	GroupPoint
	GroupNucleus
	GroupAOBasis
	GroupMOBasis
	numGroups
)

var groupNames = [numGroups]string{
	GroupElectron: "electron",
	GroupPoint:    "point",
	GroupNucleus:  "nucleus",
	GroupAOBasis:  "ao_basis",
	GroupMOBasis:  "mo_basis",
}

func (g Group) String() string {
	if g < numGroups {
		return groupNames[g]
	}
	return "unknown"
}

// Groups lists every field group in dependency order.
func Groups() []Group {
	return []Group{GroupElectron, GroupPoint, GroupNucleus, GroupAOBasis, GroupMOBasis}
}

// Transpose describes the layout of a coordinate array: Normal is [n][3],
// Transposed is [3][n].
type Transpose byte

const (
	Normal     Transpose = 'N'
	Transposed Transpose = 'T'
)

func (t Transpose) valid() bool { return t == Normal || t == Transposed }

// field records whether a value was set and where the caller supplied it.
type field struct {
	set bool
	loc memory.Location
}

func (f *field) mark(loc memory.Location) {
	f.set = true
	f.loc = loc
}

type electronGroup struct {
	upNum, dnNum int64
	num          field
}

func (g *electronGroup) provided() bool { return g.num.set }

type pointGroup struct {
	num        int64
	coord      []float64 // [num][3]
	coordField field
}

func (g *pointGroup) provided() bool {
	return g.coordField.set && g.num > 0
}

type nucleusGroup struct {
	num    int64
	coord  []float64 // [num][3]
	charge []float64

	numField    field
	coordField  field
	chargeField field
}

func (g *nucleusGroup) provided() bool {
	return g.numField.set &&
		g.coordField.set && int64(len(g.coord)) == 3*g.num &&
		g.chargeField.set && int64(len(g.charge)) == g.num
}

type aoBasisGroup struct {
	typ      kernel.ShellType
	shellNum int64
	primNum  int64
	aoNum    int64

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

	typField             field
	shellNumField        field
	primNumField         field
	aoNumField           field
	nucleusIndexField    field
	nucleusShellNumField field
	shellAngMomField     field
	shellFactorField     field
	shellPrimNumField    field
	shellPrimIndexField  field
	exponentField        field
	coefficientField     field
	primFactorField      field
	aoFactorField        field
}

// complete reports whether every AO field is set with a length matching the
// counts currently in force. nuclNum comes from the nucleus group.
func (g *aoBasisGroup) complete(nuclNum int64) bool {
	counts := g.typField.set && g.shellNumField.set && g.primNumField.set && g.aoNumField.set
	if !counts {
		return false
	}
	return sized(g.nucleusIndexField, len(g.nucleusIndex), nuclNum) &&
		sized(g.nucleusShellNumField, len(g.nucleusShellNum), nuclNum) &&
		sized(g.shellAngMomField, len(g.shellAngMom), g.shellNum) &&
		sized(g.shellFactorField, len(g.shellFactor), g.shellNum) &&
		sized(g.shellPrimNumField, len(g.shellPrimNum), g.shellNum) &&
		sized(g.shellPrimIndexField, len(g.shellPrimIndex), g.shellNum) &&
		sized(g.exponentField, len(g.exponent), g.primNum) &&
		sized(g.coefficientField, len(g.coefficient), g.primNum) &&
		sized(g.primFactorField, len(g.primFactor), g.primNum) &&
		sized(g.aoFactorField, len(g.aoFactor), g.aoNum)
}

func sized(f field, n int, want int64) bool {
	return f.set && int64(n) == want
}

func (g *aoBasisGroup) kernelBasis() *kernel.Basis {
	return &kernel.Basis{
		Type:            g.typ,
		NucleusIndex:    g.nucleusIndex,
		NucleusShellNum: g.nucleusShellNum,
		ShellAngMom:     g.shellAngMom,
		ShellFactor:     g.shellFactor,
		ShellPrimNum:    g.shellPrimNum,
		ShellPrimIndex:  g.shellPrimIndex,
		Exponent:        g.exponent,
		Coefficient:     g.coefficient,
		PrimFactor:      g.primFactor,
		AOFactor:        g.aoFactor,
		AONum:           int(g.aoNum),
	}
}

type moBasisGroup struct {
	num         int64
	coefficient []float64 // [num][ao_num]
	numField    field
	coefField   field
}

func (g *moBasisGroup) complete(aoNum int64) bool {
	return g.numField.set && g.coefField.set && int64(len(g.coefficient)) == g.num*aoNum
}

// ElectronProvided reports whether the electron counts are set.
func (c *Context) ElectronProvided() bool {
	return !c.destroyed && c.electron.provided()
}

// PointProvided reports whether a point set is loaded.
func (c *Context) PointProvided() bool {
	return !c.destroyed && c.point.provided()
}

// NucleusProvided reports whether nucleus count, coordinates and charges are
// set and mutually consistent.
func (c *Context) NucleusProvided() bool {
	return !c.destroyed && c.nucleus.provided()
}

// AOBasisProvided reports whether the AO basis and its prerequisites
// (electron and nucleus groups) are fully set.
func (c *Context) AOBasisProvided() bool {
	return c.ElectronProvided() && c.NucleusProvided() && c.ao.complete(c.nucleus.num)
}

// MOBasisProvided reports whether the MO coefficients match the current AO
// basis.
func (c *Context) MOBasisProvided() bool {
	return c.AOBasisProvided() && c.mo.complete(c.ao.aoNum)
}

// Provided dispatches to the predicate of g.
func (c *Context) Provided(g Group) bool {
	switch g {
	case GroupElectron:
		return c.ElectronProvided()
	case GroupPoint:
		return c.PointProvided()
	case GroupNucleus:
		return c.NucleusProvided()
	case GroupAOBasis:
		return c.AOBasisProvided()
	case GroupMOBasis:
		return c.MOBasisProvided()
	default:
		return false
	}
}
