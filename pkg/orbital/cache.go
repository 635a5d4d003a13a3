package orbital

import (
	"fmt"
	"strings"
	"time"

	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

// Kind identifies a derived array.
type Kind uint8

const (
	AOValue Kind = iota
	AOVgl
	MOValue
	MOVgl
	numKinds
)

var kindNames = [numKinds]string{
	AOValue: "ao_value",
	AOVgl:   "ao_vgl",
	MOValue: "mo_value",
	MOVgl:   "mo_vgl",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds lists every derived array kind.
func Kinds() []Kind { return []Kind{AOValue, AOVgl, MOValue, MOVgl} }

// ParseKind accepts "ao_vgl" as well as "ao-vgl".
func ParseKind(s string) (Kind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown array kind %q", s)
}

// Slots is the number of derivative slots per basis function: 1 for
// value-only arrays, 5 for value, gradient and Laplacian.
func (k Kind) Slots() int {
	if k == AOVgl || k == MOVgl {
		return kernel.VGLSlots
	}
	return 1
}

// dependency is the static description of what a derived array is computed
// from. groups is transitive: an MO array is stale whenever its AO input is.
type dependency struct {
	groups   []Group
	upstream Kind
	mo       bool
}

var dependencies = [numKinds]dependency{
	AOValue: {groups: []Group{GroupNucleus, GroupAOBasis, GroupPoint}},
	AOVgl:   {groups: []Group{GroupNucleus, GroupAOBasis, GroupPoint}},
	MOValue: {groups: []Group{GroupNucleus, GroupAOBasis, GroupPoint, GroupMOBasis}, upstream: AOValue, mo: true},
	MOVgl:   {groups: []Group{GroupNucleus, GroupAOBasis, GroupPoint, GroupMOBasis}, upstream: AOVgl, mo: true},
}

// Dependencies returns the groups whose mutation invalidates k.
func Dependencies(k Kind) []Group {
	if k >= numKinds {
		return nil
	}
	return append([]Group(nil), dependencies[k].groups...)
}

// entry is the cached state of one derived array. The host buffer always
// holds the result; dev is a mirror refreshed lazily on device requests.
type entry struct {
	kind  Kind
	host  memory.Buffer
	dev   memory.Buffer
	elems int

	computed bool
	stamps   [numGroups]uint64

	gen          uint64
	mirrorGen    uint64
	computations int
}

func (c *Context) fresh(k Kind) bool {
	e := &c.cache[k]
	if !e.computed {
		return false
	}
	for _, g := range dependencies[k].groups {
		if e.stamps[g] != c.versions[g] {
			return false
		}
	}
	return true
}

// ready fails with NotReady naming the first unprovided group k needs.
func (c *Context) ready(op string, k Kind) error {
	if err := c.usable(op); err != nil {
		return err
	}
	if k >= numKinds {
		return invalidArg(op, "unknown array kind %d", k)
	}
	for _, g := range dependencies[k].groups {
		if !c.Provided(g) {
			return missingGroup(op, g)
		}
	}
	return nil
}

// elems is the number of float64 values in a k array for the current counts.
func (c *Context) elems(k Kind) int {
	n := c.ao.aoNum
	if dependencies[k].mo {
		n = c.mo.num
	}
	return int(c.point.num) * k.Slots() * int(n)
}

// Len returns how many float64 values a k array currently holds.
func (c *Context) Len(k Kind) (int, error) {
	op := "len_" + k.String()
	if err := c.ready(op, k); err != nil {
		return 0, err
	}
	return c.elems(k), nil
}

// Shape returns the dimensions of a k array: [points, functions] for value
// arrays, [points, 5, functions] for VGL arrays.
func (c *Context) Shape(k Kind) ([]int, error) {
	n, err := c.Len(k)
	if err != nil {
		return nil, err
	}
	points := int(c.point.num)
	if k.Slots() == 1 {
		return []int{points, n / points}, nil
	}
	return []int{points, k.Slots(), n / (points * k.Slots())}, nil
}

// Fresh reports whether k is computed and current with every group it
// depends on.
func (c *Context) Fresh(k Kind) bool {
	return k < numKinds && !c.destroyed && c.fresh(k)
}

// Computations reports how many times k has been computed.
func (c *Context) Computations(k Kind) int {
	if k >= numKinds {
		return 0
	}
	return c.cache[k].computations
}

// Stamp returns the group versions k was last computed from, or nil if it
// has never been computed.
func (c *Context) Stamp(k Kind) map[Group]uint64 {
	if k >= numKinds || c.cache[k].computations == 0 {
		return nil
	}
	e := &c.cache[k]
	out := make(map[Group]uint64, len(dependencies[k].groups))
	for _, g := range dependencies[k].groups {
		out[g] = e.stamps[g]
	}
	return out
}

// ensure makes k fresh, computing its upstream first. A failed computation
// leaves k stale.
func (c *Context) ensure(op string, k Kind) error {
	if c.fresh(k) {
		return nil
	}
	d := dependencies[k]
	e := &c.cache[k]

	var basis *kernel.Basis
	if d.mo {
		if err := c.ensure(op, d.upstream); err != nil {
			return err
		}
	} else {
		basis = c.ao.kernelBasis()
		if err := basis.Validate(int(c.nucleus.num)); err != nil {
			return &Error{Kind: ErrInvalidArgument, Op: op, Msg: "ao basis", Err: err}
		}
	}

	n := c.elems(k)
	if err := c.allocate(op, e, n); err != nil {
		return err
	}
	out := e.host.Float64s()[:n]

	start := time.Now()
	var err error
	switch {
	case k == AOValue && c.fresh(AOVgl):
		c.sliceValues(out)
	case d.mo:
		up := c.cache[d.upstream]
		rows := int(c.point.num) * k.Slots()
		err = c.eval.MO(up.host.Float64s()[:up.elems], rows, int(c.ao.aoNum), c.mo.coefficient, int(c.mo.num), out)
	default:
		err = c.eval.AO(basis, c.nucleus.coord, c.point.coord, k == AOVgl, out)
	}
	if err != nil {
		e.computed = false
		c.log.Debug("compute failed", "kind", k.String(), "error", err)
		return computeErr(op, err)
	}

	e.stamps = c.versions
	e.computed = true
	e.gen++
	e.computations++
	c.log.Debug("recomputed", "kind", k.String(), "elems", n, "elapsed", time.Since(start))
	return nil
}

// sliceValues copies the value slot of the fresh AO VGL array into out.
func (c *Context) sliceValues(out []float64) {
	vgl := c.cache[AOVgl].host.Float64s()
	ao := int(c.ao.aoNum)
	for p := range int(c.point.num) {
		copy(out[p*ao:(p+1)*ao], vgl[p*kernel.VGLSlots*ao:])
	}
}

// allocate sizes e for n values, reallocating when the shape changed.
func (c *Context) allocate(op string, e *entry, n int) error {
	if e.elems == n && !e.host.IsZero() {
		return nil
	}
	if err := c.release(op, e); err != nil {
		return err
	}
	host, err := c.mem.AllocFloat64s(memory.Host, n)
	if err != nil {
		return memErr(op, err)
	}
	var dev memory.Buffer
	if c.mem.HasDevice() {
		dev, err = c.mem.AllocFloat64s(memory.Device, n)
		if err != nil {
			_ = c.mem.Free(host)
			return memErr(op, err)
		}
	}
	e.host, e.dev, e.elems = host, dev, n
	c.log.Debug("allocated", "kind", e.kind.String(), "elems", n, "mirror", !dev.IsZero())
	return nil
}

// release frees e's buffers and marks it stale.
func (c *Context) release(op string, e *entry) error {
	var err error
	for _, b := range []memory.Buffer{e.host, e.dev} {
		if b.IsZero() {
			continue
		}
		if ferr := c.mem.Free(b); ferr != nil && err == nil {
			err = memErr(op, ferr)
		}
	}
	*e = entry{kind: e.kind, computations: e.computations}
	return err
}

// syncMirror refreshes the device copy of e if it predates the last compute.
func (c *Context) syncMirror(op string, e *entry) error {
	if e.dev.IsZero() {
		return &Error{Kind: ErrResource, Op: op, Err: memory.ErrNoDevice}
	}
	if e.mirrorGen == e.gen {
		return nil
	}
	if err := c.mem.Copy(e.dev, e.host, int64(e.elems)*8); err != nil {
		return memErr(op, err)
	}
	e.mirrorGen = e.gen
	return nil
}

// Get makes k fresh and copies it into dst, a buffer owned by this context
// in either location. dst must hold at least Len(k) values; nothing is
// computed or written otherwise.
func (c *Context) Get(k Kind, dst memory.Buffer) error {
	op := "get_" + k.String()
	if err := c.ready(op, k); err != nil {
		return err
	}
	if !c.mem.Owns(dst) {
		return invalidArg(op, "destination is not a live buffer of this context")
	}
	n := c.elems(k)
	bytes := int64(n) * 8
	if dst.Bytes() < bytes {
		return invalidArg(op, "destination holds %d bytes, need %d", dst.Bytes(), bytes)
	}
	if err := c.ensure(op, k); err != nil {
		return err
	}
	e := &c.cache[k]
	src := e.host
	if dst.Location() == memory.Device {
		if err := c.syncMirror(op, e); err != nil {
			return err
		}
		src = e.dev
	}
	if err := c.mem.Copy(dst, src, bytes); err != nil {
		return memErr(op, err)
	}
	return nil
}

// GetHost makes k fresh and copies it into dst.
func (c *Context) GetHost(k Kind, dst []float64) error {
	op := "get_" + k.String()
	if err := c.ready(op, k); err != nil {
		return err
	}
	n := c.elems(k)
	if len(dst) < n {
		return invalidArg(op, "destination holds %d values, need %d", len(dst), n)
	}
	if err := c.ensure(op, k); err != nil {
		return err
	}
	copy(dst, c.cache[k].host.Float64s()[:n])
	return nil
}

// GetAOValue fills dst, laid out [point][ao].
func (c *Context) GetAOValue(dst []float64) error { return c.GetHost(AOValue, dst) }

// GetAOVgl fills dst, laid out [point][5][ao].
func (c *Context) GetAOVgl(dst []float64) error { return c.GetHost(AOVgl, dst) }

// GetMOValue fills dst, laid out [point][mo].
func (c *Context) GetMOValue(dst []float64) error { return c.GetHost(MOValue, dst) }

// GetMOVgl fills dst, laid out [point][5][mo].
func (c *Context) GetMOVgl(dst []float64) error { return c.GetHost(MOVgl, dst) }

// GetAOValueDevice and the other ...Device array getters copy into a
// context-owned buffer; a device destination is served from the device mirror.
func (c *Context) GetAOValueDevice(dst memory.Buffer) error { return c.Get(AOValue, dst) }
func (c *Context) GetAOVglDevice(dst memory.Buffer) error   { return c.Get(AOVgl, dst) }
func (c *Context) GetMOValueDevice(dst memory.Buffer) error { return c.Get(MOValue, dst) }
func (c *Context) GetMOVglDevice(dst memory.Buffer) error   { return c.Get(MOVgl, dst) }
