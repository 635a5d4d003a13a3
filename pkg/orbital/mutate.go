package orbital

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RescaleMO multiplies every MO coefficient by factor. A zero or non-finite
// factor is rejected and nothing changes. Only MO arrays become stale.
func (c *Context) RescaleMO(factor float64) error {
	const op = "rescale_mo"
	if err := c.usable(op); err != nil {
		return err
	}
	if factor == 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return invalidArg(op, "scaling factor %v", factor)
	}
	if !c.MOBasisProvided() {
		return missingGroup(op, GroupMOBasis)
	}
	floats.Scale(factor, c.mo.coefficient)
	c.stamp(GroupMOBasis)
	c.log.Debug("rescaled mo coefficients", "factor", factor, "version", c.versions[GroupMOBasis])
	return nil
}

// SelectMO keeps the orbitals whose entry in keep is true, in their original
// order. keep must have one entry per orbital and select at least one.
// Cached MO arrays are released since their shape changes.
func (c *Context) SelectMO(keep []bool) error {
	const op = "select_mo"
	if err := c.usable(op); err != nil {
		return err
	}
	if !c.MOBasisProvided() {
		return missingGroup(op, GroupMOBasis)
	}
	if int64(len(keep)) != c.mo.num {
		return invalidArg(op, "mask has %d entries, mo_num is %d", len(keep), c.mo.num)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept == 0 {
		return invalidArg(op, "mask keeps no orbitals")
	}

	ao := int(c.ao.aoNum)
	coef := make([]float64, 0, kept*ao)
	for m, k := range keep {
		if k {
			coef = append(coef, c.mo.coefficient[m*ao:(m+1)*ao]...)
		}
	}

	var err error
	for _, k := range []Kind{MOValue, MOVgl} {
		if rerr := c.release(op, &c.cache[k]); rerr != nil && err == nil {
			err = rerr
		}
	}
	c.mo.coefficient = coef
	c.mo.num = int64(kept)
	c.stamp(GroupMOBasis)
	c.log.Debug("selected mo subset", "kept", kept, "of", len(keep))
	return err
}
