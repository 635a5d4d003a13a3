package orbital

import "github.com/samcharles93/orbital/pkg/memory"

// SetNucleusNum sets the number of nuclei. Coordinates and charges of a
// different length no longer count as provided.
func (c *Context) SetNucleusNum(n int64) error {
	const op = "set_nucleus_num"
	if err := c.usable(op); err != nil {
		return err
	}
	if n <= 0 {
		return invalidArg(op, "nucleus count %d", n)
	}
	c.nucleus.num = n
	c.nucleus.numField.mark(memory.Host)
	c.stamp(GroupNucleus)
	return nil
}

// SetNucleusCoord sets the nucleus positions, 3*nucl_num values laid out
// as described by t.
func (c *Context) SetNucleusCoord(t Transpose, coord []float64) error {
	return c.setNucleusCoord(t, fromHost(coord))
}

// SetNucleusCoordDevice is SetNucleusCoord reading from a context-owned buffer.
func (c *Context) SetNucleusCoordDevice(t Transpose, coord memory.Buffer) error {
	return c.setNucleusCoord(t, fromBuffer[float64](coord))
}

func (c *Context) setNucleusCoord(t Transpose, s source[float64]) error {
	const op = "set_nucleus_coord"
	n, err := c.nucleusCount(op)
	if err != nil {
		return err
	}
	if !t.valid() {
		return invalidArg(op, "transpose %q", rune(t))
	}
	v, loc, err := s.load(c, op, 3*n)
	if err != nil {
		return err
	}
	if int64(len(v)) != 3*n {
		return invalidArg(op, "got %d coordinates, want %d", len(v), 3*n)
	}
	if !finite(v) {
		return invalidArg(op, "non-finite coordinate")
	}
	return store(c, op, GroupNucleus, 3*n, toRowMajor(t, v, n), loc, nil, &c.nucleus.coord, &c.nucleus.coordField)
}

// SetNucleusCharge sets the charge of each nucleus.
func (c *Context) SetNucleusCharge(charge []float64) error {
	return c.setNucleusCharge(fromHost(charge))
}

// SetNucleusChargeDevice is SetNucleusCharge reading from a context-owned buffer.
func (c *Context) SetNucleusChargeDevice(charge memory.Buffer) error {
	return c.setNucleusCharge(fromBuffer[float64](charge))
}

func (c *Context) setNucleusCharge(s source[float64]) error {
	const op = "set_nucleus_charge"
	n, err := c.nucleusCount(op)
	if err != nil {
		return err
	}
	v, loc, err := s.load(c, op, n)
	if err != nil {
		return err
	}
	return store(c, op, GroupNucleus, n, v, loc, nonNegative[float64], &c.nucleus.charge, &c.nucleus.chargeField)
}

func (c *Context) nucleusCount(op string) (int64, error) {
	if err := c.usable(op); err != nil {
		return 0, err
	}
	if !c.nucleus.numField.set {
		return 0, notReady(op, "nucleus count not set")
	}
	return c.nucleus.num, nil
}

// GetNucleusNum returns the nucleus count.
func (c *Context) GetNucleusNum() (int64, error) {
	return c.nucleusCount("get_nucleus_num")
}

// GetNucleusCoord copies the nuclear coordinates into dst in layout t.
func (c *Context) GetNucleusCoord(t Transpose, dst []float64) error {
	const op = "get_nucleus_coord"
	if !t.valid() {
		return invalidArg(op, "transpose %q", rune(t))
	}
	return readInto(c, op, c.nucleus.coordField, fromRowMajor(t, c.nucleus.coord, int64(len(c.nucleus.coord)/3)), dst)
}

// GetNucleusCharge copies the charges into dst.
func (c *Context) GetNucleusCharge(dst []float64) error {
	return readInto(c, "get_nucleus_charge", c.nucleus.chargeField, c.nucleus.charge, dst)
}

// GetNucleusCoordDevice copies the [n][3] positions into a context-owned buffer.
func (c *Context) GetNucleusCoordDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_nucleus_coord_device", c.nucleus.coordField, c.nucleus.coord, dst)
}

// GetNucleusChargeDevice copies the charges into a context-owned buffer.
func (c *Context) GetNucleusChargeDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_nucleus_charge_device", c.nucleus.chargeField, c.nucleus.charge, dst)
}
