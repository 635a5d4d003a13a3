package orbital

import "github.com/samcharles93/orbital/pkg/memory"

// SetMONum sets the number of molecular orbitals. A coefficient matrix of a
// different shape stops counting as provided.
func (c *Context) SetMONum(n int64) error {
	const op = "set_mo_num"
	if err := c.usable(op); err != nil {
		return err
	}
	if n <= 0 {
		return invalidArg(op, "mo count %d", n)
	}
	c.mo.num = n
	c.mo.numField.mark(memory.Host)
	c.stamp(GroupMOBasis)
	return nil
}

// SetMOCoefficient sets the [mo_num][ao_num] coefficient matrix.
func (c *Context) SetMOCoefficient(coef []float64) error {
	return c.setMOCoefficient(fromHost(coef))
}

// SetMOCoefficientDevice is SetMOCoefficient reading from a context-owned buffer.
func (c *Context) SetMOCoefficientDevice(coef memory.Buffer) error {
	return c.setMOCoefficient(fromBuffer[float64](coef))
}

func (c *Context) setMOCoefficient(s source[float64]) error {
	const op = "set_mo_coefficient"
	if err := c.usable(op); err != nil {
		return err
	}
	if !c.AOBasisProvided() {
		return missingGroup(op, GroupAOBasis)
	}
	if !c.mo.numField.set {
		return notReady(op, "mo_num not set")
	}
	n := c.mo.num * c.ao.aoNum
	v, loc, err := s.load(c, op, n)
	if err != nil {
		return err
	}
	if !finite(v) {
		return invalidArg(op, "non-finite coefficient")
	}
	return store(c, op, GroupMOBasis, n, v, loc, nil, &c.mo.coefficient, &c.mo.coefField)
}

// GetMONum returns the MO count.
func (c *Context) GetMONum() (int64, error) {
	const op = "get_mo_num"
	if err := c.usable(op); err != nil {
		return 0, err
	}
	if !c.mo.numField.set {
		return 0, notReady(op, "mo_num not set")
	}
	return c.mo.num, nil
}

// GetMOCoefficient copies the [mo][ao] coefficients into dst.
func (c *Context) GetMOCoefficient(dst []float64) error {
	return readInto(c, "get_mo_coefficient", c.mo.coefField, c.mo.coefficient, dst)
}

// GetMOCoefficientDevice copies the coefficients into a context-owned buffer.
func (c *Context) GetMOCoefficientDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_mo_coefficient_device", c.mo.coefField, c.mo.coefficient, dst)
}
