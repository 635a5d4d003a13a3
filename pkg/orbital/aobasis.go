package orbital

import (
	"github.com/samcharles93/orbital/pkg/kernel"
	"github.com/samcharles93/orbital/pkg/memory"
)

// aoReady gates every AO basis setter on the electron and nucleus groups.
func (c *Context) aoReady(op string) error {
	if err := c.usable(op); err != nil {
		return err
	}
	if !c.ElectronProvided() {
		return missingGroup(op, GroupElectron)
	}
	if !c.NucleusProvided() {
		return missingGroup(op, GroupNucleus)
	}
	return nil
}

// SetAOBasisType sets the radial form of every shell: Gaussian or Slater.
func (c *Context) SetAOBasisType(t kernel.ShellType) error {
	const op = "set_ao_basis_type"
	if err := c.aoReady(op); err != nil {
		return err
	}
	if !t.Valid() {
		return invalidArg(op, "basis type %q", rune(t))
	}
	c.ao.typ = t
	c.ao.typField.mark(memory.Host)
	c.stamp(GroupAOBasis)
	return nil
}

// SetAOBasisShellNum sets the number of shells. Per-shell arrays must match it.
func (c *Context) SetAOBasisShellNum(n int64) error {
	return c.setAOCount("set_ao_basis_shell_num", n, &c.ao.shellNum, &c.ao.shellNumField)
}

// SetAOBasisPrimNum sets the number of primitives. Per-primitive arrays must
// match it.
func (c *Context) SetAOBasisPrimNum(n int64) error {
	return c.setAOCount("set_ao_basis_prim_num", n, &c.ao.primNum, &c.ao.primNumField)
}

// SetAONum sets the number of atomic orbitals.
func (c *Context) SetAONum(n int64) error {
	return c.setAOCount("set_ao_num", n, &c.ao.aoNum, &c.ao.aoNumField)
}

func (c *Context) setAOCount(op string, n int64, dst *int64, f *field) error {
	if err := c.aoReady(op); err != nil {
		return err
	}
	if n <= 0 {
		return invalidArg(op, "count %d", n)
	}
	*dst = n
	f.mark(memory.Host)
	c.stamp(GroupAOBasis)
	return nil
}

// setAOArray stores one per-nucleus, per-shell, per-primitive or per-AO array
// whose length is fixed by a previously set count.
func setAOArray[T memory.Elem](c *Context, op, countName string, count int64, countSet bool, s source[T], check func(T) bool, dst *[]T, f *field) error {
	if err := c.aoReady(op); err != nil {
		return err
	}
	if !countSet {
		return notReady(op, countName+" not set")
	}
	v, loc, err := s.load(c, op, count)
	if err != nil {
		return err
	}
	return store(c, op, GroupAOBasis, count, v, loc, check, dst, f)
}

func validAngMom(l int32) bool { return l >= 0 && l <= kernel.MaxAngMom }

func (c *Context) setNucleusIndex(s source[int64]) error {
	return setAOArray(c, "set_ao_basis_nucleus_index", "nucleus count", c.nucleus.num, c.nucleus.numField.set,
		s, nonNegative[int64], &c.ao.nucleusIndex, &c.ao.nucleusIndexField)
}

func (c *Context) setNucleusShellNum(s source[int64]) error {
	return setAOArray(c, "set_ao_basis_nucleus_shell_num", "nucleus count", c.nucleus.num, c.nucleus.numField.set,
		s, nonNegative[int64], &c.ao.nucleusShellNum, &c.ao.nucleusShellNumField)
}

func (c *Context) setShellAngMom(s source[int32]) error {
	return setAOArray(c, "set_ao_basis_shell_ang_mom", "shell_num", c.ao.shellNum, c.ao.shellNumField.set,
		s, validAngMom, &c.ao.shellAngMom, &c.ao.shellAngMomField)
}

func (c *Context) setShellFactor(s source[float64]) error {
	return setAOArray(c, "set_ao_basis_shell_factor", "shell_num", c.ao.shellNum, c.ao.shellNumField.set,
		s, nil, &c.ao.shellFactor, &c.ao.shellFactorField)
}

func (c *Context) setShellPrimNum(s source[int64]) error {
	return setAOArray(c, "set_ao_basis_shell_prim_num", "shell_num", c.ao.shellNum, c.ao.shellNumField.set,
		s, positive[int64], &c.ao.shellPrimNum, &c.ao.shellPrimNumField)
}

func (c *Context) setShellPrimIndex(s source[int64]) error {
	return setAOArray(c, "set_ao_basis_shell_prim_index", "shell_num", c.ao.shellNum, c.ao.shellNumField.set,
		s, nonNegative[int64], &c.ao.shellPrimIndex, &c.ao.shellPrimIndexField)
}

func (c *Context) setExponent(s source[float64]) error {
	return setAOArray(c, "set_ao_basis_exponent", "prim_num", c.ao.primNum, c.ao.primNumField.set,
		s, positive[float64], &c.ao.exponent, &c.ao.exponentField)
}

func (c *Context) setCoefficient(s source[float64]) error {
	return setAOArray(c, "set_ao_basis_coefficient", "prim_num", c.ao.primNum, c.ao.primNumField.set,
		s, nil, &c.ao.coefficient, &c.ao.coefficientField)
}

func (c *Context) setPrimFactor(s source[float64]) error {
	return setAOArray(c, "set_ao_basis_prim_factor", "prim_num", c.ao.primNum, c.ao.primNumField.set,
		s, nil, &c.ao.primFactor, &c.ao.primFactorField)
}

func (c *Context) setAOFactor(s source[float64]) error {
	return setAOArray(c, "set_ao_basis_ao_factor", "ao_num", c.ao.aoNum, c.ao.aoNumField.set,
		s, nil, &c.ao.aoFactor, &c.ao.aoFactorField)
}

// SetAOBasisNucleusIndex sets the index of the first shell of each nucleus.
func (c *Context) SetAOBasisNucleusIndex(v []int64) error { return c.setNucleusIndex(fromHost(v)) }

// SetAOBasisNucleusShellNum sets the number of shells on each nucleus.
func (c *Context) SetAOBasisNucleusShellNum(v []int64) error {
	return c.setNucleusShellNum(fromHost(v))
}

// SetAOBasisShellAngMom sets the angular momentum (0 to 7) of each shell.
func (c *Context) SetAOBasisShellAngMom(v []int32) error { return c.setShellAngMom(fromHost(v)) }

// SetAOBasisShellFactor sets the normalization factor of each shell.
func (c *Context) SetAOBasisShellFactor(v []float64) error { return c.setShellFactor(fromHost(v)) }

// SetAOBasisShellPrimNum sets the number of primitives in each shell.
func (c *Context) SetAOBasisShellPrimNum(v []int64) error { return c.setShellPrimNum(fromHost(v)) }

// SetAOBasisShellPrimIndex sets the index of the first primitive of each shell.
func (c *Context) SetAOBasisShellPrimIndex(v []int64) error { return c.setShellPrimIndex(fromHost(v)) }

// SetAOBasisExponent sets the exponent of each primitive; all must be positive.
func (c *Context) SetAOBasisExponent(v []float64) error { return c.setExponent(fromHost(v)) }

// SetAOBasisCoefficient sets the contraction coefficient of each primitive.
func (c *Context) SetAOBasisCoefficient(v []float64) error { return c.setCoefficient(fromHost(v)) }

// SetAOBasisPrimFactor sets the normalization factor of each primitive.
func (c *Context) SetAOBasisPrimFactor(v []float64) error { return c.setPrimFactor(fromHost(v)) }

// SetAOBasisAOFactor sets the normalization factor of each AO.
func (c *Context) SetAOBasisAOFactor(v []float64) error { return c.setAOFactor(fromHost(v)) }

// SetAOBasisNucleusIndexDevice is SetAOBasisNucleusIndex reading from a context-owned
// buffer in either location. The other ...Device setters below follow the
// same rule: the buffer must hold at least the expected element count.
func (c *Context) SetAOBasisNucleusIndexDevice(b memory.Buffer) error {
	return c.setNucleusIndex(fromBuffer[int64](b))
}

// SetAOBasisNucleusShellNumDevice is SetAOBasisNucleusShellNum reading from a context-owned buffer.
func (c *Context) SetAOBasisNucleusShellNumDevice(b memory.Buffer) error {
	return c.setNucleusShellNum(fromBuffer[int64](b))
}

// SetAOBasisShellAngMomDevice is SetAOBasisShellAngMom reading from a context-owned buffer.
func (c *Context) SetAOBasisShellAngMomDevice(b memory.Buffer) error {
	return c.setShellAngMom(fromBuffer[int32](b))
}

// SetAOBasisShellFactorDevice is SetAOBasisShellFactor reading from a context-owned buffer.
func (c *Context) SetAOBasisShellFactorDevice(b memory.Buffer) error {
	return c.setShellFactor(fromBuffer[float64](b))
}

// SetAOBasisShellPrimNumDevice is SetAOBasisShellPrimNum reading from a context-owned buffer.
func (c *Context) SetAOBasisShellPrimNumDevice(b memory.Buffer) error {
	return c.setShellPrimNum(fromBuffer[int64](b))
}

// SetAOBasisShellPrimIndexDevice is SetAOBasisShellPrimIndex reading from a context-owned buffer.
func (c *Context) SetAOBasisShellPrimIndexDevice(b memory.Buffer) error {
	return c.setShellPrimIndex(fromBuffer[int64](b))
}

// SetAOBasisExponentDevice is SetAOBasisExponent reading from a context-owned buffer.
func (c *Context) SetAOBasisExponentDevice(b memory.Buffer) error {
	return c.setExponent(fromBuffer[float64](b))
}

// SetAOBasisCoefficientDevice is SetAOBasisCoefficient reading from a context-owned buffer.
func (c *Context) SetAOBasisCoefficientDevice(b memory.Buffer) error {
	return c.setCoefficient(fromBuffer[float64](b))
}

// SetAOBasisPrimFactorDevice is SetAOBasisPrimFactor reading from a context-owned buffer.
func (c *Context) SetAOBasisPrimFactorDevice(b memory.Buffer) error {
	return c.setPrimFactor(fromBuffer[float64](b))
}

// SetAOBasisAOFactorDevice is SetAOBasisAOFactor reading from a context-owned buffer.
func (c *Context) SetAOBasisAOFactorDevice(b memory.Buffer) error {
	return c.setAOFactor(fromBuffer[float64](b))
}

// GetAOBasisType returns the shell type, NotReady until it is set.
func (c *Context) GetAOBasisType() (kernel.ShellType, error) {
	const op = "get_ao_basis_type"
	if err := c.usable(op); err != nil {
		return 0, err
	}
	if !c.ao.typField.set {
		return 0, notReady(op, "basis type not set")
	}
	return c.ao.typ, nil
}

func (c *Context) getAOCount(op string, n int64, f field) (int64, error) {
	if err := c.usable(op); err != nil {
		return 0, err
	}
	if !f.set {
		return 0, notReady(op, "count not set")
	}
	return n, nil
}

// GetAOBasisShellNum returns the shell count.
func (c *Context) GetAOBasisShellNum() (int64, error) {
	return c.getAOCount("get_ao_basis_shell_num", c.ao.shellNum, c.ao.shellNumField)
}

// GetAOBasisPrimNum returns the primitive count.
func (c *Context) GetAOBasisPrimNum() (int64, error) {
	return c.getAOCount("get_ao_basis_prim_num", c.ao.primNum, c.ao.primNumField)
}

// GetAONum returns the AO count.
func (c *Context) GetAONum() (int64, error) {
	return c.getAOCount("get_ao_num", c.ao.aoNum, c.ao.aoNumField)
}

// GetAOBasisNucleusIndex copies the array set by SetAOBasisNucleusIndex into
// dst. Every array getter here fails with NotReady before the field is set and
// with InvalidArgument when dst is too short.
func (c *Context) GetAOBasisNucleusIndex(dst []int64) error {
	return readInto(c, "get_ao_basis_nucleus_index", c.ao.nucleusIndexField, c.ao.nucleusIndex, dst)
}

// GetAOBasisNucleusShellNum copies the shell count of each nucleus into dst.
func (c *Context) GetAOBasisNucleusShellNum(dst []int64) error {
	return readInto(c, "get_ao_basis_nucleus_shell_num", c.ao.nucleusShellNumField, c.ao.nucleusShellNum, dst)
}

// GetAOBasisShellAngMom copies each shell's angular momentum into dst.
func (c *Context) GetAOBasisShellAngMom(dst []int32) error {
	return readInto(c, "get_ao_basis_shell_ang_mom", c.ao.shellAngMomField, c.ao.shellAngMom, dst)
}

// GetAOBasisShellFactor copies the shell factors into dst.
func (c *Context) GetAOBasisShellFactor(dst []float64) error {
	return readInto(c, "get_ao_basis_shell_factor", c.ao.shellFactorField, c.ao.shellFactor, dst)
}

// GetAOBasisShellPrimNum copies the primitive count of each shell into dst.
func (c *Context) GetAOBasisShellPrimNum(dst []int64) error {
	return readInto(c, "get_ao_basis_shell_prim_num", c.ao.shellPrimNumField, c.ao.shellPrimNum, dst)
}

// GetAOBasisShellPrimIndex copies each shell's first primitive index into dst.
func (c *Context) GetAOBasisShellPrimIndex(dst []int64) error {
	return readInto(c, "get_ao_basis_shell_prim_index", c.ao.shellPrimIndexField, c.ao.shellPrimIndex, dst)
}

// GetAOBasisExponent copies the primitive exponents into dst.
func (c *Context) GetAOBasisExponent(dst []float64) error {
	return readInto(c, "get_ao_basis_exponent", c.ao.exponentField, c.ao.exponent, dst)
}

// GetAOBasisCoefficient copies the contraction coefficients into dst.
func (c *Context) GetAOBasisCoefficient(dst []float64) error {
	return readInto(c, "get_ao_basis_coefficient", c.ao.coefficientField, c.ao.coefficient, dst)
}

// GetAOBasisPrimFactor copies the primitive factors into dst.
func (c *Context) GetAOBasisPrimFactor(dst []float64) error {
	return readInto(c, "get_ao_basis_prim_factor", c.ao.primFactorField, c.ao.primFactor, dst)
}

// GetAOBasisAOFactor copies the AO factors into dst.
func (c *Context) GetAOBasisAOFactor(dst []float64) error {
	return readInto(c, "get_ao_basis_ao_factor", c.ao.aoFactorField, c.ao.aoFactor, dst)
}

// GetAOBasisExponentDevice copies the exponents into a context-owned buffer.
func (c *Context) GetAOBasisExponentDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_ao_basis_exponent_device", c.ao.exponentField, c.ao.exponent, dst)
}

// GetAOBasisCoefficientDevice copies the coefficients into a context-owned buffer.
func (c *Context) GetAOBasisCoefficientDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_ao_basis_coefficient_device", c.ao.coefficientField, c.ao.coefficient, dst)
}

// GetAOBasisAOFactorDevice copies the AO factors into a context-owned buffer.
func (c *Context) GetAOBasisAOFactorDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_ao_basis_ao_factor_device", c.ao.aoFactorField, c.ao.aoFactor, dst)
}
