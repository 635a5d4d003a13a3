package orbital

import (
	"math"

	"github.com/samcharles93/orbital/pkg/memory"
)

// SetPoints replaces the current point set. coord holds 3*n values laid out
// as described by t.
func (c *Context) SetPoints(t Transpose, coord []float64) error {
	return c.setPoints(t, int64(len(coord)/3), fromHost(coord))
}

// SetPointsDevice replaces the current point set from a context-owned buffer
// holding n points.
func (c *Context) SetPointsDevice(t Transpose, n int64, coord memory.Buffer) error {
	return c.setPoints(t, n, fromBuffer[float64](coord))
}

func (c *Context) setPoints(t Transpose, n int64, s source[float64]) error {
	const op = "set_points"
	if err := c.usable(op); err != nil {
		return err
	}
	if !t.valid() {
		return invalidArg(op, "transpose %q", rune(t))
	}
	if n <= 0 {
		return invalidArg(op, "point count %d", n)
	}
	v, loc, err := s.load(c, op, 3*n)
	if err != nil {
		return err
	}
	if int64(len(v)) != 3*n {
		return invalidArg(op, "got %d coordinates, want a multiple of 3", len(v))
	}
	if !finite(v) {
		return invalidArg(op, "non-finite coordinate")
	}
	c.point.num = n
	c.point.coord = toRowMajor(t, v, n)
	c.point.coordField.mark(loc)
	c.stamp(GroupPoint)
	return nil
}

// GetPointNum returns the number of points in the current set.
func (c *Context) GetPointNum() (int64, error) {
	const op = "get_point_num"
	if err := c.usable(op); err != nil {
		return 0, err
	}
	if !c.point.provided() {
		return 0, missingGroup(op, GroupPoint)
	}
	return c.point.num, nil
}

// GetPoints copies the current point coordinates into dst in layout t.
func (c *Context) GetPoints(t Transpose, dst []float64) error {
	const op = "get_points"
	if !t.valid() {
		return invalidArg(op, "transpose %q", rune(t))
	}
	return readInto(c, op, c.point.coordField, fromRowMajor(t, c.point.coord, c.point.num), dst)
}

// GetPointsDevice copies the [n][3] points into a context-owned buffer.
func (c *Context) GetPointsDevice(dst memory.Buffer) error {
	return readIntoBuffer(c, "get_points_device", c.point.coordField, c.point.coord, dst)
}

// toRowMajor converts coordinates in layout t into a fresh [n][3] slice.
func toRowMajor(t Transpose, v []float64, n int64) []float64 {
	out := make([]float64, 3*n)
	if t == Normal {
		copy(out, v)
		return out
	}
	for i := range n {
		for k := range int64(3) {
			out[3*i+k] = v[k*n+i]
		}
	}
	return out
}

// fromRowMajor converts [n][3] coordinates into layout t.
func fromRowMajor(t Transpose, v []float64, n int64) []float64 {
	if t == Normal {
		return v
	}
	out := make([]float64, len(v))
	for i := range n {
		for k := range int64(3) {
			out[k*n+i] = v[3*i+k]
		}
	}
	return out
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
