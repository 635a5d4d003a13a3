package kernel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MO projects AO rows onto molecular orbitals: out[r][m] = sum_k ao[r][k] *
// coef[m][k]. A VGL array is handled by passing rows = points*5, since the
// [point][derivative][ao] layout is already row-major per derivative slice.
func MO(ao []float64, rows, aoNum int, coef []float64, moNum int, out []float64) error {
	if rows <= 0 || aoNum <= 0 || moNum <= 0 {
		return fmt.Errorf("%w: rows=%d ao_num=%d mo_num=%d", ErrShape, rows, aoNum, moNum)
	}
	if len(ao) < rows*aoNum || len(coef) < moNum*aoNum || len(out) < rows*moNum {
		return fmt.Errorf("%w: ao=%d coef=%d out=%d for %dx%d by %dx%d",
			ErrShape, len(ao), len(coef), len(out), rows, aoNum, moNum, aoNum)
	}
	a := mat.NewDense(rows, aoNum, ao[:rows*aoNum])
	c := mat.NewDense(moNum, aoNum, coef[:moNum*aoNum])
	dst := mat.NewDense(rows, moNum, out[:rows*moNum])
	dst.Mul(a, c.T())
	return nil
}
