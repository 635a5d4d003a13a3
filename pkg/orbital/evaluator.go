package orbital

import "github.com/samcharles93/orbital/pkg/kernel"

// Evaluator fills derived arrays. Both methods must be pure and must return
// only once out is completely written.
type Evaluator interface {
	// AO evaluates the basis at points into out, laid out [point][ao] or,
	// with vgl, [point][5][ao].
	AO(b *kernel.Basis, nuclCoord, points []float64, vgl bool, out []float64) error
	// MO computes out[r][m] = sum_k ao[r][k] * coef[m][k].
	MO(ao []float64, rows, aoNum int, coef []float64, moNum int, out []float64) error
}

// KernelEvaluator is the default Evaluator backed by package kernel.
type KernelEvaluator struct {
	Options kernel.Options
}

func (k KernelEvaluator) AO(b *kernel.Basis, nuclCoord, points []float64, vgl bool, out []float64) error {
	if vgl {
		return kernel.AOVGL(b, nuclCoord, points, out, k.Options)
	}
	return kernel.AOValue(b, nuclCoord, points, out, k.Options)
}

func (KernelEvaluator) MO(ao []float64, rows, aoNum int, coef []float64, moNum int, out []float64) error {
	return kernel.MO(ao, rows, aoNum, coef, moNum, out)
}
