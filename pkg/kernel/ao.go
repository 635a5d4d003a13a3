package kernel

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// VGLSlots is the number of derivative slots per basis function: value,
// d/dx, d/dy, d/dz and Laplacian.
const VGLSlots = 5

// expCutoff skips primitives whose exponent argument makes them negligible.
const expCutoff = 50.0

// minPointsPerWorker keeps tiny point sets on a single goroutine.
const minPointsPerWorker = 16

// radial holds a contracted radial part and its derivatives at one point.
type radial struct {
	v, x, y, z, lap float64
}

func (b *Basis) contract(s int, dx, dy, dz, r2 float64, derivs bool) radial {
	var out radial
	first := int(b.ShellPrimIndex[s])
	last := first + int(b.ShellPrimNum[s])
	switch b.Type {
	case Gaussian:
		for p := first; p < last; p++ {
			a := b.Exponent[p]
			if a*r2 > expCutoff {
				continue
			}
			e := b.Coefficient[p] * b.PrimFactor[p] * math.Exp(-a*r2)
			out.v += e
			if derivs {
				g := -2 * a * e
				out.x += g * dx
				out.y += g * dy
				out.z += g * dz
				out.lap += (4*a*a*r2 - 6*a) * e
			}
		}
	case Slater:
		r := math.Sqrt(r2)
		for p := first; p < last; p++ {
			a := b.Exponent[p]
			if a*r > expCutoff {
				continue
			}
			e := b.Coefficient[p] * b.PrimFactor[p] * math.Exp(-a*r)
			out.v += e
			if derivs {
				out.lap += a * a * e
				if r > 0 {
					g := -a * e / r
					out.x += g * dx
					out.y += g * dy
					out.z += g * dz
					out.lap -= 2 * a * e / r
				}
			}
		}
	}
	f := b.ShellFactor[s]
	out.v *= f
	out.x *= f
	out.y *= f
	out.z *= f
	out.lap *= f
	return out
}

// ipow returns x^n for small n, and 0 for negative n so derivative terms of
// vanishing powers stay finite at the nucleus.
func ipow(x float64, n int) float64 {
	if n < 0 {
		return 0
	}
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}

// Options tunes evaluation parallelism. Workers <= 0 uses GOMAXPROCS.
type Options struct {
	Workers int
}

func (o Options) workers(points int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if limit := (points + minPointsPerWorker - 1) / minPointsPerWorker; w > limit {
		w = limit
	}
	if w < 1 {
		w = 1
	}
	return w
}

// AOVGL evaluates every AO and its derivatives at each point. nuclCoord is
// [nucl][3], points is [point][3] and out is [point][5][ao].
func AOVGL(b *Basis, nuclCoord, points, out []float64, opts Options) error {
	return evaluateAO(b, nuclCoord, points, out, true, opts)
}

// AOValue evaluates every AO at each point into out, laid out [point][ao].
func AOValue(b *Basis, nuclCoord, points, out []float64, opts Options) error {
	return evaluateAO(b, nuclCoord, points, out, false, opts)
}

func evaluateAO(b *Basis, nuclCoord, points, out []float64, derivs bool, opts Options) error {
	if len(nuclCoord)%3 != 0 || len(points)%3 != 0 {
		return fmt.Errorf("%w: coordinates must be triples", ErrShape)
	}
	nuclNum := len(nuclCoord) / 3
	pointNum := len(points) / 3
	refs, err := b.plan(nuclNum)
	if err != nil {
		return err
	}
	stride := b.AONum
	if derivs {
		stride = VGLSlots * b.AONum
	}
	if len(out) < pointNum*stride {
		return fmt.Errorf("%w: output holds %d values, need %d", ErrShape, len(out), pointNum*stride)
	}
	if pointNum == 0 {
		return nil
	}

	workers := opts.workers(pointNum)
	chunk := (pointNum + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < pointNum; start += chunk {
		end := min(start+chunk, pointNum)
		g.Go(func() error {
			for p := start; p < end; p++ {
				row := out[p*stride : (p+1)*stride]
				if derivs {
					b.vglAt(refs, nuclCoord, points[3*p:3*p+3], row)
				} else {
					b.valueAt(refs, nuclCoord, points[3*p:3*p+3], row)
				}
				for _, v := range row {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						return fmt.Errorf("%w at point %d", ErrNonFinite, p)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *Basis) valueAt(refs []shellRef, nuclCoord, pt, row []float64) {
	for _, ref := range refs {
		n := nuclCoord[3*ref.nucleus : 3*ref.nucleus+3]
		dx, dy, dz := pt[0]-n[0], pt[1]-n[1], pt[2]-n[2]
		rad := b.contract(ref.shell, dx, dy, dz, dx*dx+dy*dy+dz*dz, false)
		for c, pw := range ref.powers {
			k := ref.aoStart + c
			row[k] = b.AOFactor[k] * ipow(dx, pw[0]) * ipow(dy, pw[1]) * ipow(dz, pw[2]) * rad.v
		}
	}
}

func (b *Basis) vglAt(refs []shellRef, nuclCoord, pt, row []float64) {
	ao := b.AONum
	for _, ref := range refs {
		n := nuclCoord[3*ref.nucleus : 3*ref.nucleus+3]
		dx, dy, dz := pt[0]-n[0], pt[1]-n[1], pt[2]-n[2]
		rad := b.contract(ref.shell, dx, dy, dz, dx*dx+dy*dy+dz*dz, true)
		for c, pw := range ref.powers {
			k := ref.aoStart + c
			ax, ay, az := pw[0], pw[1], pw[2]
			xa, yb, zc := ipow(dx, ax), ipow(dy, ay), ipow(dz, az)

			poly := xa * yb * zc
			px := float64(ax) * ipow(dx, ax-1) * yb * zc
			py := float64(ay) * xa * ipow(dy, ay-1) * zc
			pz := float64(az) * xa * yb * ipow(dz, az-1)
			plap := float64(ax*(ax-1))*ipow(dx, ax-2)*yb*zc +
				float64(ay*(ay-1))*xa*ipow(dy, ay-2)*zc +
				float64(az*(az-1))*xa*yb*ipow(dz, az-2)

			f := b.AOFactor[k]
			row[k] = f * poly * rad.v
			row[ao+k] = f * (px*rad.v + poly*rad.x)
			row[2*ao+k] = f * (py*rad.v + poly*rad.y)
			row[3*ao+k] = f * (pz*rad.v + poly*rad.z)
			row[4*ao+k] = f * (plap*rad.v + 2*(px*rad.x+py*rad.y+pz*rad.z) + poly*rad.lap)
		}
	}
}
