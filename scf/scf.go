// Package scf implements a restricted closed-shell mean-field calculation
// over a set of atomic-orbital integrals. Its purpose is to produce the
// coefficient matrix mapping atomic orbitals to molecular orbitals; the
// energy it reports is a byproduct used as the convergence criterion.
package scf

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fjellstad/qsys/integrals"
)

// Options are options for the self-consistent field iteration.
type Options struct {
	maxIterations int
	tol           float64
}

// NewOptions returns the default options.
func NewOptions() Options {
	opt := Options{}
	opt.maxIterations = 128
	opt.tol = 1e-10
	return opt
}

// MaxIterations sets the maximum iterations.
func (opt Options) MaxIterations(i int) Options {
	opt.maxIterations = i
	return opt
}

// Tol sets the energy-change convergence tolerance.
func (opt Options) Tol(tol float64) Options {
	opt.tol = tol
	return opt
}

// Result is the outcome of a mean-field calculation.
type Result struct {
	// C maps atomic orbitals (rows) to molecular orbitals (columns),
	// ordered by orbital energy. Both spin channels share it.
	C *mat.Dense
	// Energies are the orbital energies, ascending.
	Energies []float64
	// Nocc is the number of doubly occupied orbitals.
	Nocc int
	// Energy is the total energy including nuclear repulsion.
	Energy float64
	// Converged reports whether the energy change dropped below tolerance
	// within the iteration limit. An unconverged result is still usable;
	// callers decide whether to proceed.
	Converged  bool
	Iterations int
}

// Solve runs the self-consistent field iteration on set.
func Solve(set *integrals.Set, options ...Options) (*Result, error) {
	opt := NewOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if set.Nelec%2 != 0 {
		return nil, errors.Errorf("%d electrons in a closed-shell calculation", set.Nelec)
	}
	n := set.NAO
	nocc := set.Nelec / 2
	if nocc > n {
		return nil, errors.Errorf("%d occupied, %d orbitals", nocc, n)
	}

	x, err := invSqrt(mat.NewSymDense(n, set.Overlap))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	h := mat.NewDense(n, n, set.Hcore)

	res := &Result{Nocc: nocc}
	f := mat.NewDense(n, n, nil)
	fx := mat.NewDense(n, n, nil)
	fp := mat.NewDense(n, n, nil)
	d := mat.NewDense(n, n, nil)

	// Core Hamiltonian initial guess.
	f.Copy(h)
	ePrev := math.Inf(1)
	for range opt.maxIterations {
		res.Iterations++

		// Diagonalize the Fock operator in the orthogonalized basis,
		// F' = X F X with X = S^(-1/2).
		fx.Mul(f, x)
		fp.Mul(x, fx)
		var eig mat.EigenSym
		if !eig.Factorize(symmetrize(fp), true) {
			return nil, errors.Errorf("fock eigendecomposition failed, iteration %d", res.Iterations)
		}
		res.Energies = eig.Values(nil)
		var cp mat.Dense
		eig.VectorsTo(&cp)
		res.C = mat.NewDense(n, n, nil)
		res.C.Mul(x, &cp)

		// Closed-shell density from the occupied orbitals.
		occ := res.C.Slice(0, n, 0, nocc)
		d.Mul(occ, occ.T())
		d.Scale(2, d)

		buildFock(f, h, d, set)

		// E = 1/2 tr[D (H + F)] plus the nuclear repulsion.
		e := set.ENuc
		for p := range n {
			for q := range n {
				e += 0.5 * d.At(p, q) * (h.At(p, q) + f.At(p, q))
			}
		}
		res.Energy = e

		if math.Abs(e-ePrev) < opt.tol {
			res.Converged = true
			break
		}
		ePrev = e
	}
	return res, nil
}

// invSqrt computes the inverse matrix square root S^(-1/2) used for Lowdin
// symmetric orthogonalization.
func invSqrt(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return nil, errors.Errorf("overlap eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var q mat.Dense
	eig.VectorsTo(&q)

	n := len(vals)
	scaled := mat.NewDense(n, n, nil)
	for j, w := range vals {
		// A vanishing eigenvalue means the basis is linearly dependent.
		if w < 1e-10 {
			return nil, errors.Errorf("overlap nearly singular, eigenvalue %g", w)
		}
		inv := 1 / math.Sqrt(w)
		for i := range n {
			scaled.Set(i, j, q.At(i, j)*inv)
		}
	}
	x := mat.NewDense(n, n, nil)
	x.Mul(scaled, q.T())
	return x, nil
}

// buildFock assembles the closed-shell Fock operator
// F_pq = H_pq + sum_rs D_rs [(pq|rs) - (pr|qs)/2] from the chemist-ordered
// two-electron integrals.
func buildFock(f, h, d *mat.Dense, set *integrals.Set) {
	n := set.NAO
	at := func(p, q, r, s int) float64 {
		return set.TwoElectron[((p*n+q)*n+r)*n+s]
	}
	for p := range n {
		for q := range n {
			v := h.At(p, q)
			for r := range n {
				for s := range n {
					v += d.At(r, s) * (at(p, q, r, s) - 0.5*at(p, r, q, s))
				}
			}
			f.Set(p, q, v)
		}
	}
}

// symmetrize averages away the roundoff asymmetry of a nearly symmetric
// matrix so it can be factorized as a SymDense.
func symmetrize(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s
}
