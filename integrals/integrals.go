// Package integrals holds raw atomic-orbital integrals in the real-valued
// form external integral packages produce them, together with a csv and a
// sqlite on-disk format. It is the boundary to the integral oracle: nothing
// here computes integrals, the package only stores, validates and lifts them
// into the complex tensor field.
package integrals

import (
	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

// A Set is the raw output of an integral oracle for one molecular system.
// All matrices are dense row-major float64 slices over the nao atomic
// orbitals.
type Set struct {
	// Nelec is the electron count.
	Nelec int
	// NAO is the spatial orbital count.
	NAO int

	// Hcore is the nao x nao kinetic plus nuclear-attraction operator.
	Hcore []float64
	// Overlap is the nao x nao basis overlap.
	Overlap []float64
	// TwoElectron is the nao^4 Coulomb tensor in chemist's (pq|rs) ordering.
	TwoElectron []float64
	// Dipole is the 3 x nao x nao position operator, one matrix per
	// Cartesian direction. It may be empty.
	Dipole []float64

	// ENuc is the nuclear repulsion energy.
	ENuc float64
	// Converged reports whether the producing calculation converged. Sets
	// assembled from reference data leave it true.
	Converged bool
}

// Validate checks the slice lengths against Nelec and NAO.
func (s *Set) Validate() error {
	if s.Nelec < 1 || s.NAO < 1 {
		return errors.Errorf("%d electrons, %d orbitals", s.Nelec, s.NAO)
	}
	n := s.NAO
	if len(s.Hcore) != n*n {
		return errors.Errorf("hcore %d, expected %d", len(s.Hcore), n*n)
	}
	if len(s.Overlap) != n*n {
		return errors.Errorf("overlap %d, expected %d", len(s.Overlap), n*n)
	}
	if len(s.TwoElectron) != n*n*n*n {
		return errors.Errorf("twoelectron %d, expected %d", len(s.TwoElectron), n*n*n*n)
	}
	if len(s.Dipole) != 0 && len(s.Dipole) != 3*n*n {
		return errors.Errorf("dipole %d, expected %d", len(s.Dipole), 3*n*n)
	}
	return nil
}

// HcoreTensor lifts the core Hamiltonian into the complex tensor field.
func (s *Set) HcoreTensor() *tensor.Dense {
	return lift2(s.Hcore, s.NAO)
}

// OverlapTensor lifts the overlap matrix into the complex tensor field.
func (s *Set) OverlapTensor() *tensor.Dense {
	return lift2(s.Overlap, s.NAO)
}

// TwoElectronTensor lifts the chemist-ordered Coulomb tensor into the
// complex tensor field.
func (s *Set) TwoElectronTensor() *tensor.Dense {
	n := s.NAO
	t := tensor.Zeros(n, n, n, n)
	for p := range n {
		for q := range n {
			for r := range n {
				for ss := range n {
					v := s.TwoElectron[((p*n+q)*n+r)*n+ss]
					t.SetAt([]int{p, q, r, ss}, complex(float32(v), 0))
				}
			}
		}
	}
	return t
}

// DipoleTensor lifts the dipole components into the complex tensor field,
// or returns nil when the set carries none.
func (s *Set) DipoleTensor() *tensor.Dense {
	if len(s.Dipole) == 0 {
		return nil
	}
	n := s.NAO
	t := tensor.Zeros(3, n, n)
	for x := range 3 {
		for i := range n {
			for j := range n {
				v := s.Dipole[(x*n+i)*n+j]
				t.SetAt([]int{x, i, j}, complex(float32(v), 0))
			}
		}
	}
	return t
}

func lift2(a []float64, n int) *tensor.Dense {
	t := tensor.Zeros(n, n)
	for i := range n {
		for j := range n {
			t.SetAt([]int{i, j}, complex(float32(a[i*n+j]), 0))
		}
	}
	return t
}
