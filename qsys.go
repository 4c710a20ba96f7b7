// Package qsys builds and validates the tensors that represent a
// many-electron quantum system in a single-particle basis: the core
// Hamiltonian, the two-body interaction, the overlap and the dipole moment,
// together with the particle and orbital counts and the nuclear repulsion
// energy.
//
// A System stores its two-body interaction in physicist's notation over
// spin-orbitals. The setters optionally run the spin-orbital expansion and
// antisymmetrization from the elements package, and validate every tensor
// dimension against the system's fixed orbital count before storing.
package qsys

import (
	"fmt"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fjellstad/qsys/elements"
)

// ShapeError reports a tensor whose dimensions disagree with the system's
// orbital count.
type ShapeError struct {
	// Tensor names the offending tensor.
	Tensor string
	Shape  []int
	// L is the system's orbital count.
	L int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s tensor shape %v, expected every axis %d", e.Tensor, e.Shape, e.L)
}

// A System holds the tensors of a system of n particles in l spin-orbitals.
// n and l are fixed at construction; tensors are absent until set.
type System struct {
	n int
	l int

	h      *tensor.Dense
	u      *tensor.Dense
	s      *tensor.Dense
	dipole *tensor.Dense
	enuc   float64
}

// New creates a system of n particles in l orbitals.
func New(n, l int) (*System, error) {
	if n < 1 || l < 1 {
		return nil, errors.Errorf("%d particles, %d orbitals", n, l)
	}
	return &System{n: n, l: l}, nil
}

// N returns the particle count.
func (s *System) N() int { return s.n }

// L returns the orbital count.
func (s *System) L() int { return s.l }

// H returns the core Hamiltonian, or nil when unset.
func (s *System) H() *tensor.Dense { return s.h }

// U returns the antisymmetrized two-body interaction in physicist's
// notation, or nil when unset.
func (s *System) U() *tensor.Dense { return s.u }

// S returns the overlap, or nil when unset.
func (s *System) S() *tensor.Dense { return s.s }

// DipoleMoment returns the rank-3 dipole tensor, or nil when unset.
func (s *System) DipoleMoment() *tensor.Dense { return s.dipole }

// NuclearRepulsionEnergy returns the nuclear repulsion energy.
func (s *System) NuclearRepulsionEnergy() float64 { return s.enuc }

// SetH sets the core Hamiltonian. With addSpin, h is taken as a spatial
// operator and expanded into spin-orbitals first.
func (s *System) SetH(h *tensor.Dense, addSpin bool) error {
	op := elements.OneBody{Elems: h, Basis: elements.SpinOrbital}
	if addSpin {
		op.Basis = elements.Spatial
		var err error
		if op, err = op.AddSpin(); err != nil {
			return errors.Wrap(err, "h")
		}
	}
	if err := s.checkShape("one-body", op.Elems, 0); err != nil {
		return err
	}
	s.h = op.Elems
	return nil
}

// SetU sets the two-body interaction, given in physicist's notation. With
// addSpin, u is taken as a spatial operator and expanded into spin-orbitals
// first; with antiSymmetrize, exchange antisymmetry is enforced after the
// expansion.
func (s *System) SetU(u *tensor.Dense, addSpin, antiSymmetrize bool) error {
	op := elements.TwoBody{Elems: u, Basis: elements.SpinOrbital, Notation: elements.Physicist}
	var err error
	if addSpin {
		op.Basis = elements.Spatial
		if op, err = op.AddSpin(); err != nil {
			return errors.Wrap(err, "u")
		}
	}
	if antiSymmetrize {
		if op, err = op.AntiSymmetrize(); err != nil {
			return errors.Wrap(err, "u")
		}
	}
	if err := s.checkShape("two-body", op.Elems, 0); err != nil {
		return err
	}
	s.u = op.Elems
	return nil
}

// SetS sets the overlap. With addSpin, s is expanded into spin-orbitals
// first.
func (s *System) SetS(overlap *tensor.Dense, addSpin bool) error {
	op := elements.OneBody{Elems: overlap, Basis: elements.SpinOrbital}
	if addSpin {
		op.Basis = elements.Spatial
		var err error
		if op, err = op.AddSpin(); err != nil {
			return errors.Wrap(err, "s")
		}
	}
	if err := s.checkShape("overlap", op.Elems, 0); err != nil {
		return err
	}
	s.s = op.Elems
	return nil
}

// SetDipoleMoment sets the dipole tensor, one operator per Cartesian
// direction. A rank-2 input is promoted to a single-component rank-3 tensor.
// With addSpin, every component is expanded into spin-orbitals first. The
// leading component axis is exempt from shape validation.
func (s *System) SetDipoleMoment(d *tensor.Dense, addSpin bool) error {
	if len(d.Shape()) < 3 {
		d = promoteDipole(d)
	}
	if addSpin {
		d = elements.AddSpinDipole(tensor.Zeros(1), d)
	}
	if err := s.checkShape("dipole moment", d, 1); err != nil {
		return err
	}
	s.dipole = d
	return nil
}

// SetNuclearRepulsionEnergy sets the nuclear repulsion energy.
func (s *System) SetNuclearRepulsionEnergy(enuc float64) {
	s.enuc = enuc
}

// checkShape validates that every axis of t past the first skip axes equals
// the orbital count. Transforms build fresh tensors and validation precedes
// assignment, so a failed setter leaves the previous tensor untouched.
func (s *System) checkShape(name string, t *tensor.Dense, skip int) error {
	shape := t.Shape()
	for _, d := range shape[skip:] {
		if d != s.l {
			return &ShapeError{Tensor: name, Shape: shape, L: s.l}
		}
	}
	return nil
}

func promoteDipole(d *tensor.Dense) *tensor.Dense {
	shape := d.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("%#v", shape))
	}
	p := tensor.Zeros(1, shape[0], shape[1])
	for i := range shape[0] {
		for j := range shape[1] {
			p.SetAt([]int{0, i, j}, d.At(i, j))
		}
	}
	return p
}
