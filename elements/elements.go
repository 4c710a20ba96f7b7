// Package elements implements the tensor transformations that take raw
// integral tensors to the spin-orbital, antisymmetric form consumed by
// many-body solvers: spin-orbital expansion, antisymmetrization, basis
// transformation and the chemist/physicist notation reordering.
//
// The lower-case free functions are pure and unchecked: calling them twice,
// in the wrong order, or on tensors of the wrong rank is the caller's
// mistake. The OneBody and TwoBody wrappers tag a tensor with its basis,
// notation and symmetry state and reject illegal orderings as errors.
package elements

import (
	"fmt"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

// Basis labels whether tensor indices run over spatial orbitals or
// spin-orbitals.
type Basis int

const (
	Spatial Basis = iota
	SpinOrbital
)

func (b Basis) String() string {
	switch b {
	case Spatial:
		return "spatial"
	default:
		return "spin-orbital"
	}
}

// Notation labels the index ordering of a two-body tensor. A chemist-ordered
// tensor u[p,q,r,s] holds (pq|rs) where the first two indices belong to
// particle one. The physicist ordering holds <pq|rs> where indices one and
// three belong to particle one.
type Notation int

const (
	Chemist Notation = iota
	Physicist
)

func (n Notation) String() string {
	switch n {
	case Chemist:
		return "chemist"
	default:
		return "physicist"
	}
}

// A OneBody is a rank-2 operator together with the basis its indices run
// over.
type OneBody struct {
	Elems *tensor.Dense
	Basis Basis
}

// AddSpin expands the operator into spin-orbitals.
func (t OneBody) AddSpin() (OneBody, error) {
	if t.Basis != Spatial {
		return OneBody{}, errors.Errorf("add spin on %v basis", t.Basis)
	}
	return OneBody{Elems: AddSpinOneBody(tensor.Zeros(1), t.Elems), Basis: SpinOrbital}, nil
}

// Transform maps the operator into the basis defined by the coefficient
// matrix c. Basis changes apply before spin expansion.
func (t OneBody) Transform(c *tensor.Dense) (OneBody, error) {
	if t.Basis != Spatial {
		return OneBody{}, errors.Errorf("transform on %v basis", t.Basis)
	}
	dst := TransformOneBody(tensor.Zeros(1), t.Elems, c, tensor.Zeros(1))
	return OneBody{Elems: dst, Basis: Spatial}, nil
}

// A TwoBody is a rank-4 operator together with its basis, index notation and
// exchange symmetry state.
type TwoBody struct {
	Elems         *tensor.Dense
	Basis         Basis
	Notation      Notation
	AntiSymmetric bool
}

// AddSpin expands the operator into spin-orbitals. The operator must be in
// physicist's notation, since the expansion matches bra and ket spins per
// particle, and must not have been antisymmetrized yet.
func (u TwoBody) AddSpin() (TwoBody, error) {
	if u.Basis != Spatial {
		return TwoBody{}, errors.Errorf("add spin on %v basis", u.Basis)
	}
	if u.Notation != Physicist {
		return TwoBody{}, errors.Errorf("add spin on %v notation", u.Notation)
	}
	if u.AntiSymmetric {
		return TwoBody{}, errors.Errorf("add spin after antisymmetrization")
	}
	dst := AddSpinTwoBody(tensor.Zeros(1), u.Elems)
	return TwoBody{Elems: dst, Basis: SpinOrbital, Notation: Physicist}, nil
}

// AntiSymmetrize enforces exchange antisymmetry. Applying it twice would
// double the operator, so a second call is rejected.
func (u TwoBody) AntiSymmetrize() (TwoBody, error) {
	if u.Notation != Physicist {
		return TwoBody{}, errors.Errorf("antisymmetrize in %v notation", u.Notation)
	}
	if u.AntiSymmetric {
		return TwoBody{}, errors.Errorf("already antisymmetric")
	}
	dst := AntiSymmetrize(tensor.Zeros(1), u.Elems)
	return TwoBody{Elems: dst, Basis: u.Basis, Notation: Physicist, AntiSymmetric: true}, nil
}

// ToPhysicist reorders the operator from chemist's to physicist's notation.
func (u TwoBody) ToPhysicist() (TwoBody, error) {
	if u.Notation != Chemist {
		return TwoBody{}, errors.Errorf("already in %v notation", u.Notation)
	}
	dst := ToPhysicist(tensor.Zeros(1), u.Elems)
	return TwoBody{Elems: dst, Basis: u.Basis, Notation: Physicist}, nil
}

// ToChemist reorders the operator from physicist's back to chemist's
// notation.
func (u TwoBody) ToChemist() (TwoBody, error) {
	if u.Notation != Physicist {
		return TwoBody{}, errors.Errorf("already in %v notation", u.Notation)
	}
	if u.AntiSymmetric {
		return TwoBody{}, errors.Errorf("chemist notation of an antisymmetric operator")
	}
	dst := ToChemist(tensor.Zeros(1), u.Elems)
	return TwoBody{Elems: dst, Basis: u.Basis, Notation: Chemist}, nil
}

// Transform maps the operator into the basis defined by the coefficient
// matrix c. The operator must still be in chemist's notation, whose index
// grouping the leg-by-leg contraction preserves.
func (u TwoBody) Transform(c *tensor.Dense) (TwoBody, error) {
	if u.Notation != Chemist {
		return TwoBody{}, errors.Errorf("transform in %v notation", u.Notation)
	}
	if u.AntiSymmetric {
		return TwoBody{}, errors.Errorf("transform after antisymmetrization")
	}
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	dst := TransformTwoBody(tensor.Zeros(1), u.Elems, c, bufs)
	return TwoBody{Elems: dst, Basis: u.Basis, Notation: Chemist}, nil
}

// resetCopy materializes src, which may be a transposed view, into dst.
func resetCopy(dst, src *tensor.Dense) *tensor.Dense {
	shape := src.Shape()
	zeroDigit := make([]int, len(shape))
	dst.Reset(shape...).Set(zeroDigit, src)
	return dst
}

func square2(t *tensor.Dense) int {
	shape := t.Shape()
	if len(shape) != 2 || shape[0] != shape[1] {
		panic(fmt.Sprintf("%#v", shape))
	}
	return shape[0]
}

func square4(t *tensor.Dense) int {
	shape := t.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("%#v", shape))
	}
	for _, d := range shape[1:] {
		if d != shape[0] {
			panic(fmt.Sprintf("%#v", shape))
		}
	}
	return shape[0]
}
