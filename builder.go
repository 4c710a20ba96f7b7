package qsys

import (
	"log"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fjellstad/qsys/elements"
	"github.com/fjellstad/qsys/integrals"
	"github.com/fjellstad/qsys/scf"
)

// dipoleSign is the sign applied to molecular-orbital dipole integrals. The
// raw integrals are position matrix elements, and the electronic dipole
// operator carries the electron's negative charge. Absolute signs should be
// checked against a known reference system before being relied on.
const dipoleSign = -1

// An Oracle supplies the raw atomic-orbital integrals of a molecular system,
// computed by an external package.
type Oracle interface {
	Integrals() (*integrals.Set, error)
}

// FromOracle builds a system in the atomic spin-orbital basis from an
// oracle's raw integrals. Oracle failures propagate unchanged.
func FromOracle(o Oracle) (*System, error) {
	set, err := o.Integrals()
	if err != nil {
		return nil, err
	}
	sys, err := FromIntegrals(set)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return sys, nil
}

// FromIntegrals builds a system in the atomic spin-orbital basis. The
// chemist-ordered two-electron integrals are reordered to physicist's
// notation, and every tensor is spin expanded; the interaction is stored
// antisymmetrized.
func FromIntegrals(set *integrals.Set) (*System, error) {
	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}

	sys, err := New(set.Nelec, 2*set.NAO)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	if err := sys.SetH(set.HcoreTensor(), true); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := sys.SetS(set.OverlapTensor(), true); err != nil {
		return nil, errors.Wrap(err, "")
	}
	u := elements.ToPhysicist(tensor.Zeros(1), set.TwoElectronTensor())
	if err := sys.SetU(u, true, true); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if d := set.DipoleTensor(); d != nil {
		if err := sys.SetDipoleMoment(d, true); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	sys.SetNuclearRepulsionEnergy(set.ENuc)
	return sys, nil
}

// FromMeanField builds a system in the molecular spin-orbital basis defined
// by a mean-field result. The coefficient blocks of the two spin channels
// are stacked side by side (occupied up, occupied down, virtual up, virtual
// down), every tensor is transformed with the stacked coefficients, and
// cross-spin blocks that the independently transformed channels do not
// guarantee to vanish are zeroed explicitly. An unconverged mean-field
// result is used anyway, with a warning.
func FromMeanField(set *integrals.Set, mf *scf.Result) (*System, error) {
	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if !mf.Converged {
		log.Printf("warning: mean-field calculation did not converge after %d iterations", mf.Iterations)
	}

	nao := set.NAO
	no := mf.Nocc
	nv := nao - no
	l := 2 * nao

	c := spinBlockCoefficients(mf.C, no)

	buf := tensor.Zeros(1)
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	h := elements.TransformOneBody(tensor.Zeros(1), set.HcoreTensor(), c, buf)
	u := elements.TransformTwoBody(tensor.Zeros(1), set.TwoElectronTensor(), c, bufs)

	var dipole *tensor.Dense
	if d := set.DipoleTensor(); d != nil {
		dipole = tensor.Zeros(3, l, l)
		comp := tensor.Zeros(nao, nao)
		tr := tensor.Zeros(1)
		for x := range 3 {
			for i := range nao {
				for j := range nao {
					comp.SetAt([]int{i, j}, d.At(x, i, j))
				}
			}
			elements.TransformOneBody(tr, comp, c, buf)
			for a := range l {
				for b := range l {
					dipole.SetAt([]int{x, a, b}, dipoleSign*tr.At(a, b))
				}
			}
		}
	}

	// The two channels occupy interleaved column blocks of c, so cross-spin
	// elements of the transformed tensors are not exactly zero; mask them.
	channels := elements.SpinChannels{
		Up:   [][2]int{{0, no}, {2 * no, 2*no + nv}},
		Down: [][2]int{{no, 2 * no}, {2*no + nv, l}},
	}
	channels.ZeroCross(h)
	channels.ZeroCross(u)
	if dipole != nil {
		channels.ZeroCross(dipole)
	}

	up := elements.ToPhysicist(tensor.Zeros(1), u)

	sys, err := New(2*no, l)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := sys.SetH(h, false); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := sys.SetU(up, false, true); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if dipole != nil {
		if err := sys.SetDipoleMoment(dipole, false); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	sys.SetNuclearRepulsionEnergy(set.ENuc)
	return sys, nil
}

// spinBlockCoefficients stacks a restricted coefficient matrix into the
// spin-orbital column layout (occupied up, occupied down, virtual up,
// virtual down). The two spin channels share the spatial coefficients.
func spinBlockCoefficients(c *mat.Dense, nocc int) *tensor.Dense {
	nao, ncol := c.Dims()
	t := tensor.Zeros(nao, 2*ncol)
	for j := range ncol {
		var up, down int
		switch {
		case j < nocc:
			up, down = j, nocc+j
		default:
			up = 2*nocc + (j - nocc)
			down = up + (ncol - nocc)
		}
		for i := range nao {
			v := complex(float32(c.At(i, j)), 0)
			t.SetAt([]int{i, up}, v)
			t.SetAt([]int{i, down}, v)
		}
	}
	return t
}
