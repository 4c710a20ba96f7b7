package elements

import (
	"github.com/fumin/tensor"
)

// TransformOneBody changes the basis of a one-body operator,
// dst = C^H t C, where the coefficient matrix c maps the old basis (rows)
// to the new basis (columns). buf holds the intermediate contraction.
func TransformOneBody(dst, t, c *tensor.Dense, buf *tensor.Dense) *tensor.Dense {
	// tc is of shape {old, new}.
	tc := tensor.Product(buf, t, c, [][2]int{{1, 0}})
	return tensor.Product(dst, c.Conj(), tc, [][2]int{{0, 0}})
}

// TransformTwoBody changes the basis of a two-body operator in chemist's
// ordering, contracting one leg at a time with c. The bra leg of each
// electron, legs 0 and 2, contracts with the conjugated coefficients.
//
// Four sequential single-leg contractions keep the intermediates at rank 4,
// instead of the rank-8 object a combined contraction would build.
func TransformTwoBody(dst, u, c *tensor.Dense, bufs [2]*tensor.Dense) *tensor.Dense {
	// u1 is of shape {p, q, r, d}.
	u1 := tensor.Product(bufs[0], u, c, [][2]int{{3, 0}})

	// u2 is of shape {p, q, d, c} and is reordered to {p, q, c, d}.
	u2 := tensor.Product(bufs[1], u1, c.Conj(), [][2]int{{2, 0}})
	u2 = resetCopy(bufs[0], u2.Transpose(0, 1, 3, 2))

	// u3 is of shape {p, c, d, b} and is reordered to {p, b, c, d}.
	u3 := tensor.Product(bufs[1], u2, c, [][2]int{{1, 0}})
	u3 = resetCopy(bufs[0], u3.Transpose(0, 3, 1, 2))

	// dst is of shape {a, b, c, d}.
	return tensor.Product(dst, c.Conj(), u3, [][2]int{{0, 0}})
}

// ToPhysicist reorders a chemist-ordered two-body operator into physicist's
// notation, <pq|rs> = (pr|qs).
func ToPhysicist(dst, u *tensor.Dense) *tensor.Dense {
	return resetCopy(dst, u.Transpose(0, 2, 1, 3))
}

// ToChemist reorders a physicist-ordered two-body operator back into
// chemist's notation. The permutation swaps the middle axes and is its own
// inverse.
func ToChemist(dst, u *tensor.Dense) *tensor.Dense {
	return resetCopy(dst, u.Transpose(0, 2, 1, 3))
}
