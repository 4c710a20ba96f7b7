package elements

import (
	"github.com/fumin/tensor"
)

// AntiSymmetrize enforces fermionic exchange antisymmetry on a two-body
// operator in physicist's notation, writing
//
//	dst[p,q,r,s] = u[p,q,r,s] - u[p,q,s,r].
//
// Raw Coulomb integrals are symmetric under ket exchange, so one application
// yields the antisymmetric elements. Applying it to an already antisymmetric
// operator doubles it; callers apply it exactly once, after spin expansion.
func AntiSymmetrize(dst, u *tensor.Dense) *tensor.Dense {
	l := square4(u)
	dst.Reset(l, l, l, l)
	for p := range l {
		for q := range l {
			for r := range l {
				for s := range l {
					dst.SetAt([]int{p, q, r, s}, u.At(p, q, r, s)-u.At(p, q, s, r))
				}
			}
		}
	}
	return dst
}
