package elements

import (
	"fmt"

	"github.com/fumin/tensor"
)

// AddSpinOneBody expands a spatial one-body operator into spin-orbitals and
// writes the result to dst. The first m spin-orbitals are spin-up and the
// last m spin-down, so the two diagonal m x m blocks both equal t and the
// cross-spin blocks are zero.
func AddSpinOneBody(dst, t *tensor.Dense) *tensor.Dense {
	m := square2(t)
	dst.Reset(2*m, 2*m)
	for p := range m {
		for q := range m {
			v := t.At(p, q)
			dst.SetAt([]int{p, q}, v)
			dst.SetAt([]int{m + p, m + q}, v)
		}
	}
	return dst
}

// AddSpinTwoBody expands a spatial two-body operator in physicist's notation
// into spin-orbitals and writes the result to dst. An element survives only
// when the bra and ket spins match per particle, that is when indices one and
// three lie in the same half of the basis, and likewise indices two and four.
func AddSpinTwoBody(dst, u *tensor.Dense) *tensor.Dense {
	m := square4(u)
	dst.Reset(2*m, 2*m, 2*m, 2*m)
	for p := range m {
		for q := range m {
			for r := range m {
				for s := range m {
					v := u.At(p, q, r, s)
					for _, a := range [2]int{0, m} {
						for _, b := range [2]int{0, m} {
							dst.SetAt([]int{p + a, q + b, r + a, s + b}, v)
						}
					}
				}
			}
		}
	}
	return dst
}

// AddSpinDipole expands every Cartesian component of a rank-3 dipole tensor
// the way AddSpinOneBody expands a single operator.
func AddSpinDipole(dst, d *tensor.Dense) *tensor.Dense {
	shape := d.Shape()
	if len(shape) != 3 || shape[1] != shape[2] {
		panic(fmt.Sprintf("%#v", shape))
	}
	m := shape[1]
	dst.Reset(shape[0], 2*m, 2*m)
	for x := range shape[0] {
		for p := range m {
			for q := range m {
				v := d.At(x, p, q)
				dst.SetAt([]int{x, p, q}, v)
				dst.SetAt([]int{x, m + p, m + q}, v)
			}
		}
	}
	return dst
}

// SpinChannels is the spin partition of a basis, as half-open index ranges
// per channel. It is derived once from the basis layout and applied to
// tensors of any rank through ZeroCross.
type SpinChannels struct {
	Up   [][2]int
	Down [][2]int
}

// Blocks is the partition of a 2m spin-orbital basis whose first half is
// spin-up.
func Blocks(m int) SpinChannels {
	return SpinChannels{Up: [][2]int{{0, m}}, Down: [][2]int{{m, 2 * m}}}
}

// ZeroCross zeroes every element whose multi-index couples the two spin
// channels. Rank-2 tensors and the trailing axes of rank-3 tensors pair
// index one with index two; rank-4 tensors in chemist's ordering pair axes
// (0,1) and (2,3), the two electrons. Indices outside both channels are
// left alone.
func (sc SpinChannels) ZeroCross(t *tensor.Dense) *tensor.Dense {
	shape := t.Shape()
	switch len(shape) {
	case 2:
		ch := sc.channels(shape[0])
		for i := range shape[0] {
			for j := range shape[1] {
				if mixed(ch, i, j) {
					t.SetAt([]int{i, j}, 0)
				}
			}
		}
	case 3:
		ch := sc.channels(shape[1])
		for x := range shape[0] {
			for i := range shape[1] {
				for j := range shape[2] {
					if mixed(ch, i, j) {
						t.SetAt([]int{x, i, j}, 0)
					}
				}
			}
		}
	case 4:
		ch := sc.channels(shape[0])
		for i := range shape[0] {
			for j := range shape[1] {
				for k := range shape[2] {
					for l := range shape[3] {
						if mixed(ch, i, j) || mixed(ch, k, l) {
							t.SetAt([]int{i, j, k, l}, 0)
						}
					}
				}
			}
		}
	default:
		panic(fmt.Sprintf("%#v", shape))
	}
	return t
}

// channels flattens the partition into a per-index channel lookup, with -1
// for indices in neither channel.
func (sc SpinChannels) channels(l int) []int8 {
	ch := make([]int8, l)
	for i := range ch {
		ch[i] = -1
	}
	for _, r := range sc.Up {
		for i := r[0]; i < r[1]; i++ {
			ch[i] = 0
		}
	}
	for _, r := range sc.Down {
		for i := r[0]; i < r[1]; i++ {
			ch[i] = 1
		}
	}
	return ch
}

func mixed(ch []int8, i, j int) bool {
	return ch[i] >= 0 && ch[j] >= 0 && ch[i] != ch[j]
}
