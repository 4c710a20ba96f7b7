package elements

import (
	"testing"

	"github.com/fumin/tensor"
)

func TestAntiSymmetrize(t *testing.T) {
	t.Parallel()
	u := tensor.Zeros(2, 2, 2, 2)
	u.SetAt([]int{0, 0, 0, 0}, 5)
	u.SetAt([]int{0, 0, 1, 1}, 5)
	u.SetAt([]int{0, 1, 0, 1}, 5)

	got := AntiSymmetrize(tensor.Zeros(1), u)

	// An equal-index ket pair is its own exchange partner and cancels,
	// whatever its position in the basis.
	if v := got.At(0, 0, 0, 0); v != 0 {
		t.Fatalf("%v, expected 0", v)
	}
	if v := got.At(0, 0, 1, 1); v != 0 {
		t.Fatalf("%v, expected 0", v)
	}
	// An element whose exchange partner vanishes passes through unchanged.
	if v := got.At(0, 1, 0, 1); v != 5 {
		t.Fatalf("%v, expected 5", v)
	}
	if v := got.At(0, 1, 1, 0); v != -5 {
		t.Fatalf("%v, expected -5", v)
	}
	for idx, v := range got.All() {
		want := u.At(idx...) - u.At(idx[0], idx[1], idx[3], idx[2])
		if v != want {
			t.Fatalf("%#v: %v, expected %v", idx, v, want)
		}
	}
}

func TestAntiSymmetry(t *testing.T) {
	t.Parallel()
	l := 4
	u := tensor.Zeros(l, l, l, l)
	for idx := range u.All() {
		v := complex(float32(1+idx[0]+10*idx[1]+100*idx[2]+1000*idx[3]), float32(idx[0]*idx[3]))
		u.SetAt(idx, v)
	}

	got := AntiSymmetrize(tensor.Zeros(1), u)
	for p := range l {
		for q := range l {
			for r := range l {
				for s := range l {
					if v, w := got.At(p, q, r, s), got.At(p, q, s, r); v != -w {
						t.Fatalf("[%d %d %d %d]: %v, expected %v", p, q, r, s, v, -w)
					}
				}
			}
		}
	}

	// A second application doubles an already antisymmetric operator.
	twice := AntiSymmetrize(tensor.Zeros(1), got)
	for idx, v := range twice.All() {
		if want := 2 * got.At(idx...); v != want {
			t.Fatalf("%#v: %v, expected %v", idx, v, want)
		}
	}
}
