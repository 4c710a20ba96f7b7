package qsys

import (
	"errors"
	"fmt"
	"math/cmplx"
	"slices"
	"testing"

	"github.com/fumin/tensor"

	"github.com/fjellstad/qsys/elements"
)

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n  int
		l  int
		ok bool
	}{
		{n: 2, l: 4, ok: true},
		{n: 1, l: 1, ok: true},
		{n: 0, l: 4, ok: false},
		{n: 2, l: 0, ok: false},
		{n: -1, l: -1, ok: false},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %d", test.n, test.l), func(t *testing.T) {
			t.Parallel()
			sys, err := New(test.n, test.l)
			if test.ok != (err == nil) {
				t.Fatalf("%+v", err)
			}
			if !test.ok {
				return
			}
			if sys.N() != test.n || sys.L() != test.l {
				t.Fatalf("%d %d, expected %d %d", sys.N(), sys.L(), test.n, test.l)
			}
		})
	}
}

func TestSetHShape(t *testing.T) {
	t.Parallel()
	sys, err := New(2, 4)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if err := sys.SetH(tensor.Zeros(4, 4), false); err != nil {
		t.Fatalf("%+v", err)
	}
	prev := sys.H()

	// A mismatched tensor is rejected and the previous one is retained.
	err = sys.SetH(tensor.Zeros(3, 3), false)
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("%+v", err)
	}
	if shapeErr.Tensor != "one-body" {
		t.Fatalf("%#v", shapeErr)
	}
	if sys.H() != prev {
		t.Fatalf("previous tensor not retained")
	}
}

func TestSetterShapes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		set  func(*System, *tensor.Dense) error
		good []int
		bad  []int
	}{
		{
			name: "h",
			set:  func(s *System, v *tensor.Dense) error { return s.SetH(v, false) },
			good: []int{4, 4},
			bad:  []int{4, 3},
		},
		{
			name: "u",
			set:  func(s *System, v *tensor.Dense) error { return s.SetU(v, false, false) },
			good: []int{4, 4, 4, 4},
			bad:  []int{4, 4, 4, 2},
		},
		{
			name: "s",
			set:  func(s *System, v *tensor.Dense) error { return s.SetS(v, false) },
			good: []int{4, 4},
			bad:  []int{2, 2},
		},
		{
			name: "dipole",
			set:  func(s *System, v *tensor.Dense) error { return s.SetDipoleMoment(v, false) },
			// The leading component axis is exempt.
			good: []int{3, 4, 4},
			bad:  []int{3, 4, 3},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			sys, err := New(2, 4)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if err := test.set(sys, tensor.Zeros(test.good...)); err != nil {
				t.Fatalf("%+v", err)
			}
			err = test.set(sys, tensor.Zeros(test.bad...))
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestSetHAddSpin(t *testing.T) {
	t.Parallel()
	sys, err := New(2, 4)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	identity := tensor.T2([][]complex64{
		{1, 0},
		{0, 1},
	})
	if err := sys.SetH(identity, true); err != nil {
		t.Fatalf("%+v", err)
	}

	want := tensor.T2([][]complex64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})
	if !tensorNear(sys.H(), want, 0) {
		t.Fatalf("%v, expected %v", sys.H(), want)
	}
}

func TestSetUFlags(t *testing.T) {
	t.Parallel()
	m := 2
	u := tensor.Zeros(m, m, m, m)
	for idx := range u.All() {
		u.SetAt(idx, complex(float32(1+idx[0]+10*idx[1]+100*idx[2]+1000*idx[3]), 0))
	}

	sys, err := New(2, 2*m)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := sys.SetU(u, true, true); err != nil {
		t.Fatalf("%+v", err)
	}

	want := elements.AntiSymmetrize(tensor.Zeros(1), elements.AddSpinTwoBody(tensor.Zeros(1), u))
	if !tensorNear(sys.U(), want, 0) {
		t.Fatalf("flags disagree with the manual pipeline")
	}
}

func TestSetDipolePromotion(t *testing.T) {
	t.Parallel()
	sys, err := New(2, 4)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	d := tensor.Zeros(4, 4)
	d.SetAt([]int{1, 2}, 7)
	if err := sys.SetDipoleMoment(d, false); err != nil {
		t.Fatalf("%+v", err)
	}

	got := sys.DipoleMoment()
	if !slices.Equal(got.Shape(), []int{1, 4, 4}) {
		t.Fatalf("%#v", got.Shape())
	}
	if v := got.At(0, 1, 2); v != 7 {
		t.Fatalf("%v, expected 7", v)
	}
}

func TestSetNuclearRepulsionEnergy(t *testing.T) {
	t.Parallel()
	sys, err := New(2, 4)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sys.SetNuclearRepulsionEnergy(0.7137)
	if v := sys.NuclearRepulsionEnergy(); v != 0.7137 {
		t.Fatalf("%v", v)
	}
	if sys.H() != nil || sys.U() != nil || sys.S() != nil || sys.DipoleMoment() != nil {
		t.Fatalf("tensors should be absent until set")
	}
}

func tensorNear(a, b *tensor.Dense, tol float64) bool {
	if !slices.Equal(a.Shape(), b.Shape()) {
		return false
	}
	for idx, v := range a.All() {
		if cmplx.Abs(complex128(v-b.At(idx...))) > tol {
			return false
		}
	}
	return true
}
