package integrals

import (
	"os"
	"reflect"
	"testing"
)

func testSet(withDipole bool) *Set {
	n := 2
	set := &Set{
		Nelec:       2,
		NAO:         n,
		Hcore:       []float64{-1.25, -0.5, -0.5, -0.75},
		Overlap:     []float64{1, 0.25, 0.25, 1},
		TwoElectron: make([]float64, n*n*n*n),
		ENuc:        0.7137,
		Converged:   true,
	}
	set.TwoElectron[0] = 0.675
	set.TwoElectron[3] = 0.5
	set.TwoElectron[5] = 0.15
	set.TwoElectron[15] = 0.625
	if withDipole {
		set.Dipole = make([]float64, 3*n*n)
		set.Dipole[1] = 0.5
		set.Dipole[6] = -0.5
	}
	return set
}

func TestDirRoundTrip(t *testing.T) {
	t.Parallel()
	for _, withDipole := range []bool{false, true} {
		dir, err := os.MkdirTemp("", "")
		if err != nil {
			t.Fatalf("%+v", err)
		}
		defer os.RemoveAll(dir)

		set := testSet(withDipole)
		if err := WriteDir(dir, set); err != nil {
			t.Fatalf("%+v", err)
		}
		got, err := Dir(dir).Integrals()
		if err != nil {
			t.Fatalf("%+v", err)
		}
		if !reflect.DeepEqual(got, set) {
			t.Fatalf("%#v, expected %#v", got, set)
		}
	}
}

func TestReadDirMissing(t *testing.T) {
	t.Parallel()
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	if _, err := ReadDir(dir); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Set)
		ok     bool
	}{
		{name: "good", mutate: func(*Set) {}, ok: true},
		{name: "no dipole", mutate: func(s *Set) { s.Dipole = nil }, ok: true},
		{name: "nelec", mutate: func(s *Set) { s.Nelec = 0 }},
		{name: "hcore", mutate: func(s *Set) { s.Hcore = s.Hcore[1:] }},
		{name: "overlap", mutate: func(s *Set) { s.Overlap = nil }},
		{name: "twoelectron", mutate: func(s *Set) { s.TwoElectron = append(s.TwoElectron, 0) }},
		{name: "dipole", mutate: func(s *Set) { s.Dipole = s.Dipole[:3] }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			set := testSet(true)
			test.mutate(set)
			err := set.Validate()
			if test.ok != (err == nil) {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestLift(t *testing.T) {
	t.Parallel()
	set := testSet(true)

	h := set.HcoreTensor()
	if v := h.At(0, 1); v != -0.5 {
		t.Fatalf("%v", v)
	}

	u := set.TwoElectronTensor()
	if v := u.At(0, 1, 0, 1); v != 0.15 {
		t.Fatalf("%v", v)
	}

	d := set.DipoleTensor()
	if v := d.At(0, 0, 1); v != 0.5 {
		t.Fatalf("%v", v)
	}
	set.Dipole = nil
	if set.DipoleTensor() != nil {
		t.Fatalf("expected nil dipole")
	}
}
