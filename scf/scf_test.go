package scf

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fjellstad/qsys/integrals"
)

// TestSolveNonInteracting checks the non-interacting limit, where the total
// energy is twice the lowest core eigenvalue plus the nuclear repulsion.
func TestSolveNonInteracting(t *testing.T) {
	t.Parallel()
	set := &integrals.Set{
		Nelec:       2,
		NAO:         2,
		Hcore:       []float64{-2, 0, 0, -1},
		Overlap:     []float64{1, 0, 0, 1},
		TwoElectron: make([]float64, 16),
		ENuc:        0.5,
		Converged:   true,
	}

	res, err := Solve(set)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !res.Converged {
		t.Fatalf("%#v", res)
	}
	if res.Nocc != 1 {
		t.Fatalf("%d", res.Nocc)
	}
	if want := 2*(-2) + 0.5; math.Abs(res.Energy-want) > 1e-9 {
		t.Fatalf("%v, expected %v", res.Energy, want)
	}
	if math.Abs(res.Energies[0]-(-2)) > 1e-9 || math.Abs(res.Energies[1]-(-1)) > 1e-9 {
		t.Fatalf("%#v", res.Energies)
	}

	// The coefficients are orthonormal under the overlap metric.
	var g mat.Dense
	g.Mul(res.C.T(), res.C)
	for i := range 2 {
		for j := range 2 {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(g.At(i, j)-want) > 1e-9 {
				t.Fatalf("%d %d: %v", i, j, g.At(i, j))
			}
		}
	}
}

// TestSolveSingleOrbital checks a one-orbital system against the closed
// form E = 2 h + (00|00) + enuc.
func TestSolveSingleOrbital(t *testing.T) {
	t.Parallel()
	set := &integrals.Set{
		Nelec:       2,
		NAO:         1,
		Hcore:       []float64{-1},
		Overlap:     []float64{1},
		TwoElectron: []float64{0.5},
		ENuc:        1,
		Converged:   true,
	}

	res, err := Solve(set)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !res.Converged {
		t.Fatalf("%#v", res)
	}
	if want := 2*(-1) + 0.5 + 1; math.Abs(res.Energy-want) > 1e-9 {
		t.Fatalf("%v, expected %v", res.Energy, want)
	}
}

func TestSolveErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*integrals.Set)
	}{
		{name: "odd electrons", mutate: func(s *integrals.Set) { s.Nelec = 3 }},
		{name: "too many electrons", mutate: func(s *integrals.Set) { s.Nelec = 4 }},
		{name: "bad shapes", mutate: func(s *integrals.Set) { s.Hcore = nil }},
		{name: "singular overlap", mutate: func(s *integrals.Set) { s.Overlap = []float64{0} }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			set := &integrals.Set{
				Nelec:       2,
				NAO:         1,
				Hcore:       []float64{-1},
				Overlap:     []float64{1},
				TwoElectron: []float64{0.5},
				Converged:   true,
			}
			test.mutate(set)
			if _, err := Solve(set); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSolveMaxIterations(t *testing.T) {
	t.Parallel()
	set := &integrals.Set{
		Nelec:       2,
		NAO:         1,
		Hcore:       []float64{-1},
		Overlap:     []float64{1},
		TwoElectron: []float64{0.5},
		Converged:   true,
	}

	res, err := Solve(set, NewOptions().MaxIterations(1))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if res.Converged || res.Iterations != 1 {
		t.Fatalf("%#v", res)
	}
}
