// Command run builds a quantum system from a stored set of atomic-orbital
// integrals and prints a summary of the constructed tensors.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fjellstad/qsys"
	"github.com/fjellstad/qsys/integrals"
	"github.com/fjellstad/qsys/scf"
)

var (
	intDir    = flag.String("d", "", "integrals directory")
	intDB     = flag.String("db", "", "integrals sqlite file")
	molecular = flag.Bool("mo", false, "build in the molecular-orbital basis of a mean-field calculation")
	outPath   = flag.String("o", "", "write the summary as json to this path")
)

type Summary struct {
	N          int
	L          int
	ENuc       float64
	NormH      float64
	NormU      float64
	NormS      float64 `json:",omitempty"`
	NormDipole float64 `json:",omitempty"`

	MeanFieldEnergy    float64 `json:",omitempty"`
	MeanFieldConverged bool    `json:",omitempty"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	oracle, closeOracle, err := newOracle()
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer closeOracle()

	set, err := oracle.Integrals()
	if err != nil {
		return errors.Wrap(err, "")
	}

	var summary Summary
	var system *qsys.System
	switch {
	case *molecular:
		mf, err := scf.Solve(set)
		if err != nil {
			return errors.Wrap(err, "")
		}
		summary.MeanFieldEnergy = mf.Energy
		summary.MeanFieldConverged = mf.Converged

		system, err = qsys.FromMeanField(set, mf)
		if err != nil {
			return errors.Wrap(err, "")
		}
	default:
		system, err = qsys.FromIntegrals(set)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}

	summary.N = system.N()
	summary.L = system.L()
	summary.ENuc = system.NuclearRepulsionEnergy()
	summary.NormH = norm(system.H())
	summary.NormU = norm(system.U())
	summary.NormS = norm(system.S())
	summary.NormDipole = norm(system.DipoleMoment())

	if *outPath != "" {
		b, err := json.Marshal(summary)
		if err != nil {
			return errors.Wrap(err, "")
		}
		if err := os.WriteFile(*outPath, b, 0644); err != nil {
			return errors.Wrap(err, "")
		}
	}

	fmt.Printf("n,l,enuc,normH,normU,normS,normDipole\n")
	fmt.Printf("%d,%d,%f,%f,%f,%f,%f\n", summary.N, summary.L, summary.ENuc, summary.NormH, summary.NormU, summary.NormS, summary.NormDipole)
	return nil
}

func newOracle() (qsys.Oracle, func(), error) {
	switch {
	case *intDB != "":
		db, err := integrals.OpenDB(*intDB)
		if err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		return db, func() { db.Close() }, nil
	case *intDir != "":
		return integrals.Dir(*intDir), func() {}, nil
	default:
		return nil, nil, errors.Errorf("either -d or -db is required")
	}
}

// norm is the Frobenius norm, or zero for an absent tensor.
func norm(t *tensor.Dense) float64 {
	if t == nil {
		return 0
	}
	var sum float64
	for _, v := range t.All() {
		a := cmplx.Abs(complex128(v))
		sum += a * a
	}
	return math.Sqrt(sum)
}
