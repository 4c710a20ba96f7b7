package integrals

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const (
	fnameInfo        = "info.csv"
	fnameHcore       = "hcore.csv"
	fnameOverlap     = "overlap.csv"
	fnameTwoElectron = "twoelectron.csv"
	fnameDipole      = "dipole.csv"
)

// Dir is a directory-backed integral source.
type Dir string

// Integrals reads the set stored in the directory.
func (d Dir) Integrals() (*Set, error) {
	return ReadDir(string(d))
}

// WriteDir writes set as a directory of csv files, one sparse file per
// tensor plus an info file with the scalars.
func WriteDir(dir string, set *Set) error {
	if err := set.Validate(); err != nil {
		return errors.Wrap(err, "")
	}

	converged := 0
	if set.Converged {
		converged = 1
	}
	info := fmt.Sprintf("%d,%d,%s,%d", set.Nelec, set.NAO, formatFloat(set.ENuc), converged)
	if err := os.WriteFile(filepath.Join(dir, fnameInfo), []byte(info), 0644); err != nil {
		return errors.Wrap(err, "")
	}

	n := set.NAO
	if err := writeSparse(filepath.Join(dir, fnameHcore), set.Hcore, []int{n, n}); err != nil {
		return errors.Wrap(err, fnameHcore)
	}
	if err := writeSparse(filepath.Join(dir, fnameOverlap), set.Overlap, []int{n, n}); err != nil {
		return errors.Wrap(err, fnameOverlap)
	}
	if err := writeSparse(filepath.Join(dir, fnameTwoElectron), set.TwoElectron, []int{n, n, n, n}); err != nil {
		return errors.Wrap(err, fnameTwoElectron)
	}
	if len(set.Dipole) > 0 {
		if err := writeSparse(filepath.Join(dir, fnameDipole), set.Dipole, []int{3, n, n}); err != nil {
			return errors.Wrap(err, fnameDipole)
		}
	}
	return nil
}

// ReadDir reads a set written by WriteDir.
func ReadDir(dir string) (*Set, error) {
	set := &Set{}
	if err := readInfo(filepath.Join(dir, fnameInfo), set); err != nil {
		return nil, errors.Wrap(err, "")
	}

	n := set.NAO
	var err error
	set.Hcore, err = readSparse(filepath.Join(dir, fnameHcore), []int{n, n})
	if err != nil {
		return nil, errors.Wrap(err, fnameHcore)
	}
	set.Overlap, err = readSparse(filepath.Join(dir, fnameOverlap), []int{n, n})
	if err != nil {
		return nil, errors.Wrap(err, fnameOverlap)
	}
	set.TwoElectron, err = readSparse(filepath.Join(dir, fnameTwoElectron), []int{n, n, n, n})
	if err != nil {
		return nil, errors.Wrap(err, fnameTwoElectron)
	}
	if _, serr := os.Stat(filepath.Join(dir, fnameDipole)); serr == nil {
		set.Dipole, err = readSparse(filepath.Join(dir, fnameDipole), []int{3, n, n})
		if err != nil {
			return nil, errors.Wrap(err, fnameDipole)
		}
	}

	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return set, nil
}

// writeSparse writes the nonzero elements of a dense row-major slice as
// rows of value followed by one column per index.
func writeSparse(fpath string, a []float64, dims []int) error {
	f, err := os.Create(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	record := make([]string, 1+len(dims))
	idx := make([]int, len(dims))
	for flat, v := range a {
		if v == 0 {
			continue
		}
		unravel(idx, flat, dims)

		record[0] = formatFloat(v)
		for i, d := range idx {
			record[1+i] = strconv.Itoa(d)
		}
		if err1 := w.Write(record); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func readSparse(fpath string, dims []int) ([]float64, error) {
	size := 1
	for _, d := range dims {
		size *= d
	}
	a := make([]float64, size)

	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)
	rowI := -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		rowI++
		if len(record) != 1+len(dims) {
			return nil, errors.Errorf("%d %#v", rowI, record)
		}

		v, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", rowI, record))
		}
		flat := 0
		for i, d := range dims {
			j, err := strconv.Atoi(record[1+i])
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", rowI, record))
			}
			if j < 0 || j >= d {
				return nil, errors.Errorf("%d %#v", rowI, record)
			}
			flat = flat*d + j
		}
		a[flat] = v
	}
	return a, nil
}

func readInfo(fpath string, set *Set) error {
	f, err := os.Open(fpath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(records) == 0 {
		return errors.Errorf("empty")
	}
	row := records[0]
	if len(row) != 4 {
		return errors.Errorf("%#v", row)
	}

	if set.Nelec, err = strconv.Atoi(row[0]); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	if set.NAO, err = strconv.Atoi(row[1]); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	if set.ENuc, err = strconv.ParseFloat(row[2], 64); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	converged, err := strconv.Atoi(row[3])
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	set.Converged = converged != 0
	return nil
}

// unravel fills idx with the multi-index of position flat in a row-major
// array of the given dims.
func unravel(idx []int, flat int, dims []int) {
	for i := len(dims) - 1; i >= 0; i-- {
		idx[i] = flat % dims[i]
		flat /= dims[i]
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
