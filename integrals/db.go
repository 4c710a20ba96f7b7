package integrals

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableElem = "elem"
	tableInfo = "info"
)

// DB is a sqlite-backed integral store. One elem table holds the nonzero
// tensor elements keyed by tensor name and multi-index, and an info table
// holds the scalars.
type DB struct {
	Path string

	db *sql.DB
}

// OpenDB opens, and if necessary initializes, the store at dbPath.
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &DB{Path: dbPath, db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Integrals reads the stored set, satisfying the oracle interface.
func (d *DB) Integrals() (*Set, error) {
	return d.ReadSet()
}

// WriteSet replaces the store's contents with set.
func (d *DB) WriteSet(set *Set) error {
	if err := set.Validate(); err != nil {
		return errors.Wrap(err, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	for _, table := range []string{tableElem, tableInfo} {
		if _, err := d.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return errors.Wrap(err, "")
		}
	}

	converged := 0
	if set.Converged {
		converged = 1
	}
	// The dipole may legitimately be all zeros, so its presence is recorded
	// explicitly instead of inferred from stored elements.
	hasDipole := 0
	if len(set.Dipole) > 0 {
		hasDipole = 1
	}
	sqlStr := fmt.Sprintf(`INSERT INTO %s (nelec, nao, enuc, converged, dipole) VALUES (?, ?, ?, ?, ?)`, tableInfo)
	if _, err := d.db.ExecContext(ctx, sqlStr, set.Nelec, set.NAO, set.ENuc, converged, hasDipole); err != nil {
		return errors.Wrap(err, "")
	}

	n := set.NAO
	if err := d.writeElems(ctx, fnameTensor(fnameHcore), set.Hcore, []int{n, n}); err != nil {
		return errors.Wrap(err, "")
	}
	if err := d.writeElems(ctx, fnameTensor(fnameOverlap), set.Overlap, []int{n, n}); err != nil {
		return errors.Wrap(err, "")
	}
	if err := d.writeElems(ctx, fnameTensor(fnameTwoElectron), set.TwoElectron, []int{n, n, n, n}); err != nil {
		return errors.Wrap(err, "")
	}
	if len(set.Dipole) > 0 {
		if err := d.writeElems(ctx, fnameTensor(fnameDipole), set.Dipole, []int{3, n, n}); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// ReadSet reads the stored set.
func (d *DB) ReadSet() (*Set, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()

	set := &Set{}
	var converged, hasDipole int
	sqlStr := fmt.Sprintf(`SELECT nelec, nao, enuc, converged, dipole FROM %s`, tableInfo)
	if err := d.db.QueryRowContext(ctx, sqlStr).Scan(&set.Nelec, &set.NAO, &set.ENuc, &converged, &hasDipole); err != nil {
		return nil, errors.Wrap(err, "")
	}
	set.Converged = converged != 0

	n := set.NAO
	var err error
	set.Hcore, err = d.readElems(ctx, fnameTensor(fnameHcore), []int{n, n})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	set.Overlap, err = d.readElems(ctx, fnameTensor(fnameOverlap), []int{n, n})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	set.TwoElectron, err = d.readElems(ctx, fnameTensor(fnameTwoElectron), []int{n, n, n, n})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if hasDipole != 0 {
		set.Dipole, err = d.readElems(ctx, fnameTensor(fnameDipole), []int{3, n, n})
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
	}

	if err := set.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return set, nil
}

func (d *DB) writeElems(ctx context.Context, name string, a []float64, dims []int) error {
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (name, i, j, k, l, v) VALUES (?, ?, ?, ?, ?, ?)`, tableElem)
	idx4 := [4]int{}
	idx := make([]int, len(dims))
	for flat, v := range a {
		if v == 0 {
			continue
		}
		unravel(idx, flat, dims)
		copy(idx4[:], idx)
		for i := len(dims); i < 4; i++ {
			idx4[i] = 0
		}

		args := []any{name, idx4[0], idx4[1], idx4[2], idx4[3], v}
		if _, err := d.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
		}
	}
	return nil
}

func (d *DB) readElems(ctx context.Context, name string, dims []int) ([]float64, error) {
	size := 1
	for _, dim := range dims {
		size *= dim
	}
	a := make([]float64, size)

	sqlStr := fmt.Sprintf(`SELECT i, j, k, l, v FROM %s WHERE name=? ORDER BY i, j, k, l`, tableElem)
	rows, err := d.db.QueryContext(ctx, sqlStr, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	for rows.Next() {
		var idx4 [4]int
		var v float64
		if err := rows.Scan(&idx4[0], &idx4[1], &idx4[2], &idx4[3], &v); err != nil {
			return nil, errors.Wrap(err, "")
		}

		flat := 0
		for i, dim := range dims {
			if idx4[i] < 0 || idx4[i] >= dim {
				return nil, errors.Errorf("%s %#v %#v", name, idx4, dims)
			}
			flat = flat*dim + idx4[i]
		}
		a[flat] = v
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return a, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, i INTEGER, j INTEGER, k INTEGER, l INTEGER, v REAL, PRIMARY KEY (name, i, j, k, l)) STRICT`, tableElem)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (nelec INTEGER, nao INTEGER, enuc REAL, converged INTEGER, dipole INTEGER) STRICT`, tableInfo)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// fnameTensor derives the elem table name key from the csv file name.
func fnameTensor(fname string) string {
	return fname[:len(fname)-len(".csv")]
}
