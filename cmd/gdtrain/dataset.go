package main

import (
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

// dataset is a numeric table whose last column is the target.
type dataset struct {
	Header []string
	X      *mat.Dense
	Y      *mat.VecDense
}

// readCSV parses r. A first row that does not parse as numbers is taken as
// the header. Blank lines are skipped by encoding/csv.
func readCSV(r io.Reader) (*dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("readCSV", "no rows")
	}

	var header []string
	if _, err := parseRow(records[0]); err != nil {
		header = records[0]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("readCSV", "no data rows after header")
	}

	cols := len(records[0])
	if cols < 2 {
		return nil, errors.NewValueError("readCSV", "need at least one feature column and a target column")
	}
	X := mat.NewDense(len(records), cols-1, nil)
	y := mat.NewVecDense(len(records), nil)
	for i, rec := range records {
		row, err := parseRow(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		X.SetRow(i, row[:cols-1])
		y.SetVec(i, row[cols-1])
	}
	return &dataset{Header: header, X: X, Y: y}, nil
}

func parseRow(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for j, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", j+1)
		}
		row[j] = v
	}
	return row, nil
}

func loadCSV(path string) (*dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	d, err := readCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return d, nil
}

// holdout shuffles rows with seed and moves frac of them to a second
// dataset. Both parts keep at least one row.
func (d *dataset) holdout(frac float64, seed int64) (train, val *dataset) {
	n, c := d.X.Dims()
	nVal := int(float64(n) * frac)
	if nVal < 1 {
		nVal = 1
	}
	if nVal >= n {
		nVal = n - 1
	}
	idx := rand.New(rand.NewSource(seed)).Perm(n)

	take := func(rows []int) *dataset {
		X := mat.NewDense(len(rows), c, nil)
		y := mat.NewVecDense(len(rows), nil)
		for i, r := range rows {
			X.SetRow(i, d.X.RawRowView(r))
			y.SetVec(i, d.Y.AtVec(r))
		}
		return &dataset{Header: d.Header, X: X, Y: y}
	}
	return take(idx[nVal:]), take(idx[:nVal])
}
