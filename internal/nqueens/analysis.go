package nqueens

import "sort"

// Diagonal is one occupied diagonal and the number of queens on it.
// For the d1 family ID is row-col, for d2 it is row+col.
type Diagonal struct {
	ID    int
	Count int
}

// Analysis breaks a chromosome's conflicts down by diagonal. It carries the
// data a renderer needs to explain a fitness value.
type Analysis struct {
	N         int
	Conflicts int
	Fitness   int

	// Diagonals holding more than one queen, most crowded first.
	ConflictD1 []Diagonal
	ConflictD2 []Diagonal

	// Diagonals holding exactly one queen, ascending by ID.
	SafeD1 []int
	SafeD2 []int

	// 1-based rows whose queen shares at least one diagonal.
	ConflictRows []int
}

// Analyze assumes genes is a valid permutation of 1..len(genes).
func Analyze(genes []int) Analysis {
	n := len(genes)
	a := Analysis{N: n}
	if n == 0 {
		return a
	}

	d1 := make([]int, 2*n-1)
	d2 := make([]int, 2*n-1)
	for i, col := range genes {
		row := i + 1
		d1[row-col+n-1]++
		d2[row+col-2]++
	}

	// A diagonal with c queens contributes C(c,2) pairs.
	for k := range d1 {
		if c := d1[k]; c > 1 {
			a.ConflictD1 = append(a.ConflictD1, Diagonal{ID: k - (n - 1), Count: c})
			a.Conflicts += c * (c - 1) / 2
		} else if c == 1 {
			a.SafeD1 = append(a.SafeD1, k-(n-1))
		}
		if c := d2[k]; c > 1 {
			a.ConflictD2 = append(a.ConflictD2, Diagonal{ID: k + 2, Count: c})
			a.Conflicts += c * (c - 1) / 2
		} else if c == 1 {
			a.SafeD2 = append(a.SafeD2, k+2)
		}
	}
	a.Fitness = MaxPairs(n) - a.Conflicts

	for i, col := range genes {
		row := i + 1
		if d1[row-col+n-1] > 1 || d2[row+col-2] > 1 {
			a.ConflictRows = append(a.ConflictRows, row)
		}
	}

	byCount := func(ds []Diagonal) {
		sort.SliceStable(ds, func(i, j int) bool { return ds[i].Count > ds[j].Count })
	}
	byCount(a.ConflictD1)
	byCount(a.ConflictD2)
	return a
}
