package nqueens

import "fmt"

// Score is the result of evaluating one chromosome.
type Score struct {
	Fitness   int
	Conflicts int
}

// MaxPairs returns C(n,2), the number of queen pairs on an n×n board.
func MaxPairs(n int) int {
	return n * (n - 1) / 2
}

// Evaluator counts diagonal conflicts in O(N) using two dense counters.
// d1 = row-col lies in [1-N, N-1] and is stored at d1+N-1; d2 = row+col lies
// in [2, 2N] and is stored at d2-2. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	n    int
	d1   []int
	d2   []int
	seen []bool
}

func NewEvaluator(n int) (*Evaluator, error) {
	if n <= 0 {
		return nil, fmt.Errorf("board size must be > 0 (got %d)", n)
	}
	return &Evaluator{
		n:    n,
		d1:   make([]int, 2*n-1),
		d2:   make([]int, 2*n-1),
		seen: make([]bool, n+1),
	}, nil
}

func (e *Evaluator) N() int { return e.n }

func (e *Evaluator) Evaluate(genes []int) (Score, error) {
	if e == nil {
		return Score{}, fmt.Errorf("nil evaluator")
	}
	if len(genes) != e.n {
		return Score{}, fmt.Errorf("%w: length must be %d (got %d)", ErrInvalidPermutation, e.n, len(genes))
	}

	for i := range e.d1 {
		e.d1[i] = 0
		e.d2[i] = 0
	}
	for i := range e.seen {
		e.seen[i] = false
	}

	n := e.n
	conflicts := 0
	for i, col := range genes {
		if col < 1 || col > n {
			return Score{}, fmt.Errorf("%w: genes[%d]=%d out of range [1,%d]", ErrInvalidPermutation, i, col, n)
		}
		if e.seen[col] {
			return Score{}, fmt.Errorf("%w: duplicate column %d", ErrInvalidPermutation, col)
		}
		e.seen[col] = true

		row := i + 1
		k1 := row - col + n - 1
		k2 := row + col - 2
		conflicts += e.d1[k1] + e.d2[k2]
		e.d1[k1]++
		e.d2[k2]++
	}
	return Score{Fitness: MaxPairs(n) - conflicts, Conflicts: conflicts}, nil
}

func (e *Evaluator) MustEvaluate(genes []int) Score {
	s, err := e.Evaluate(genes)
	if err != nil {
		panic(err)
	}
	return s
}

// Conflicts is the allocating form of Evaluator.Evaluate. It assumes genes
// holds values in [1, len(genes)].
func Conflicts(genes []int) int {
	n := len(genes)
	if n == 0 {
		return 0
	}
	d1 := make([]int, 2*n-1)
	d2 := make([]int, 2*n-1)
	conflicts := 0
	for i, col := range genes {
		row := i + 1
		k1 := row - col + n - 1
		k2 := row + col - 2
		conflicts += d1[k1] + d2[k2]
		d1[k1]++
		d2[k2]++
	}
	return conflicts
}

// PairwiseConflicts is the O(N²) reference counter.
func PairwiseConflicts(genes []int) int {
	conflicts := 0
	for i := 0; i < len(genes); i++ {
		for j := i + 1; j < len(genes); j++ {
			dc := genes[i] - genes[j]
			if dc < 0 {
				dc = -dc
			}
			if dc == j-i {
				conflicts++
			}
		}
	}
	return conflicts
}
