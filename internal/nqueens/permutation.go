package nqueens

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPermutation is wrapped by every error returned from
// ValidatePermutation and the parsers.
var ErrInvalidPermutation = errors.New("invalid permutation")

// Chromosome places one queen per row: genes[i] is the 1-based column of the
// queen in row i+1.
type Chromosome []int

func (c Chromosome) Clone() Chromosome {
	if c == nil {
		return nil
	}
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

func (c Chromosome) Equal(other Chromosome) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// String formats the genes the way ParsePermutation reads them back.
func (c Chromosome) String() string {
	var b strings.Builder
	for i, g := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(g))
	}
	return b.String()
}

func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("%w: length must be %d (got %d)", ErrInvalidPermutation, n, len(perm))
	}
	seen := make([]bool, n+1)
	for i, v := range perm {
		if v < 1 || v > n {
			return fmt.Errorf("%w: perm[%d]=%d out of range [1,%d]", ErrInvalidPermutation, i, v, n)
		}
		if seen[v] {
			return fmt.Errorf("%w: duplicate column %d", ErrInvalidPermutation, v)
		}
		seen[v] = true
	}
	return nil
}
