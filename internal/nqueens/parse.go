package nqueens

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var separators = regexp.MustCompile(`[\s,]+`)

// ParsePermutation reads one line of whitespace- or comma-separated columns
// and checks it is a permutation of 1..n.
func ParsePermutation(line string, n int) (Chromosome, error) {
	clean := strings.TrimSpace(line)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty line", ErrInvalidPermutation)
	}

	var parts []string
	for _, p := range separators.Split(clean, -1) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != n {
		return nil, fmt.Errorf("%w: expected exactly %d numbers (got %d)", ErrInvalidPermutation, n, len(parts))
	}

	genes := make(Chromosome, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidPermutation, p)
		}
		genes[i] = v
	}
	if err := ValidatePermutation(genes, n); err != nil {
		return nil, err
	}
	return genes, nil
}

// ParsePopulation reads one chromosome per non-empty line. Blank input means
// no manual population and returns (nil, nil).
func ParsePopulation(text string, n, popSize int) ([]Chromosome, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil, nil
	}
	if len(lines) != popSize {
		return nil, fmt.Errorf("%w: population of %d needs exactly %d lines (got %d)",
			ErrInvalidPermutation, popSize, popSize, len(lines))
	}

	pop := make([]Chromosome, 0, popSize)
	for i, line := range lines {
		genes, err := ParsePermutation(line, n)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		pop = append(pop, genes)
	}
	return pop, nil
}

// ParseTarget reads the first non-empty line. Blank input returns (nil, nil).
func ParseTarget(text string, n int) (Chromosome, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil, nil
	}
	return ParsePermutation(lines[0], n)
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
