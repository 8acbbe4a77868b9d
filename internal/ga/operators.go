package ga

import (
	"fmt"
	"sort"

	"nqueens/internal/nqueens"
)

// Source — равномерный источник случайных чисел в [0, 1).
// *rand.Rand ему удовлетворяет.
type Source interface {
	Float64() float64
}

// intn возвращает равномерное целое из [0, n).
func intn(src Source, n int) int {
	k := int(src.Float64() * float64(n))
	if k >= n {
		k = n - 1
	}
	return k
}

// RandomPermutation возвращает случайную перестановку 1..n (Фишер–Йетс).
func RandomPermutation(n int, src Source) nqueens.Chromosome {
	p := make(nqueens.Chromosome, n)
	for i := range p {
		p[i] = i + 1
	}
	for i := n - 1; i > 0; i-- {
		j := intn(src, i+1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// DeterministicPermutation — воспроизводимая замена случайной инициализации:
// циклический сдвиг 1..n на k, развёрнутый при k mod 3 == 1.
func DeterministicPermutation(n, k int) nqueens.Chromosome {
	shift := ((k % n) + n) % n
	p := make(nqueens.Chromosome, n)
	for i := range p {
		p[i] = (i+shift)%n + 1
	}
	if k%3 == 1 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			p[i], p[j] = p[j], p[i]
		}
	}
	return p
}

// PMX реализует оператор Partially Mapped Crossover на отрезке [cut1, cut2]
// (обе границы включены). Родители должны быть перестановками 1..n.
func PMX(p1, p2 []int, cut1, cut2 int) (nqueens.Chromosome, nqueens.Chromosome, error) {
	n := len(p1)
	if len(p2) != n {
		return nil, nil, fmt.Errorf("%w: родители разной длины (%d и %d)", ErrInput, n, len(p2))
	}
	if cut1 < 0 || cut2 < cut1 || cut2 >= n {
		return nil, nil, fmt.Errorf("%w: отрезок [%d,%d] вне [0,%d]", ErrInput, cut1, cut2, n-1)
	}

	// Позиции значений в каждом родителе
	posInP1 := make([]int, n+1)
	posInP2 := make([]int, n+1)
	for i := 0; i < n; i++ {
		if p1[i] < 1 || p1[i] > n || p2[i] < 1 || p2[i] > n {
			return nil, nil, fmt.Errorf("%w: ген вне диапазона [1,%d] в позиции %d", ErrInput, n, i)
		}
		posInP1[p1[i]] = i
		posInP2[p2[i]] = i
	}

	c1 := make(nqueens.Chromosome, n)
	c2 := make(nqueens.Chromosome, n)
	if err := pmxChild(c1, p1, p2, posInP2, cut1, cut2); err != nil {
		return nil, nil, err
	}
	if err := pmxChild(c2, p2, p1, posInP1, cut1, cut2); err != nil {
		return nil, nil, err
	}
	return c1, c2, nil
}

// pmxChild строит потомка: отрезок берётся из donor, остальное — из other.
// 0 в child означает свободную позицию.
func pmxChild(child, donor, other, posInOther []int, cut1, cut2 int) error {
	n := len(child)
	present := make([]bool, n+1)

	// Копирование сегмента из донора
	for i := cut1; i <= cut2; i++ {
		child[i] = donor[i]
		present[donor[i]] = true
	}

	// Гены второго родителя из того же отрезка размещаются по циклу
	// отображения donor[pos] -> позиция этого значения в other.
	for i := cut1; i <= cut2; i++ {
		gene := other[i]
		if present[gene] {
			continue
		}
		pos := i
		for guard := 0; child[pos] != 0; {
			pos = posInOther[donor[pos]]
			guard++
			if guard > n+2 {
				return fmt.Errorf("%w: ген %d, старт %d", ErrPMXGuard, gene, i)
			}
		}
		child[pos] = gene
		present[gene] = true
	}

	// Оставшиеся позиции заполняются напрямую из второго родителя
	for i := range child {
		if child[i] == 0 {
			child[i] = other[i]
		}
	}
	return nil
}

// MutateSwap меняет местами два различных случайных гена на месте и
// возвращает их позиции.
func MutateSwap(genes []int, src Source) (int, int) {
	n := len(genes)
	if n < 2 {
		return 0, 0
	}
	a := intn(src, n)
	b := intn(src, n)
	for b == a {
		b = intn(src, n)
	}
	genes[a], genes[b] = genes[b], genes[a]
	return a, b
}

// randomCuts выбирает отрезок длины не меньше 2: cut1 из [0, n-2],
// cut2 из [cut1+1, n-1].
func randomCuts(n int, src Source) (int, int) {
	cut1 := intn(src, n-1)
	cut2 := intn(src, n-1-cut1) + cut1 + 1
	return cut1, cut2
}

// topKIndices возвращает индексы k лучших особей по fitness.
// При равенстве сохраняется порядок в популяции.
func topKIndices(pop []Individual, k int) []int {
	idxs := make([]int, len(pop))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return pop[idxs[i]].Fitness > pop[idxs[j]].Fitness
	})
	if k > len(idxs) {
		k = len(idxs)
	}
	return idxs[:k]
}
