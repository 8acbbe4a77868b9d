package ga

import (
	"fmt"
	"sort"
)

// OperatorCounts — сколько особей следующего поколения даёт каждый оператор.
// Сумма равна размеру популяции, Crossover всегда чётный.
type OperatorCounts struct {
	Elite     int
	Crossover int
	Mutation  int
}

func (c OperatorCounts) Total() int {
	return c.Elite + c.Crossover + c.Mutation
}

// Apportion делит popSize между операторами методом наибольших остатков
// (Гамильтона). Доля считается в целых числах: popSize*pct = 100*floor + rem,
// поэтому сравнение остатков точное. Оставшиеся единицы получают корзины с
// наибольшим остатком, при равенстве — в порядке elite, crossover, mutation.
func Apportion(popSize int, eliteEnabled bool, elitePct, crossoverPct, mutationPct int) (OperatorCounts, error) {
	if popSize <= 0 {
		return OperatorCounts{}, fmt.Errorf(
			"%w: размер популяции должен быть > 0 (получено %d)",
			ErrConfig, popSize,
		)
	}
	if eliteEnabled {
		if sum := elitePct + crossoverPct + mutationPct; sum != 100 {
			return OperatorCounts{}, fmt.Errorf(
				"%w (элита+кроссовер+мутация = %d)",
				ErrPercentSum, sum,
			)
		}
	} else {
		if sum := crossoverPct + mutationPct; sum != 100 {
			return OperatorCounts{}, fmt.Errorf(
				"%w при выключенной элите (кроссовер+мутация = %d)",
				ErrPercentSum, sum,
			)
		}
		elitePct = 0
	}

	type bucket struct {
		count *int
		rem   int
	}
	var out OperatorCounts
	// Порядок среза задаёт приоритет при равных остатках.
	buckets := []bucket{
		{&out.Elite, 0},
		{&out.Crossover, 0},
		{&out.Mutation, 0},
	}
	used := 0
	for i, pct := range []int{elitePct, crossoverPct, mutationPct} {
		exact := popSize * pct
		*buckets[i].count = exact / 100
		buckets[i].rem = exact % 100
		used += exact / 100
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].rem > buckets[j].rem
	})
	for i, left := 0, popSize-used; left > 0; i, left = (i+1)%len(buckets), left-1 {
		*buckets[i].count++
	}

	if out.Total() != popSize {
		return out, fmt.Errorf(
			"%w: сумма операторов %d не равна размеру популяции %d",
			ErrInvariant, out.Total(), popSize,
		)
	}
	if out.Crossover%2 != 0 {
		return out, fmt.Errorf(
			"%w: при популяции %d получилось %d потомков кроссовера; измените размер популяции или проценты",
			ErrOddCrossover, popSize, out.Crossover,
		)
	}
	return out, nil
}
