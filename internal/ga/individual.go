package ga

import "nqueens/internal/nqueens"

// Origin — каким оператором получена особь.
type Origin string

const (
	OriginInitial   Origin = "initial"
	OriginCrossover Origin = "crossover"
	OriginMutation  Origin = "mutation"
	OriginElite     Origin = "elite"
)

// Имена операций для InvariantError.
const (
	opInit      = "init"
	opCrossover = "crossover"
	opMutation  = "mutation"
	opAssemble  = "assemble"
)

type Individual struct {
	Genes     nqueens.Chromosome
	Fitness   int
	Conflicts int
	Origin    Origin
	// Detail уточняет происхождение: рестарт начальной особи, границы
	// разреза PMX (с 1), позиции обмена при мутации, ранг элиты.
	Detail   string
	IsTarget bool
}

// Clone возвращает копию с собственным срезом генов.
func (ind Individual) Clone() Individual {
	ind.Genes = ind.Genes.Clone()
	return ind
}

func cloneAll(pop []Individual) []Individual {
	out := make([]Individual, len(pop))
	for i := range pop {
		out[i] = pop[i].Clone()
	}
	return out
}
