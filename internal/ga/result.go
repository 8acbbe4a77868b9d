package ga

import (
	"time"

	"nqueens/internal/nqueens"
)

// StopReason — причина завершения рестарта или всего запуска.
type StopReason int

const (
	ReasonNone StopReason = iota
	ReasonSolutionFound
	ReasonTargetMatched
	ReasonEarlyStopped
	ReasonHardCap
	ReasonRestartsExhausted
	ReasonCanceled
)

func (r StopReason) String() string {
	switch r {
	case ReasonSolutionFound:
		return "solution_found"
	case ReasonTargetMatched:
		return "target_matched"
	case ReasonEarlyStopped:
		return "early_stopped"
	case ReasonHardCap:
		return "hard_cap"
	case ReasonRestartsExhausted:
		return "restarts_exhausted"
	case ReasonCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// ConfigEcho повторяет параметры запуска в каждом снимке.
type ConfigEcho struct {
	N                  int
	Population         int
	EliteEnabled       bool
	ElitePct           int
	CrossoverPct       int
	MutationPct        int
	Counts             OperatorCounts
	MaxPairs           int
	Patience           int
	MaxRestarts        int
	HardMaxGenerations int
	RandomInit         bool
	TargetEnabled      bool
}

type Stats struct {
	AvgFitness    float64
	FitnessStdDev float64
	BestFitness   int
	BestConflicts int
	// Distinct — число различных хромосом в поколении.
	Distinct      int
	Solved        bool
	TargetMatched bool
	EarlyStopped  bool
	// Stale — поколений подряд без улучшения лучшей fitness рестарта,
	// с учётом текущего.
	Stale          int
	ManualInitUsed bool
}

// GenerationSnapshot — неизменяемый снимок одного поколения одного рестарта.
type GenerationSnapshot struct {
	Restart    int
	Generation int

	// Individuals пуст при Config.LightSnapshots.
	Individuals []Individual
	BestIndex   int
	// TargetIndex равен -1, если цель в поколении не найдена.
	TargetIndex int
	Best        Individual

	Stats  Stats
	Config ConfigEcho

	// Ended заполняется в последнем снимке рестарта.
	Ended StopReason
}

// BestIndividual — лучшая особь за весь запуск и где она встретилась.
type BestIndividual struct {
	Individual
	Restart    int
	Generation int
}

type RunResult struct {
	Snapshots       []GenerationSnapshot
	Solved          bool
	StoppedByTarget bool
	Reason          StopReason
	Best            BestIndividual
	// RestartsUsed — число начатых рестартов (включая первый).
	RestartsUsed int
	Counts       OperatorCounts
	Target       nqueens.Chromosome
	Evaluations  int
	Duration     time.Duration
}

func (r RunResult) Last() (GenerationSnapshot, bool) {
	if len(r.Snapshots) == 0 {
		return GenerationSnapshot{}, false
	}
	return r.Snapshots[len(r.Snapshots)-1], true
}
