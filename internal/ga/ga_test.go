package ga

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nqueens/internal/nqueens"
)

var (
	target8     = nqueens.Chromosome{2, 4, 6, 8, 3, 1, 7, 5}
	nearTarget8 = nqueens.Chromosome{2, 4, 6, 8, 3, 1, 5, 7} // 2 конфликта
	uniqueBest8 = nqueens.Chromosome{1, 3, 5, 7, 2, 4, 6, 8} // 1 конфликт
	identity8   = nqueens.Chromosome{1, 2, 3, 4, 5, 6, 7, 8}
	reverse8    = nqueens.Chromosome{8, 7, 6, 5, 4, 3, 2, 1}
)

func baseConfig() Config {
	cfg := DefaultConfig()
	cfg.N = 8
	cfg.Population = 4
	cfg.EliteEnabled = true
	cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = 25, 50, 25
	cfg.Patience = 0
	cfg.MaxRestarts = 0
	cfg.HardMaxGenerations = 5
	cfg.RandomInit = false
	return cfg
}

func eliteOnlyConfig() Config {
	cfg := baseConfig()
	cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = 100, 0, 0
	cfg.ManualPopulation = []nqueens.Chromosome{identity8, nearTarget8, uniqueBest8, reverse8}
	return cfg
}

func solve(t *testing.T, cfg Config, src Source) RunResult {
	t.Helper()
	s, err := New(cfg, src)
	require.NoError(t, err)
	res, err := s.Solve(context.Background())
	require.NoError(t, err)
	return res
}

func TestSolve_TargetInInitialPopulation(t *testing.T) {
	cfg := baseConfig()
	cfg.Target = target8.Clone()
	// цель встречается дважды: побеждает первая по порядку популяции
	cfg.ManualPopulation = []nqueens.Chromosome{identity8, target8, reverse8, target8}

	res := solve(t, cfg, rand.New(rand.NewSource(1)))

	assert.Equal(t, ReasonTargetMatched, res.Reason)
	assert.True(t, res.StoppedByTarget)
	assert.False(t, res.Solved, "target check runs before the solution check")
	require.Len(t, res.Snapshots, 1)

	snap := res.Snapshots[0]
	assert.Equal(t, 1, snap.TargetIndex)
	assert.True(t, snap.Individuals[1].IsTarget)
	assert.False(t, snap.Individuals[3].IsTarget)
	assert.True(t, snap.Stats.TargetMatched)
	assert.True(t, snap.Stats.ManualInitUsed)
	assert.Equal(t, ReasonTargetMatched, snap.Ended)
	assert.Equal(t, 1, res.RestartsUsed)
	assert.Equal(t, target8, res.Target)
}

func TestSolve_TargetProducedByMutation(t *testing.T) {
	cfg := baseConfig()
	cfg.Population = 2
	cfg.EliteEnabled = false
	cfg.CrossoverPct, cfg.MutationPct = 0, 100
	cfg.Target = target8.Clone()
	cfg.ManualPopulation = []nqueens.Chromosome{nearTarget8, nearTarget8}

	// мутация 1: родитель 0, обмен позиций 7 и 8; мутация 2: родитель 0, обмен 1 и 2
	src := &seqSource{vals: []float64{0.0, 0.75, 0.875, 0.0, 0.0, 0.125}}
	res := solve(t, cfg, src)

	require.Equal(t, ReasonTargetMatched, res.Reason)
	require.Len(t, res.Snapshots, 2)
	assert.Equal(t, -1, res.Snapshots[0].TargetIndex)

	last := res.Snapshots[1]
	assert.Equal(t, 1, last.Generation)
	assert.Equal(t, 0, last.TargetIndex)
	assert.Equal(t, OriginMutation, last.Individuals[0].Origin)
	assert.Equal(t, "swap (7,8)", last.Individuals[0].Detail)
	assert.Equal(t, target8, last.Individuals[0].Genes)
	assert.Equal(t, 0, res.Best.Conflicts)
	assert.Equal(t, 1, res.Best.Generation)
}

func TestSolve_EliteOnlyIsFixedPoint(t *testing.T) {
	cfg := eliteOnlyConfig()
	res := solve(t, cfg, rand.New(rand.NewSource(1)))

	require.Equal(t, ReasonRestartsExhausted, res.Reason)
	require.Len(t, res.Snapshots, cfg.HardMaxGenerations+1)
	for _, snap := range res.Snapshots {
		assert.Equal(t, uniqueBest8, snap.Best.Genes, "generation %d", snap.Generation)
		assert.Equal(t, 1, snap.Stats.BestConflicts)
		assert.Equal(t, 4, snap.Stats.Distinct)
		if snap.Generation > 0 {
			assert.Equal(t, 0, snap.BestIndex, "top elite goes first")
			assert.Equal(t, OriginElite, snap.Individuals[0].Origin)
			assert.Equal(t, "elite #1", snap.Individuals[0].Detail)
		}
	}
	last, ok := res.Last()
	require.True(t, ok)
	assert.Equal(t, ReasonHardCap, last.Ended)
	assert.Equal(t, uniqueBest8, res.Best.Genes)
	assert.Equal(t, 0, res.Best.Generation, "later generations only tie the best")
}

func TestSolve_SnapshotsAreNotAliased(t *testing.T) {
	res := solve(t, eliteOnlyConfig(), rand.New(rand.NewSource(1)))
	require.GreaterOrEqual(t, len(res.Snapshots), 2)

	res.Snapshots[0].Individuals[2].Genes[0] = 99
	assert.Equal(t, uniqueBest8, res.Snapshots[1].Individuals[0].Genes)
	assert.Equal(t, uniqueBest8, res.Snapshots[0].Best.Genes)
	assert.Equal(t, uniqueBest8, res.Best.Genes)
}

func TestSolve_EarlyStopping(t *testing.T) {
	cfg := eliteOnlyConfig()
	cfg.Patience = 3
	cfg.MaxRestarts = 2
	cfg.HardMaxGenerations = 100

	res := solve(t, cfg, rand.New(rand.NewSource(1)))

	require.Equal(t, ReasonRestartsExhausted, res.Reason)
	assert.Equal(t, 3, res.RestartsUsed)
	require.Len(t, res.Snapshots, 3*4)
	for i, snap := range res.Snapshots {
		assert.Equal(t, i/4, snap.Restart)
		assert.Equal(t, i%4, snap.Generation)
		assert.Equal(t, i%4, snap.Stats.Stale)
		if i%4 == 3 {
			assert.Equal(t, ReasonEarlyStopped, snap.Ended)
			assert.True(t, snap.Stats.EarlyStopped)
		} else {
			assert.Equal(t, ReasonNone, snap.Ended)
		}
		// ручная популяция только в рестарте 0
		assert.Equal(t, snap.Restart == 0, snap.Stats.ManualInitUsed)
	}
	// лучшая особь из ручной популяции рестарта 0
	assert.Equal(t, 0, res.Best.Restart)
	assert.Equal(t, uniqueBest8, res.Best.Genes)
}

func TestSolve_HardCapPerRestart(t *testing.T) {
	cfg := eliteOnlyConfig()
	cfg.HardMaxGenerations = 2
	cfg.MaxRestarts = 1

	res := solve(t, cfg, rand.New(rand.NewSource(1)))

	require.Len(t, res.Snapshots, 6)
	assert.Equal(t, ReasonHardCap, res.Snapshots[2].Ended)
	assert.Equal(t, ReasonHardCap, res.Snapshots[5].Ended)
	assert.Equal(t, 1, res.Snapshots[3].Restart)
	assert.Equal(t, 0, res.Snapshots[3].Generation)
	// рестарт 1 строится детерминированно: k = 1*4 + i
	assert.Equal(t, DeterministicPermutation(8, 4), res.Snapshots[3].Individuals[0].Genes)
	assert.Equal(t, "restart 2 / gen 0", res.Snapshots[3].Individuals[0].Detail)
}

func TestSolve_TerminatesWithinBound(t *testing.T) {
	cfg := baseConfig()
	cfg.HardMaxGenerations = 2
	cfg.MaxRestarts = 30
	// цель — особь 2 детерминированного поколения 0 рестарта 3
	cfg.Target = DeterministicPermutation(8, 3*4+2)

	res := solve(t, cfg, rand.New(rand.NewSource(1)))

	require.Contains(t, []StopReason{ReasonTargetMatched, ReasonSolutionFound}, res.Reason)
	last, ok := res.Last()
	require.True(t, ok)
	require.LessOrEqual(t, last.Restart, 3)
	if last.Restart == 3 {
		assert.Equal(t, 0, last.Generation)
	}
	assert.LessOrEqual(t, len(res.Snapshots), 3*3+1)
}

func TestSolve_HistoricalDemoFindsSolution(t *testing.T) {
	cfg := baseConfig()
	cfg.HardMaxGenerations = 5000
	cfg.MaxRestarts = 30
	cfg.LightSnapshots = true

	res := solve(t, cfg, rand.New(rand.NewSource(2024)))

	require.Equal(t, ReasonSolutionFound, res.Reason)
	assert.True(t, res.Solved)
	assert.Equal(t, 0, res.Best.Conflicts)
	assert.Equal(t, 28, res.Best.Fitness)
	require.NoError(t, nqueens.ValidatePermutation(res.Best.Genes, 8))
	assert.Zero(t, nqueens.PairwiseConflicts(res.Best.Genes))

	last, _ := res.Last()
	assert.Empty(t, last.Individuals)
	assert.Equal(t, res.Best.Genes, last.Best.Genes)
}

func TestSolve_RandomInitSolvesSmallBoard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 4
	cfg.Population = 10
	cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = 20, 60, 20
	cfg.HardMaxGenerations = 200
	cfg.MaxRestarts = 30

	res := solve(t, cfg, rand.New(rand.NewSource(1)))
	require.True(t, res.Solved)
	assert.Equal(t, 6, res.Best.Fitness)
}

func TestSolve_GenerationInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 12
	cfg.Population = 20
	cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = 10, 60, 30
	cfg.HardMaxGenerations = 30
	cfg.MaxRestarts = 1
	cfg.Patience = 0

	res := solve(t, cfg, rand.New(rand.NewSource(77)))
	counts, err := cfg.Counts()
	require.NoError(t, err)

	eval, err := nqueens.NewEvaluator(cfg.N)
	require.NoError(t, err)
	for _, snap := range res.Snapshots {
		require.Len(t, snap.Individuals, cfg.Population)
		origins := map[Origin]int{}
		for _, ind := range snap.Individuals {
			s, err := eval.Evaluate(ind.Genes)
			require.NoError(t, err)
			require.Equal(t, s.Fitness, ind.Fitness)
			require.Equal(t, s.Conflicts, ind.Conflicts)
			origins[ind.Origin]++
		}
		if snap.Generation == 0 {
			assert.Equal(t, cfg.Population, origins[OriginInitial])
		} else {
			assert.Equal(t, counts.Crossover, origins[OriginCrossover])
			assert.Equal(t, counts.Mutation, origins[OriginMutation])
			assert.Equal(t, counts.Elite, origins[OriginElite])
		}
		for i, ind := range snap.Individuals {
			require.LessOrEqual(t, ind.Fitness, snap.Stats.BestFitness)
			if i < snap.BestIndex {
				require.Less(t, ind.Fitness, snap.Stats.BestFitness, "best index is the first maximum")
			}
		}
		assert.Equal(t, cfg.N, snap.Config.N)
		assert.Equal(t, counts, snap.Config.Counts)
		assert.Equal(t, 66, snap.Config.MaxPairs)
	}
	// элита копируется без повторной оценки
	restarts := 0
	for _, snap := range res.Snapshots {
		if snap.Generation == 0 {
			restarts++
		}
	}
	built := len(res.Snapshots) - restarts
	assert.Equal(t, restarts*cfg.Population+built*(counts.Crossover+counts.Mutation), res.Evaluations)
}

func TestSolve_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 10
	cfg.HardMaxGenerations = 50
	cfg.MaxRestarts = 2

	a := solve(t, cfg, rand.New(rand.NewSource(99)))
	b := solve(t, cfg, rand.New(rand.NewSource(99)))
	require.Equal(t, len(a.Snapshots), len(b.Snapshots))
	for i := range a.Snapshots {
		require.Equal(t, a.Snapshots[i].Individuals, b.Snapshots[i].Individuals)
	}
	assert.Equal(t, a.Best, b.Best)
}

func TestSolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ReasonCanceled, res.Reason)
	assert.Empty(t, res.Snapshots)
}

func TestNew_RejectsConfiguration(t *testing.T) {
	cfg := baseConfig()
	cfg.Population = 5
	cfg.EliteEnabled = false
	cfg.CrossoverPct, cfg.MutationPct = 60, 40

	_, err := New(cfg, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrOddCrossover)

	// Solve повторяет проверку и не выполняет ни одного поколения
	res, err := (&Solver{Cfg: cfg, Rng: rand.New(rand.NewSource(1))}).Solve(context.Background())
	require.ErrorIs(t, err, ErrConfig)
	assert.Empty(t, res.Snapshots)

	_, err = New(baseConfig(), nil)
	require.Error(t, err)
}

func TestInvariantError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&InvariantError{
		Restart:    2,
		Generation: 7,
		Op:         opCrossover,
		Parents:    []nqueens.Chromosome{{1, 2, 3, 4}, {4, 3, 2, 1}},
		Cut1:       1,
		Cut2:       2,
		Err:        cause,
	})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "рестарте 2")
	assert.Contains(t, err.Error(), "поколение 7")
	assert.Contains(t, err.Error(), "[1 2 3 4]")
	assert.Contains(t, err.Error(), "разрез=[1,2]")

	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 7, ie.Generation)
}
