package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"nqueens/internal/ga"
)

// Algorithm — именованная настройка GA (доли операторов, терпение, лимиты).
// N и Population берутся из Case.
type Algorithm struct {
	Name   string
	Config ga.Config
}

type Case struct {
	N          int
	Population int
}

type Record struct {
	ID         string
	Algo       string
	N          int
	Population int
	Runs       int

	Elite     int
	Crossover int
	Mutation  int

	Solved     int
	SolvedRate float64

	GenerationsMean float64
	GenerationsStd  float64
	RestartsMean    float64
	RestartsStd     float64
	EvaluationsMean float64

	ConflictsBest int
	ConflictsMean float64

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Workers       int           // <= 1 — последовательно
	Logger        *slog.Logger
}

// outcome — итог одного запуска.
type outcome struct {
	solved      bool
	generations int
	restarts    int
	evaluations int
	conflicts   int
	timeMs      float64
}

// RunCase запускает Runs независимых прогонов с сидами BaseSeed+i.
// Результаты складываются по индексу запуска, поэтому запись не зависит от Workers.
func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	if r.Runs <= 0 {
		return Record{}, fmt.Errorf("количество запусков должно быть > 0, получено %d", r.Runs)
	}

	cfg := algo.Config
	cfg.N = c.N
	cfg.Population = c.Population
	cfg.ManualPopulation = nil
	cfg.Target = nil
	cfg.LightSnapshots = true
	if err := cfg.Validate(); err != nil {
		return Record{}, fmt.Errorf("%s N=%d pop=%d: %w", algo.Name, c.N, c.Population, err)
	}
	counts, err := cfg.Counts()
	if err != nil {
		return Record{}, err
	}

	results := make([]outcome, r.Runs)
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for i := 0; i < r.Runs; i++ {
		p.Go(func(ctx context.Context) error {
			o, err := r.runOnce(ctx, cfg, r.BaseSeed+int64(i))
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = o
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return Record{}, err
	}

	rec := aggregate(results)
	rec.ID = RecordID(algo.Name, c, r.Runs, r.BaseSeed).String()
	rec.Algo = algo.Name
	rec.N = c.N
	rec.Population = c.Population
	rec.Elite = counts.Elite
	rec.Crossover = counts.Crossover
	rec.Mutation = counts.Mutation

	if r.Logger != nil {
		r.Logger.Debug("case finished", "algo", algo.Name, "n", c.N, "pop", c.Population, "solved", rec.Solved)
	}
	return rec, nil
}

func (r Runner) runOnce(ctx context.Context, cfg ga.Config, seed int64) (outcome, error) {
	solver, err := ga.New(cfg, randForSeed(seed))
	if err != nil {
		return outcome{}, err
	}
	solver.Logger = r.Logger

	runCtx := ctx
	cancel := func() {}
	if r.PerRunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
	}
	defer cancel()

	start := time.Now()
	res, err := solver.Solve(runCtx)
	dur := time.Since(start)

	// Таймаут одного запуска не ошибка: запуск считается нерешённым.
	if err != nil && !(errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil) {
		return outcome{}, fmt.Errorf("solve error: %w", err)
	}

	return outcome{
		solved:      res.Solved || res.StoppedByTarget,
		generations: len(res.Snapshots),
		restarts:    res.RestartsUsed,
		evaluations: res.Evaluations,
		conflicts:   res.Best.Conflicts,
		timeMs:      float64(dur.Microseconds()) / 1000.0,
	}, nil
}

func aggregate(results []outcome) Record {
	gens := make([]int, len(results))
	restarts := make([]int, len(results))
	evals := make([]int, len(results))
	conflicts := make([]int, len(results))
	timesMs := make([]float64, len(results))

	solved := 0
	for i, o := range results {
		if o.solved {
			solved++
		}
		gens[i] = o.generations
		restarts[i] = o.restarts
		evals[i] = o.evaluations
		conflicts[i] = o.conflicts
		timesMs[i] = o.timeMs
	}

	gStats := CalcIntStats(gens)
	rStats := CalcIntStats(restarts)
	eStats := CalcIntStats(evals)
	cStats := CalcIntStats(conflicts)
	tStats := CalcFloatStats(timesMs)

	return Record{
		Runs:       len(results),
		Solved:     solved,
		SolvedRate: float64(solved) / float64(len(results)),

		GenerationsMean: gStats.Mean,
		GenerationsStd:  gStats.Std,
		RestartsMean:    rStats.Mean,
		RestartsStd:     rStats.Std,
		EvaluationsMean: eStats.Mean,

		ConflictsBest: cStats.Best,
		ConflictsMean: cStats.Mean,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,
	}
}

// RecordID — детерминированный идентификатор записи (UUID v5 по параметрам серии).
func RecordID(algo string, c Case, runs int, baseSeed int64) uuid.UUID {
	name := fmt.Sprintf("%s|n=%d|pop=%d|runs=%d|seed=%d", algo, c.N, c.Population, runs, baseSeed)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
