package ga

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/campoy/unique"
	"gonum.org/v1/gonum/stat"

	"nqueens/internal/nqueens"
)

// Solver — генетический алгоритм для задачи N ферзей с рестартами.
type Solver struct {
	Cfg    Config
	Rng    Source
	Logger *slog.Logger
}

// New возвращает новый GA-солвер с валидацией конфигурации.
// Ошибки конфигурации возвращаются здесь, до первого поколения.
func New(cfg Config, rng Source) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// run — состояние одного вызова Solve.
type run struct {
	cfg    Config
	counts OperatorCounts
	src    Source
	eval   *nqueens.Evaluator
	log    *slog.Logger
	echo   ConfigEcho
	res    RunResult
	have   bool
}

// Solve выполняет все рестарты до решения, совпадения с целью или
// исчерпания рестартов. Отмена через ctx проверяется раз в поколение;
// в этом случае возвращается накопленный результат и ctx.Err().
func (s *Solver) Solve(ctx context.Context) (RunResult, error) {
	start := time.Now()

	// Проверка корректности конфигурации
	if err := s.Cfg.Validate(); err != nil {
		return RunResult{}, err
	}
	if s.Rng == nil {
		return RunResult{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	counts, err := s.Cfg.Counts()
	if err != nil {
		return RunResult{}, err
	}
	eval, err := nqueens.NewEvaluator(s.Cfg.N)
	if err != nil {
		return RunResult{}, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := s.Cfg
	r := &run{
		cfg:    cfg,
		counts: counts,
		src:    s.Rng,
		eval:   eval,
		log:    logger,
		echo: ConfigEcho{
			N:                  cfg.N,
			Population:         cfg.Population,
			EliteEnabled:       cfg.EliteEnabled,
			ElitePct:           cfg.ElitePct,
			CrossoverPct:       cfg.CrossoverPct,
			MutationPct:        cfg.MutationPct,
			Counts:             counts,
			MaxPairs:           nqueens.MaxPairs(cfg.N),
			Patience:           cfg.Patience,
			MaxRestarts:        cfg.MaxRestarts,
			HardMaxGenerations: cfg.HardMaxGenerations,
			RandomInit:         cfg.RandomInit,
			TargetEnabled:      cfg.Target != nil,
		},
	}
	r.res.Counts = counts
	r.res.Target = cfg.Target.Clone()

	err = r.loop(ctx)
	r.res.Duration = time.Since(start)
	if err != nil {
		return r.res, err
	}

	logger.Info("ga finished",
		"reason", r.res.Reason.String(),
		"restarts", r.res.RestartsUsed,
		"generations", len(r.res.Snapshots),
		"best_conflicts", r.res.Best.Conflicts,
		"duration", r.res.Duration,
	)
	return r.res, nil
}

func (r *run) loop(ctx context.Context) error {
	cfg := r.cfg

	for restart := 0; restart <= cfg.MaxRestarts; restart++ {
		r.res.RestartsUsed = restart + 1

		pop, err := r.initialPopulation(restart)
		if err != nil {
			return err
		}

		bestRun := math.MinInt
		stale := 0

		for gen := 0; gen <= cfg.HardMaxGenerations; gen++ {
			// Для поддержки отмены через context
			if err := ctx.Err(); err != nil {
				r.res.Reason = ReasonCanceled
				return err
			}

			snap := r.snapshot(pop, restart, gen)
			best := pop[snap.BestIndex]

			if !r.have || best.Fitness > r.res.Best.Fitness {
				r.res.Best = BestIndividual{Individual: best.Clone(), Restart: restart, Generation: gen}
				r.have = true
			}

			// Цель проверяется раньше решения
			switch {
			case snap.Stats.TargetMatched:
				snap.Ended = ReasonTargetMatched
			case snap.Stats.Solved:
				snap.Ended = ReasonSolutionFound
			}
			r.res.Snapshots = append(r.res.Snapshots, snap)

			if snap.Ended != ReasonNone {
				r.res.Reason = snap.Ended
				r.res.StoppedByTarget = snap.Ended == ReasonTargetMatched
				r.res.Solved = snap.Ended == ReasonSolutionFound
				return nil
			}

			// Досрочная остановка рестарта
			if best.Fitness > bestRun {
				bestRun = best.Fitness
				stale = 0
			} else {
				stale++
			}
			r.res.Snapshots[len(r.res.Snapshots)-1].Stats.Stale = stale
			if cfg.Patience > 0 && stale >= cfg.Patience {
				r.endRestart(ReasonEarlyStopped)
				break
			}

			if gen == cfg.HardMaxGenerations {
				r.endRestart(ReasonHardCap)
				break
			}

			pop, err = r.nextGeneration(pop, restart, gen)
			if err != nil {
				return err
			}
		}
	}

	r.res.Reason = ReasonRestartsExhausted
	return nil
}

// endRestart помечает последний снимок рестарта.
func (r *run) endRestart(reason StopReason) {
	last := &r.res.Snapshots[len(r.res.Snapshots)-1]
	last.Ended = reason
	last.Stats.EarlyStopped = reason == ReasonEarlyStopped

	r.log.Debug("restart finished",
		"restart", last.Restart,
		"generation", last.Generation,
		"reason", reason.String(),
		"best_fitness", last.Stats.BestFitness,
		"best_conflicts", last.Stats.BestConflicts,
	)
}

func (r *run) individual(genes nqueens.Chromosome, origin Origin, detail string) (Individual, error) {
	score, err := r.eval.Evaluate(genes)
	if err != nil {
		return Individual{}, err
	}
	r.res.Evaluations++
	return Individual{
		Genes:     genes,
		Fitness:   score.Fitness,
		Conflicts: score.Conflicts,
		Origin:    origin,
		Detail:    detail,
	}, nil
}

// initialPopulation строит поколение 0: ручная популяция (только рестарт 0),
// случайная или детерминированная с индексом restart*popSize + i.
func (r *run) initialPopulation(restart int) ([]Individual, error) {
	cfg := r.cfg
	manual := cfg.ManualPopulation != nil && restart == 0
	detail := fmt.Sprintf("restart %d / gen 0", restart+1)

	pop := make([]Individual, 0, cfg.Population)
	for i := 0; i < cfg.Population; i++ {
		var genes nqueens.Chromosome
		switch {
		case manual:
			genes = cfg.ManualPopulation[i].Clone()
		case cfg.RandomInit:
			genes = RandomPermutation(cfg.N, r.src)
		default:
			genes = DeterministicPermutation(cfg.N, restart*cfg.Population+i)
		}
		ind, err := r.individual(genes, OriginInitial, detail)
		if err != nil {
			return nil, &InvariantError{
				Restart: restart,
				Op:      opInit,
				Parents: []nqueens.Chromosome{genes},
				Detail:  fmt.Sprintf("особь %d", i),
				Err:     err,
			}
		}
		pop = append(pop, ind)
	}
	r.log.Debug("restart started", "restart", restart, "manual", manual, "random", cfg.RandomInit)
	return pop, nil
}

// snapshot проверяет цель, находит лучшую особь и собирает статистику.
func (r *run) snapshot(pop []Individual, restart, gen int) GenerationSnapshot {
	targetIndex := -1
	if r.cfg.Target != nil {
		for i := range pop {
			if pop[i].Genes.Equal(r.cfg.Target) {
				pop[i].IsTarget = true
				targetIndex = i
				break
			}
		}
	}

	bestIndex := 0
	fits := make([]float64, len(pop))
	keys := make([]string, len(pop))
	for i := range pop {
		if pop[i].Fitness > pop[bestIndex].Fitness {
			bestIndex = i
		}
		fits[i] = float64(pop[i].Fitness)
		keys[i] = pop[i].Genes.String()
	}
	avg, std := stat.MeanStdDev(fits, nil)
	if len(fits) < 2 {
		std = 0
	}
	sort.Strings(keys)
	unique.Slice(&keys, func(i, j int) bool { return keys[i] < keys[j] })

	best := pop[bestIndex]
	snap := GenerationSnapshot{
		Restart:     restart,
		Generation:  gen,
		BestIndex:   bestIndex,
		TargetIndex: targetIndex,
		Best:        best.Clone(),
		Stats: Stats{
			AvgFitness:     avg,
			FitnessStdDev:  std,
			BestFitness:    best.Fitness,
			BestConflicts:  best.Conflicts,
			Distinct:       len(keys),
			Solved:         best.Conflicts == 0,
			TargetMatched:  targetIndex >= 0,
			ManualInitUsed: r.cfg.ManualPopulation != nil && restart == 0,
		},
		Config: r.echo,
	}
	if !r.cfg.LightSnapshots {
		snap.Individuals = cloneAll(pop)
	}
	return snap
}

// nextGeneration собирает следующее поколение: потомки PMX, мутанты, элита.
// Родители выбираются равномерно с возвращением.
func (r *run) nextGeneration(pop []Individual, restart, gen int) ([]Individual, error) {
	cfg := r.cfg
	n := cfg.N
	next := make([]Individual, 0, cfg.Population)

	// Кроссовер: каждая операция даёт двух потомков
	for k := 0; k < r.counts.Crossover; k += 2 {
		p1 := pop[intn(r.src, len(pop))]
		p2 := pop[intn(r.src, len(pop))]
		cut1, cut2 := randomCuts(n, r.src)

		fail := func(err error) error {
			return &InvariantError{
				Restart:    restart,
				Generation: gen,
				Op:         opCrossover,
				Parents:    []nqueens.Chromosome{p1.Genes.Clone(), p2.Genes.Clone()},
				Cut1:       cut1,
				Cut2:       cut2,
				Err:        err,
			}
		}

		c1, c2, err := PMX(p1.Genes, p2.Genes, cut1, cut2)
		if err != nil {
			return nil, fail(err)
		}
		detail := fmt.Sprintf("PMX (%d,%d)", cut1+1, cut2+1)
		for _, child := range []nqueens.Chromosome{c1, c2} {
			ind, err := r.individual(child, OriginCrossover, detail)
			if err != nil {
				return nil, fail(err)
			}
			next = append(next, ind)
		}
	}

	// Мутация Swap
	for k := 0; k < r.counts.Mutation; k++ {
		parent := pop[intn(r.src, len(pop))]
		genes := parent.Genes.Clone()
		a, b := MutateSwap(genes, r.src)
		ind, err := r.individual(genes, OriginMutation, fmt.Sprintf("swap (%d,%d)", a+1, b+1))
		if err != nil {
			return nil, &InvariantError{
				Restart:    restart,
				Generation: gen,
				Op:         opMutation,
				Parents:    []nqueens.Chromosome{parent.Genes.Clone()},
				Err:        err,
			}
		}
		next = append(next, ind)
	}

	// Элитизм (переносим лучших особей без изменений)
	for rank, idx := range topKIndices(pop, r.counts.Elite) {
		elite := pop[idx].Clone()
		elite.Origin = OriginElite
		elite.Detail = fmt.Sprintf("elite #%d", rank+1)
		elite.IsTarget = false
		next = append(next, elite)
	}

	if len(next) != cfg.Population {
		return nil, &InvariantError{
			Restart:    restart,
			Generation: gen,
			Op:         opAssemble,
			Detail:     fmt.Sprintf("следующее поколение содержит %d особей вместо %d", len(next), cfg.Population),
		}
	}
	return next, nil
}
