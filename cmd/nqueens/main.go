package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"nqueens/internal/ga"
	"nqueens/internal/nqueens"
	"nqueens/internal/report"
)

const usage = `Использование:
  nqueens run     [флаги]   одиночный запуск GA
  nqueens fitness [флаги]   сверка O(N^2) и O(N) подсчёта конфликтов

Флаги подкоманды: nqueens <команда> -h`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "fitness":
		err = fitnessCmd(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		if errors.Is(err, ga.ErrConfig) || errors.Is(err, ga.ErrInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	def := ga.DefaultConfig()

	var (
		configPath = fs.String("config", "", "YAML-файл конфигурации; явно заданные флаги имеют приоритет")
		seed       = fs.Int64("seed", time.Now().UnixNano(), "сид генератора случайных чисел")
		manualPath = fs.String("manual", "", "файл с начальной популяцией: по одной перестановке в строке (только рестарт 1)")
		target     = fs.String("target", "", "целевая хромосома, например \"2 4 6 8 3 1 7 5\"")
		every      = fs.Int("table", 0, "печатать таблицу поколений с шагом k (0 — не печатать)")
		showLast   = fs.Bool("last", false, "печатать особей последнего поколения")
		explain    = fs.Bool("explain", true, "объяснить фитнес лучшей особи")
		light      = fs.Bool("light", false, "не сохранять особей в снимках, только статистику")
		verbose    = fs.Bool("v", false, "подробный лог (уровень Debug)")

		n        = fs.Int("n", def.N, "размер доски N")
		pop      = fs.Int("pop", def.Population, "размер популяции")
		elite    = fs.Bool("elite", def.EliteEnabled, "включить элитизм")
		elitePct = fs.Int("elite_pct", def.ElitePct, "доля элиты, %")
		cxPct    = fs.Int("cx_pct", def.CrossoverPct, "доля кроссовера PMX, %")
		mutPct   = fs.Int("mut_pct", def.MutationPct, "доля мутации Swap, %")
		patience = fs.Int("patience", def.Patience, "поколений без улучшения до рестарта (0 — отключено)")
		restarts = fs.Int("restarts", def.MaxRestarts, "максимум рестартов")
		hardMax  = fs.Int("hardmax", def.HardMaxGenerations, "предел поколений в одном рестарте")
		random   = fs.Bool("random", def.RandomInit, "случайная начальная популяция (иначе детерминированная)")
	)
	_ = fs.Parse(args)

	cfg := def
	if *configPath != "" {
		loaded, err := ga.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Явно заданные флаги перекрывают файл конфигурации
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.N = *n
		case "pop":
			cfg.Population = *pop
		case "elite":
			cfg.EliteEnabled = *elite
		case "elite_pct":
			cfg.ElitePct = *elitePct
		case "cx_pct":
			cfg.CrossoverPct = *cxPct
		case "mut_pct":
			cfg.MutationPct = *mutPct
		case "patience":
			cfg.Patience = *patience
		case "restarts":
			cfg.MaxRestarts = *restarts
		case "hardmax":
			cfg.HardMaxGenerations = *hardMax
		case "random":
			cfg.RandomInit = *random
		case "light":
			cfg.LightSnapshots = *light
		}
	})

	if *manualPath != "" {
		data, err := os.ReadFile(*manualPath)
		if err != nil {
			return err
		}
		manual, err := nqueens.ParsePopulation(string(data), cfg.N, cfg.Population)
		if err != nil {
			return fmt.Errorf("%w: ручная популяция: %w", ga.ErrInput, err)
		}
		cfg.ManualPopulation = manual
	}
	if *target != "" {
		t, err := nqueens.ParseTarget(*target, cfg.N)
		if err != nil {
			return fmt.Errorf("%w: цель: %w", ga.ErrInput, err)
		}
		cfg.Target = t
	}

	solver, err := ga.New(cfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}
	solver.Logger = newLogger(*verbose)

	res, err := solver.Solve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if *every > 0 {
		fmt.Println(report.History(res, *every))
		fmt.Println()
	}
	if *showLast {
		if last, ok := res.Last(); ok {
			fmt.Print(report.Generation(last))
			fmt.Println()
		}
	}
	fmt.Println(report.Summary(res))
	if *explain && res.Best.Genes != nil {
		fmt.Println()
		fmt.Print(report.ExplainFitness(res.Best.Genes))
	}
	fmt.Printf("seed=%d\n", *seed)
	return err
}

func fitnessCmd(args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ExitOnError)
	var (
		n       = fs.Int("n", 8, "размер доски N")
		samples = fs.Int("samples", 1000, "количество случайных перестановок")
		seed    = fs.Int64("seed", 1, "сид генератора случайных чисел")
		perm    = fs.String("perm", "", "объяснить фитнес конкретной перестановки вместо сверки")
	)
	_ = fs.Parse(args)

	if *perm != "" {
		genes, err := nqueens.ParseTarget(*perm, *n)
		if err != nil {
			return fmt.Errorf("%w: %w", ga.ErrInput, err)
		}
		fmt.Print(report.ExplainFitness(genes))
		return nil
	}

	if *n < ga.MinN || *n > ga.MaxN {
		return fmt.Errorf("%w: N должно быть в [%d, %d], получено %d", ga.ErrConfig, ga.MinN, ga.MaxN, *n)
	}
	if *samples <= 0 {
		return fmt.Errorf("%w: samples должно быть > 0", ga.ErrConfig)
	}

	eval, err := nqueens.NewEvaluator(*n)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(*seed))

	var slow, fast time.Duration
	mismatches := 0
	for i := 0; i < *samples; i++ {
		genes := ga.RandomPermutation(*n, rng)

		t0 := time.Now()
		ref := nqueens.PairwiseConflicts(genes)
		t1 := time.Now()
		score := eval.MustEvaluate(genes)
		t2 := time.Now()

		slow += t1.Sub(t0)
		fast += t2.Sub(t1)
		if ref != score.Conflicts {
			mismatches++
			if mismatches <= 5 {
				fmt.Printf("расхождение: [%s] O(N^2)=%d O(N)=%d\n", genes, ref, score.Conflicts)
			}
		}
	}

	fmt.Printf("N=%d, перестановок=%d, расхождений=%d\n", *n, *samples, mismatches)
	fmt.Printf("O(N^2): %v всего, %v на перестановку\n", slow, slow/time.Duration(*samples))
	fmt.Printf("O(N):   %v всего, %v на перестановку\n", fast, fast/time.Duration(*samples))
	if mismatches > 0 {
		return fmt.Errorf("%w: %d расхождений между счётчиками конфликтов", ga.ErrInvariant, mismatches)
	}
	return nil
}
