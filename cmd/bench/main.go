package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"nqueens/internal/bench"
	"nqueens/internal/ga"
)

func main() {
	// CLI флаги для настройки серии запусков
	var (
		out      = flag.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		xlsx     = flag.String("xlsx", "", "путь к выходному XLSX-файлу (пусто — не писать)")
		pairs    = flag.String("pairs", "8x40,16x100,32x200", "конфигурации: размер доски N x размер популяции (через запятую)")
		splits   = flag.String("splits", "10/70/20,0/70/30,20/60/20", "доли операторов элита/кроссовер/мутация в процентах (через запятую); элита 0 — элитизм отключён")
		runs     = flag.Int("runs", 30, "количество запусков каждой конфигурации (с разными сидами)")
		baseSeed = flag.Int64("seed", 1000, "базовый сид для запусков")
		workers  = flag.Int("workers", runtime.NumCPU(), "количество параллельных запусков")
		perRunTO = flag.Duration("per_run_timeout", 0, "таймаут одного запуска; 0 — без ограничения")
		cfgPath  = flag.String("config", "", "YAML-файл базовой конфигурации GA")
		verbose  = flag.Bool("v", false, "подробный лог (уровень Debug)")

		// --- Генетический алгоритм ---
		patience = flag.Int("patience", 200, "поколений без улучшения до рестарта (0 — отключено)")
		restarts = flag.Int("restarts", 20, "максимум рестартов")
		hardMax  = flag.Int("hardmax", 2000, "предел поколений в одном рестарте")
		random   = flag.Bool("random", true, "случайная начальная популяция (иначе детерминированная)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base := ga.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := ga.LoadConfig(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Конфликт в конфигурации генетического алгоритма:", err)
			os.Exit(2)
		}
		base = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "patience":
			base.Patience = *patience
		case "restarts":
			base.MaxRestarts = *restarts
		case "hardmax":
			base.HardMaxGenerations = *hardMax
		case "random":
			base.RandomInit = *random
		}
	})

	cases, err := parsePairs(*pairs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}
	algos, err := parseSplits(*splits, base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
		Workers:       *workers,
		Logger:        logger,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range algos {
			fmt.Printf("Запущен GA %s; N=%d, популяция %d (общее кол-во запусков=%d)...\n", a.Name, c.N, c.Population, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Ошибка:", err)
				os.Exit(1)
			}
			records = append(records, rec)

			fmt.Printf("  Решено: %d/%d (%.0f%%) | Поколений: среднее=%.1f отклонение=%.1f | Рестартов: среднее=%.2f | Конфликтов: лучшее=%d среднее=%.2f | Время: среднее=%.2fms отклонение=%.2fms\n",
				rec.Solved, rec.Runs, rec.SolvedRate*100,
				rec.GenerationsMean, rec.GenerationsStd,
				rec.RestartsMean,
				rec.ConflictsBest, rec.ConflictsMean,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", *out)

	if *xlsx != "" {
		if err := bench.WriteXLSX(*xlsx, records); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка при записи в XLSX:", err)
			os.Exit(1)
		}
		fmt.Println("Saved:", *xlsx)
	}
}

// helpers

func parsePairs(s string) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for _, p := range parts {
		np := strings.Split(p, "x")
		if len(np) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 8x40", p)
		}
		n, err := atoiStrict(np[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга размера доски: %w", p, err)
		}
		pop, err := atoiStrict(np[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга размера популяции: %w", p, err)
		}
		if n < ga.MinN || n > ga.MaxN {
			return nil, fmt.Errorf("пара %q: N должно быть в [%d, %d]", p, ga.MinN, ga.MaxN)
		}
		if pop < ga.MinPopulation || pop > ga.MaxPopulation {
			return nil, fmt.Errorf("пара %q: популяция должна быть в [%d, %d]", p, ga.MinPopulation, ga.MaxPopulation)
		}

		cases = append(cases, bench.Case{N: n, Population: pop})
	}

	return cases, nil
}

// parseSplits разбирает "элита/кроссовер/мутация" поверх базовой конфигурации.
func parseSplits(s string, base ga.Config) ([]bench.Algorithm, error) {
	parts := splitCSV(s)
	algos := make([]bench.Algorithm, 0, len(parts))

	for _, p := range parts {
		fields := strings.Split(p, "/")
		if len(fields) != 3 {
			return nil, fmt.Errorf("доли %q невалидной схемы, пример: 10/70/20", p)
		}
		pct := make([]int, 3)
		for i, f := range fields {
			v, err := atoiStrict(f)
			if err != nil {
				return nil, fmt.Errorf("доли %q: %w", p, err)
			}
			pct[i] = v
		}

		cfg := base
		cfg.EliteEnabled = pct[0] > 0
		cfg.ElitePct, cfg.CrossoverPct, cfg.MutationPct = pct[0], pct[1], pct[2]
		if pct[0]+pct[1]+pct[2] != 100 {
			return nil, fmt.Errorf("доли %q: %w", p, ga.ErrPercentSum)
		}

		algos = append(algos, bench.Algorithm{Name: p, Config: cfg})
	}

	return algos, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}
