package ga

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"nqueens/internal/nqueens"
)

// Границы параметров.
const (
	MinN           = 4
	MaxN           = 2048
	MinPopulation  = 2
	MaxPopulation  = 500
	MaxPatience    = 20000
	MaxRestarts    = 5_000_000
	MaxGenerations = 2_000_000
)

type Config struct {
	N          int `yaml:"n"`
	Population int `yaml:"population"`

	// Проценты операторов. При EliteEnabled=false ElitePct игнорируется,
	// а CrossoverPct+MutationPct должны давать 100.
	EliteEnabled bool `yaml:"elite_enabled"`
	ElitePct     int  `yaml:"elite_pct"`
	CrossoverPct int  `yaml:"crossover_pct"`
	MutationPct  int  `yaml:"mutation_pct"`

	// Patience — число поколений без улучшения до досрочной остановки
	// рестарта; 0 отключает досрочную остановку.
	Patience           int `yaml:"patience"`
	MaxRestarts        int `yaml:"max_restarts"`
	HardMaxGenerations int `yaml:"hard_max_generations"`

	// RandomInit=false включает детерминированную инициализацию.
	RandomInit bool `yaml:"random_init"`

	// LightSnapshots сохраняет в снимках только статистику и лучшую особь.
	LightSnapshots bool `yaml:"light_snapshots"`

	// ManualPopulation используется только в рестарте 0.
	ManualPopulation []nqueens.Chromosome `yaml:"manual_population"`
	Target           nqueens.Chromosome   `yaml:"target"`
}

func (c Config) Validate() error {
	if c.N < MinN || c.N > MaxN {
		return fmt.Errorf(
			"%w: размер доски должен быть в диапазоне [%d, %d] (получено %d)",
			ErrConfig, MinN, MaxN, c.N,
		)
	}
	if c.Population < MinPopulation || c.Population > MaxPopulation {
		return fmt.Errorf(
			"%w: размер популяции должен быть в диапазоне [%d, %d] (получено %d)",
			ErrConfig, MinPopulation, MaxPopulation, c.Population,
		)
	}
	if c.Patience < 0 || c.Patience > MaxPatience {
		return fmt.Errorf(
			"%w: терпение должно быть в диапазоне [0, %d] (получено %d)",
			ErrConfig, MaxPatience, c.Patience,
		)
	}
	if c.MaxRestarts < 0 || c.MaxRestarts > MaxRestarts {
		return fmt.Errorf(
			"%w: число рестартов должно быть в диапазоне [0, %d] (получено %d)",
			ErrConfig, MaxRestarts, c.MaxRestarts,
		)
	}
	if c.HardMaxGenerations < 0 || c.HardMaxGenerations > MaxGenerations {
		return fmt.Errorf(
			"%w: предел поколений должен быть в диапазоне [0, %d] (получено %d)",
			ErrConfig, MaxGenerations, c.HardMaxGenerations,
		)
	}
	for _, p := range []struct {
		name string
		v    int
	}{
		{"элиты", c.ElitePct},
		{"кроссовера", c.CrossoverPct},
		{"мутации", c.MutationPct},
	} {
		if p.v < 0 || p.v > 100 {
			return fmt.Errorf(
				"%w: процент %s должен быть в диапазоне [0, 100] (получено %d)",
				ErrConfig, p.name, p.v,
			)
		}
	}
	if _, err := c.Counts(); err != nil {
		return err
	}

	if c.ManualPopulation != nil {
		if len(c.ManualPopulation) != c.Population {
			return fmt.Errorf(
				"%w: ручная популяция должна содержать %d хромосом (получено %d)",
				ErrInput, c.Population, len(c.ManualPopulation),
			)
		}
		for i, genes := range c.ManualPopulation {
			if err := nqueens.ValidatePermutation(genes, c.N); err != nil {
				return fmt.Errorf("%w: ручная популяция, строка %d: %w", ErrInput, i+1, err)
			}
		}
	}
	if c.Target != nil {
		if err := nqueens.ValidatePermutation(c.Target, c.N); err != nil {
			return fmt.Errorf("%w: целевая хромосома: %w", ErrInput, err)
		}
	}
	return nil
}

// Counts переводит проценты в точное число особей для каждого оператора.
func (c Config) Counts() (OperatorCounts, error) {
	return Apportion(c.Population, c.EliteEnabled, c.ElitePct, c.CrossoverPct, c.MutationPct)
}

func DefaultConfig() Config {
	return Config{
		N:                  8,
		Population:         40,
		EliteEnabled:       true,
		ElitePct:           10,
		CrossoverPct:       70,
		MutationPct:        20,
		Patience:           200,
		MaxRestarts:        20,
		HardMaxGenerations: 2000,
		RandomInit:         true,
	}
}

// LoadConfig читает YAML-файл поверх DefaultConfig. Неизвестные ключи
// считаются ошибкой. Валидация остаётся за вызывающим кодом: флаги CLI
// могут ещё переопределить значения.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}
	return cfg, nil
}
