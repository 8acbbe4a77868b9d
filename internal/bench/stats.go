package bench

import "gonum.org/v1/gonum/stat"

type IntStats struct {
	N    int
	Best int // минимум
	Mean float64
	Std  float64
}

func CalcIntStats(values []int) IntStats {
	s := IntStats{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := values[0]
	fs := make([]float64, len(values))
	for i, v := range values {
		if v < best {
			best = v
		}
		fs[i] = float64(v)
	}

	s.Best = best
	s.Mean, s.Std = meanStd(fs)
	return s
}

type FloatStats struct {
	N    int
	Best float64 // минимум
	Mean float64
	Std  float64
}

func CalcFloatStats(values []float64) FloatStats {
	s := FloatStats{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := values[0]
	for _, v := range values {
		if v < best {
			best = v
		}
	}

	s.Best = best
	s.Mean, s.Std = meanStd(values)
	return s
}

// meanStd — среднее и выборочное стандартное отклонение (N-1).
// Для одного значения отклонение равно 0.
func meanStd(values []float64) (float64, float64) {
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return mean, std
}
