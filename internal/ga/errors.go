package ga

import (
	"errors"
	"fmt"
	"strings"

	"nqueens/internal/nqueens"
)

var (
	// ErrConfig помечает ошибки конфигурации: они возвращаются до запуска
	// первого поколения.
	ErrConfig = errors.New("ga: некорректная конфигурация")

	// ErrInput помечает некорректную ручную популяцию или целевую хромосому.
	ErrInput = errors.New("ga: некорректные входные данные")

	// ErrInvariant помечает нарушение внутреннего инварианта алгоритма.
	// Такая ошибка означает программную ошибку, а не неудачный поиск.
	ErrInvariant = errors.New("ga: нарушен внутренний инвариант")

	ErrPercentSum   = fmt.Errorf("%w: сумма процентов должна быть ровно 100", ErrConfig)
	ErrOddCrossover = fmt.Errorf("%w: число потомков кроссовера должно быть чётным", ErrConfig)
	ErrPMXGuard     = fmt.Errorf("%w: PMX превысил лимит шагов по циклу", ErrInvariant)
)

// InvariantError описывает, где именно нарушился инвариант: рестарт,
// поколение, оператор и его входные данные.
type InvariantError struct {
	Restart    int
	Generation int
	Op         string
	Parents    []nqueens.Chromosome
	Cut1, Cut2 int
	Detail     string
	Err        error
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ga: нарушен инвариант (%s) на рестарте %d, поколение %d", e.Op, e.Restart, e.Generation)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	for i, p := range e.Parents {
		fmt.Fprintf(&b, "; родитель %d=[%s]", i+1, p)
	}
	if e.Op == opCrossover {
		fmt.Fprintf(&b, "; разрез=[%d,%d]", e.Cut1, e.Cut2)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *InvariantError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvariant}
	}
	return []error{ErrInvariant, e.Err}
}
