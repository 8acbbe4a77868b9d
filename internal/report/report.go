// Package report renders GA results as plain-text tables for the CLIs.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"

	"nqueens/internal/ga"
	"nqueens/internal/nqueens"
)

// explainCap limits how many conflicting diagonals of each family are listed.
const explainCap = 12

func newTable() *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = 60
	t.Wrap = false
	return t
}

// Summary lists the run outcome and the best individual ever seen.
func Summary(res ga.RunResult) string {
	t := newTable()
	t.AddRow("Reason", res.Reason.String())
	t.AddRow("Solved", res.Solved)
	t.AddRow("Stopped by target", res.StoppedByTarget)
	t.AddRow("Restarts used", res.RestartsUsed)
	t.AddRow("Generations", len(res.Snapshots))
	t.AddRow("Evaluations", res.Evaluations)
	t.AddRow("Operators", fmt.Sprintf("elite=%d crossover=%d mutation=%d",
		res.Counts.Elite, res.Counts.Crossover, res.Counts.Mutation))
	t.AddRow("Best chromosome", "["+res.Best.Genes.String()+"]")
	t.AddRow("Best conflicts", res.Best.Conflicts)
	t.AddRow("Best fitness", res.Best.Fitness)
	t.AddRow("Found at", fmt.Sprintf("restart %d, generation %d", res.Best.Restart+1, res.Best.Generation))
	if res.Target != nil {
		t.AddRow("Target", "["+res.Target.String()+"]")
	}
	t.AddRow("Duration", res.Duration.String())
	return t.String()
}

// History prints one row per snapshot, keeping every nth generation of each
// restart plus the last one. every <= 1 keeps all rows.
func History(res ga.RunResult, every int) string {
	t := newTable()
	t.AddRow("RESTART", "GEN", "BEST", "CONFLICTS", "AVG", "STD", "DISTINCT", "STALE", "END")
	for i, s := range res.Snapshots {
		lastOfRestart := i == len(res.Snapshots)-1 || res.Snapshots[i+1].Restart != s.Restart
		if every > 1 && s.Generation%every != 0 && !lastOfRestart {
			continue
		}
		end := ""
		if s.Ended != ga.ReasonNone {
			end = s.Ended.String()
		}
		t.AddRow(
			s.Restart+1,
			s.Generation,
			s.Stats.BestFitness,
			s.Stats.BestConflicts,
			strconv.FormatFloat(s.Stats.AvgFitness, 'f', 2, 64),
			strconv.FormatFloat(s.Stats.FitnessStdDev, 'f', 2, 64),
			s.Stats.Distinct,
			s.Stats.Stale,
			end,
		)
	}
	return t.String()
}

// Generation lists the individuals of one snapshot with their provenance.
func Generation(s ga.GenerationSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restart %d, generation %d\n", s.Restart+1, s.Generation)
	if len(s.Individuals) == 0 {
		b.WriteString("(individuals not recorded)\n")
		return b.String()
	}

	t := newTable()
	t.AddRow("#", "CHROMOSOME", "CONFLICTS", "FITNESS", "ORIGIN", "FLAGS")
	for i, ind := range s.Individuals {
		var flags []string
		if i == s.BestIndex {
			flags = append(flags, "best")
		}
		if i == s.TargetIndex {
			flags = append(flags, "target")
		}
		if ind.Conflicts == 0 {
			flags = append(flags, "solution")
		}
		origin := string(ind.Origin)
		if ind.Detail != "" {
			origin += ": " + ind.Detail
		}
		t.AddRow(i+1, "["+ind.Genes.String()+"]", ind.Conflicts, ind.Fitness, origin, strings.Join(flags, ","))
	}
	b.WriteString(t.String())
	b.WriteByte('\n')
	return b.String()
}

// ExplainFitness describes how a chromosome's fitness follows from its
// diagonal counts.
func ExplainFitness(genes nqueens.Chromosome) string {
	a := nqueens.Analyze(genes)
	mp := nqueens.MaxPairs(a.N)

	var b strings.Builder
	fmt.Fprintf(&b, "chromosome: [%s]\n", genes)
	if a.Conflicts == 0 {
		fmt.Fprintf(&b, "no conflicts\nfitness = C(%d,2) = %d\n", a.N, mp)
		b.WriteString("d1 = row-col and d2 = row+col are all distinct\n")
		return b.String()
	}

	b.WriteString("conflicts are the running sum of queens already on each row's d1 and d2\n")
	fmt.Fprintf(&b, "conflicting d1 (row-col): %s\n", diagonals("d1", a.ConflictD1))
	fmt.Fprintf(&b, "conflicting d2 (row+col): %s\n", diagonals("d2", a.ConflictD2))
	fmt.Fprintf(&b, "rows under attack: %s\n", joinInts(a.ConflictRows))
	fmt.Fprintf(&b, "fitness = C(%d,2) - conflicts = %d - %d = %d\n", a.N, mp, a.Conflicts, a.Fitness)
	return b.String()
}

func diagonals(name string, ds []nqueens.Diagonal) string {
	if len(ds) == 0 {
		return "-"
	}
	shown := ds
	if len(shown) > explainCap {
		shown = shown[:explainCap]
	}
	parts := make([]string, len(shown))
	for i, d := range shown {
		parts[i] = fmt.Sprintf("%s=%d (count=%d)", name, d.ID, d.Count)
	}
	out := strings.Join(parts, ", ")
	if rest := len(ds) - len(shown); rest > 0 {
		out += fmt.Sprintf(" ... and %d more", rest)
	}
	return out
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
