package bench

import (
	"encoding/csv"
	"os"

	"github.com/xuri/excelize/v2"
)

var header = []string{
	"id", "algo", "n", "population", "runs",
	"elite", "crossover", "mutation",
	"solved", "solved_rate",
	"generations_mean", "generations_std",
	"restarts_mean", "restarts_std",
	"evaluations_mean",
	"conflicts_best", "conflicts_mean",
	"time_best_ms", "time_mean_ms", "time_std_ms",
}

func (r Record) row() []string {
	return []string{
		r.ID,
		r.Algo,
		itoa(r.N),
		itoa(r.Population),
		itoa(r.Runs),

		itoa(r.Elite),
		itoa(r.Crossover),
		itoa(r.Mutation),

		itoa(r.Solved),
		ftoa(r.SolvedRate),

		ftoa(r.GenerationsMean),
		ftoa(r.GenerationsStd),
		ftoa(r.RestartsMean),
		ftoa(r.RestartsStd),
		ftoa(r.EvaluationsMean),

		itoa(r.ConflictsBest),
		ftoa(r.ConflictsMean),

		ftoa(r.TimeBestMs),
		ftoa(r.TimeMeanMs),
		ftoa(r.TimeStdMs),
	}
}

// cells — те же значения, что и row, но числа остаются числами.
func (r Record) cells() []interface{} {
	return []interface{}{
		r.ID, r.Algo, r.N, r.Population, r.Runs,
		r.Elite, r.Crossover, r.Mutation,
		r.Solved, r.SolvedRate,
		r.GenerationsMean, r.GenerationsStd,
		r.RestartsMean, r.RestartsStd,
		r.EvaluationsMean,
		r.ConflictsBest, r.ConflictsMean,
		r.TimeBestMs, r.TimeMeanMs, r.TimeStdMs,
	}
}

func WriteCSV(path string, records []Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(r.row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

const xlsxSheet = "results"

// WriteXLSX пишет те же колонки, что и WriteCSV, на лист "results".
func WriteXLSX(path string, records []Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, col); err != nil {
			return err
		}
	}
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := r.cells()
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
