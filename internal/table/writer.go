package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/albapepper/npb-projections/internal/backtest"
	"github.com/albapepper/npb-projections/internal/marcel"
	"github.com/albapepper/npb-projections/internal/pythag"
	"github.com/albapepper/npb-projections/internal/saber"
	"github.com/albapepper/npb-projections/internal/stats"
)

// Writer emits UTF-8 CSV with a leading byte-order mark so spreadsheet
// tools pick the encoding up.
type Writer struct {
	w   io.Writer
	csv *csv.Writer
	bom bool
}

// NewWriter returns a writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, csv: csv.NewWriter(w)}
}

func (w *Writer) write(header []string, rows [][]string) error {
	if !w.bom {
		if _, err := io.WriteString(w.w, bom); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
		w.bom = true
	}
	if err := w.csv.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.csv.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func fmtFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func fmtInt(v int) string { return strconv.Itoa(v) }

// --------------------------------------------------------------------------
// Projections
// --------------------------------------------------------------------------

// Projections writes one row per projection. Rates carry three decimals
// (two for ERA/WHIP), counts one. Optional categories are blank when the
// projection has no detail.
func (w *Writer) Projections(side marcel.Side, ps []marcel.Projection) error {
	cats := stats.BatterCategories()
	timeCol, ratePrec := stats.KeyPA, 3
	if side == marcel.Pitcher {
		cats = stats.PitcherCategories()
		timeCol, ratePrec = stats.KeyIP, 2
	}

	header := []string{"player", "team", "target_year", "age", "data_years", timeCol}
	for _, c := range cats {
		header = append(header, c.Key)
	}
	header = append(header, "baseline")

	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		age := ""
		if p.AgeKnown {
			age = fmtInt(p.Age)
		}
		tm := fmtFloat(p.Time, 0)
		if side == marcel.Pitcher {
			tm = fmtFloat(p.Time, 1)
		}
		rec := []string{p.Player, p.Team, fmtInt(p.TargetYear), age, fmtInt(p.DataYears), tm}
		for _, c := range cats {
			v, ok := p.Stat(c.Key)
			switch {
			case !ok:
				rec = append(rec, "")
			case c.Kind == stats.KindRate:
				rec = append(rec, fmtFloat(v, ratePrec))
			default:
				rec = append(rec, fmtFloat(v, 1))
			}
		}
		rec = append(rec, p.Baseline.String())
		rows = append(rows, rec)
	}
	return w.write(header, rows)
}

// --------------------------------------------------------------------------
// Value tables
// --------------------------------------------------------------------------

// SeasonValues writes the per-season wOBA / wRC+ / wRAA table.
func (w *Writer) SeasonValues(vs []saber.SeasonValue) error {
	header := []string{"player", "team", "year", "PA", "AVG", "OBP", "SLG", "wOBA", "wRC+", "wRAA"}
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		rec := []string{v.Player, v.Team, fmtInt(v.Year), fmtInt(v.PA), fmtFloat(v.AVG, 3), fmtFloat(v.OBP, 3), fmtFloat(v.SLG, 3)}
		if v.Defined {
			rec = append(rec, fmtFloat(v.WOBA, 3), fmtFloat(v.WRCPlus, 1), fmtFloat(v.WRAA, 1))
		} else {
			rec = append(rec, "", "", "")
		}
		rows = append(rows, rec)
	}
	return w.write(header, rows)
}

// ProjectedValues writes projections with their estimated value.
func (w *Writer) ProjectedValues(ps []marcel.Projection, vs []saber.Value) error {
	header := []string{"player", "team", "target_year", "PA", "OBP", "SLG", "wOBA", "wRC+", "wRAA", "source"}
	rows := make([][]string, 0, len(ps))
	for n, p := range ps {
		v := vs[n]
		rec := []string{p.Player, p.Team, fmtInt(p.TargetYear), fmtFloat(p.Time, 0), fmtFloat(p.Rate(stats.KeyOBP), 3), fmtFloat(p.Rate(stats.KeySLG), 3)}
		if v.Source == saber.Unavailable {
			rec = append(rec, "", "", "")
		} else {
			rec = append(rec, fmtFloat(v.WOBA, 3), fmtFloat(v.WRCPlus, 1), fmtFloat(v.WRAA, 1))
		}
		rows = append(rows, append(rec, v.Source.String()))
	}
	return w.write(header, rows)
}

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// Records writes the Pythagorean evaluation table.
func (w *Writer) Records(rs []pythag.Record) error {
	header := []string{"year", "league", "team", "G", "W", "L", "D", "RS", "RA", "k", "actual_WPCT", "pyth_WPCT", "pyth_W", "gap"}
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, []string{
			fmtInt(r.Year), r.League, r.Team, fmtInt(r.G), fmtInt(r.W), fmtInt(r.L), fmtInt(r.D),
			fmtFloat(r.RS, 0), fmtFloat(r.RA, 0), fmtFloat(r.Exponent, 2),
			fmtFloat(r.WinPct, 3), fmtFloat(r.PythPct, 3), fmtFloat(r.PythWins, 1), fmtFloat(r.Gap, 1),
		})
	}
	return w.write(header, rows)
}

// Standings writes projected standings.
func (w *Writer) Standings(ts []pythag.TeamProjection) error {
	header := []string{"year", "league", "rank", "team", "G", "pred_RS", "pred_RA", "pred_WPCT", "pred_W", "pred_L", "batters", "pitchers", "unprojected", "uncertainty_W"}
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, []string{
			fmtInt(t.Year), t.League, fmtInt(t.Rank), t.Team, fmtInt(t.G),
			fmtFloat(t.RS, 1), fmtFloat(t.RA, 1), fmtFloat(t.WinPct, 3), fmtFloat(t.Wins, 1), fmtFloat(t.Losses, 1),
			fmtInt(t.Batters), fmtInt(t.Pitchers), fmtInt(t.Unprojected), fmtFloat(t.Uncertainty, 1),
		})
	}
	return w.write(header, rows)
}

// TeamBacktest writes projected versus realised wins.
func (w *Writer) TeamBacktest(reports []backtest.TeamReport) error {
	header := []string{"year", "league", "team", "pred_W", "actual_W", "error"}
	var rows [][]string
	for _, r := range reports {
		for _, t := range r.Rows {
			rows = append(rows, []string{fmtInt(t.Year), t.League, t.Team, fmtFloat(t.ProjectedWins, 1), fmtInt(t.ActualWins), fmtFloat(t.Error, 1)})
		}
	}
	return w.write(header, rows)
}

// Metrics writes player backtest error metrics.
func (w *Writer) Metrics(reports []backtest.PlayerReport) error {
	header := []string{"target_year", "side", "stat", "n", "MAE", "RMSE", "bias"}
	var rows [][]string
	for _, r := range reports {
		for _, m := range r.Batters {
			rows = append(rows, metricRow(r.Target, marcel.Batter, m))
		}
		for _, m := range r.Pitchers {
			rows = append(rows, metricRow(r.Target, marcel.Pitcher, m))
		}
	}
	return w.write(header, rows)
}

func metricRow(year int, side marcel.Side, m backtest.Metric) []string {
	return []string{fmtInt(year), side.String(), m.Key, fmtInt(m.N), fmtFloat(m.MAE, 4), fmtFloat(m.RMSE, 4), fmtFloat(m.Bias, 4)}
}
