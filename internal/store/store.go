// Package store publishes snapshot tables to Postgres.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/db"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/saber"
)

//go:embed schema.sql
var schema string

// Conn is the subset of pgxpool.Pool the publisher needs.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnsureSchema creates the output tables if they do not exist.
func EnsureSchema(ctx context.Context, conn Conn) error {
	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Result
// --------------------------------------------------------------------------

// Result tracks rows written per table.
type Result struct {
	Target int
	Rows   map[string]int
}

// Summary returns a human-readable summary of the publish.
func (r Result) Summary() string {
	parts := []string{fmt.Sprintf("target=%d", r.Target)}
	for _, t := range tableOrder {
		parts = append(parts, fmt.Sprintf("%s=%d", t, r.Rows[t]))
	}
	return strings.Join(parts, " ")
}

var tableOrder = []string{
	config.BatterProjectionsTable,
	config.PitcherProjectionsTable,
	config.BatterValuesTable,
	config.TeamRecordsTable,
	config.ProjectedStandingsTable,
}

// --------------------------------------------------------------------------
// Upserts
// --------------------------------------------------------------------------

// Upsert is one table's insert-or-update statement.
type Upsert struct {
	Table string
	Cols  []string
	Key   []string
}

// SQL renders the statement with one placeholder per column.
func (u Upsert) SQL() string {
	ph := make([]string, len(u.Cols))
	var set []string
	for i, c := range u.Cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
		if !slices.Contains(u.Key, c) {
			set = append(set, c+" = EXCLUDED."+c)
		}
	}
	set = append(set, "updated_at = NOW()")
	return "INSERT INTO " + u.Table + " (" + strings.Join(u.Cols, ", ") + ") VALUES (" +
		strings.Join(ph, ", ") + ") ON CONFLICT (" + strings.Join(u.Key, ", ") +
		") DO UPDATE SET " + strings.Join(set, ", ")
}

// Table is an upsert with its rows.
type Table struct {
	Upsert
	Rows [][]any
}

var (
	batterProjections = Upsert{
		Table: config.BatterProjectionsTable,
		Cols:  []string{"target_year", "player", "team", "age", "data_years", "pa", "stats", "woba", "wrc_plus", "wraa", "value_source", "baseline"},
		Key:   []string{"target_year", "player"},
	}
	pitcherProjections = Upsert{
		Table: config.PitcherProjectionsTable,
		Cols:  []string{"target_year", "player", "team", "age", "data_years", "ip", "stats", "baseline"},
		Key:   []string{"target_year", "player"},
	}
	batterValues = Upsert{
		Table: config.BatterValuesTable,
		Cols:  []string{"year", "player", "team", "pa", "avg", "obp", "slg", "woba", "wrc_plus", "wraa"},
		Key:   []string{"year", "player"},
	}
	teamRecords = Upsert{
		Table: config.TeamRecordsTable,
		Cols:  []string{"year", "team", "league", "g", "w", "l", "d", "rs", "ra", "exponent", "win_pct", "pyth_pct", "pyth_wins", "gap"},
		Key:   []string{"year", "team"},
	}
	projectedStandings = Upsert{
		Table: config.ProjectedStandingsTable,
		Cols:  []string{"target_year", "team", "league", "rank", "g", "rs", "ra", "win_pct", "wins", "losses", "uncertainty"},
		Key:   []string{"target_year", "team"},
	}
)

// Tables converts a snapshot into rows for every output table.
func Tables(s *forecast.Snapshot) []Table {
	bp := Table{Upsert: batterProjections}
	for i, p := range s.Batters {
		v := s.BatterValues[i]
		var woba, wrc, wraa any
		if v.Source != saber.Unavailable {
			woba, wrc, wraa = v.WOBA, v.WRCPlus, v.WRAA
		}
		bp.Rows = append(bp.Rows, []any{
			p.TargetYear, p.Player, p.Team, age(p.Age, p.AgeKnown), p.DataYears, p.Time,
			statsJSON(p.Rates, p.Counts), woba, wrc, wraa, v.Source.String(), p.Baseline.String(),
		})
	}

	pp := Table{Upsert: pitcherProjections}
	for _, p := range s.Pitchers {
		pp.Rows = append(pp.Rows, []any{
			p.TargetYear, p.Player, p.Team, age(p.Age, p.AgeKnown), p.DataYears, p.Time,
			statsJSON(p.Rates, p.Counts), p.Baseline.String(),
		})
	}

	bv := Table{Upsert: batterValues}
	for _, v := range s.SeasonValues {
		var woba, wrc, wraa any
		if v.Defined {
			woba, wrc, wraa = v.WOBA, v.WRCPlus, v.WRAA
		}
		bv.Rows = append(bv.Rows, []any{v.Year, v.Player, v.Team, v.PA, v.AVG, v.OBP, v.SLG, woba, wrc, wraa})
	}

	tr := Table{Upsert: teamRecords}
	for _, r := range s.Records {
		tr.Rows = append(tr.Rows, []any{
			r.Year, r.Team, r.League, r.G, r.W, r.L, r.D, r.RS, r.RA,
			r.Exponent, r.WinPct, r.PythPct, r.PythWins, r.Gap,
		})
	}

	ps := Table{Upsert: projectedStandings}
	for _, t := range s.Standings {
		ps.Rows = append(ps.Rows, []any{
			t.Year, t.Team, t.League, t.Rank, t.G, t.RS, t.RA, t.WinPct, t.Wins, t.Losses, t.Uncertainty,
		})
	}
	return []Table{bp, pp, bv, tr, ps}
}

func age(a int, known bool) any {
	if !known {
		return nil
	}
	return a
}

func statsJSON(rates, counts map[string]float64) []byte {
	m := make(map[string]float64, len(rates)+len(counts))
	maps.Copy(m, counts)
	maps.Copy(m, rates)
	b, _ := json.Marshal(m)
	return b
}

// --------------------------------------------------------------------------
// Publish
// --------------------------------------------------------------------------

// Publish writes every table of s in one transaction and logs the publish.
func Publish(ctx context.Context, conn Conn, s *forecast.Snapshot, logger *slog.Logger) (Result, error) {
	start := time.Now()
	res := Result{Target: s.Target, Rows: make(map[string]int)}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin publish: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range Tables(s) {
		if err := sendBatch(ctx, tx, t); err != nil {
			return res, err
		}
		res.Rows[t.Table] = len(t.Rows)
	}

	if _, err := tx.Exec(ctx, db.StmtRecordPublish, s.Target, res.Summary()); err != nil {
		return res, fmt.Errorf("record publish: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit publish: %w", err)
	}

	logger.Info("published snapshot",
		"target", s.Target,
		"summary", res.Summary(),
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func sendBatch(ctx context.Context, tx pgx.Tx, t Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	sql := t.SQL()
	batch := &pgx.Batch{}
	for _, row := range t.Rows {
		batch.Queue(sql, row...)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range t.Rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %s: %w", t.Table, err)
		}
	}
	return nil
}
