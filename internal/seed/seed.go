package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
)

const (
	demoSessionID = "00000000-0000-4000-8000-000000000001"
	demoReport    = "Sesión de demostración generada al arrancar en modo desarrollo."
	timeLayout    = "2006-01-02T15:04:05.000000000Z"
)

// Config selects what the startup seed writes.
type Config struct {
	DemoDraft   bool
	DemoSession bool
	Engine      *pricing.Engine
	Now         func() time.Time
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	if cfg.Engine == nil {
		cfg.Engine = pricing.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if cfg.DemoDraft {
		if err := ensureDemoDraft(ctx, tx, cfg, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	if cfg.DemoSession {
		if err := ensureDemoSession(ctx, tx, cfg, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureDemoDraft(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM draft WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check draft existence: %w", err)
	}
	if exists {
		return nil
	}

	raw, err := json.Marshal(profile.Sample())
	if err != nil {
		return fmt.Errorf("encode demo profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO draft (id, step, profile_json, updated_at)
		VALUES (1, ?, ?, ?)
	`, 1, string(raw), cfg.Now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("insert demo draft: %w", err)
	}
	stats.Inserts++
	return nil
}

// ensureDemoSession keeps one history entry priced with the current tariff.
// When the tariff version changes the demo snapshot is re-priced in place.
func ensureDemoSession(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	tariff := cfg.Engine.Tariff()

	var version string
	err := tx.QueryRowContext(ctx, `SELECT tariff_version FROM sessions WHERE id = ?`, demoSessionID).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("check demo session existence: %w", err)
	case version == tariff.Version:
		return nil
	}
	exists := err == nil

	p := profile.Sample()
	budget := cfg.Engine.Calculate(p)

	profileJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode demo profile: %w", err)
	}
	budgetJSON, err := json.Marshal(budget)
	if err != nil {
		return fmt.Errorf("encode demo budget: %w", err)
	}

	if exists {
		if _, err := tx.ExecContext(ctx, `
			UPDATE sessions
			SET tariff_version = ?,
				currency = ?,
				total_one_time = ?,
				total_recurring_yearly = ?,
				budget_json = ?
			WHERE id = ?
		`, tariff.Version, tariff.Currency, budget.TotalOneTime, budget.TotalRecurringYearly, string(budgetJSON), demoSessionID); err != nil {
			return fmt.Errorf("update demo session: %w", err)
		}
		stats.Updates++
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (
			id,
			created_at,
			company_name,
			sector,
			tariff_version,
			currency,
			total_one_time,
			total_recurring_yearly,
			profile_json,
			budget_json,
			report
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		demoSessionID,
		cfg.Now().UTC().Format(timeLayout),
		p.CompanyName,
		p.Sector,
		tariff.Version,
		tariff.Currency,
		budget.TotalOneTime,
		budget.TotalRecurringYearly,
		string(profileJSON),
		string(budgetJSON),
		demoReport,
	); err != nil {
		return fmt.Errorf("insert demo session: %w", err)
	}
	stats.Inserts++
	return nil
}
