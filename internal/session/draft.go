package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/discovery/internal/profile"
)

// Wizard steps run from FirstStep to LastStep.
const (
	FirstStep = 1
	LastStep  = 6
)

// ClampStep keeps step inside the wizard's range.
func ClampStep(step int) int {
	return min(max(step, FirstStep), LastStep)
}

// SaveDraft replaces the stored draft.
func (s *Store) SaveDraft(ctx context.Context, d Draft) (Draft, error) {
	d.Step = ClampStep(d.Step)
	d.UpdatedAt = s.now().UTC()

	raw, err := json.Marshal(d.Profile)
	if err != nil {
		return Draft{}, fmt.Errorf("encode draft profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO draft (id, step, profile_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			step = excluded.step,
			profile_json = excluded.profile_json,
			updated_at = excluded.updated_at
	`, d.Step, string(raw), d.UpdatedAt.Format(timeLayout))
	if err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

// LoadDraft returns the stored draft, or a fresh profile at the first step
// when none exists.
func (s *Store) LoadDraft(ctx context.Context) (Draft, error) {
	var (
		d       Draft
		raw     string
		updated string
	)
	err := s.db.QueryRowContext(ctx, `SELECT step, profile_json, updated_at FROM draft WHERE id = 1`).
		Scan(&d.Step, &raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{Step: FirstStep, Profile: profile.New()}, nil
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &d.Profile); err != nil {
		return Draft{}, fmt.Errorf("decode draft profile: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updated); err != nil {
		return Draft{}, err
	}
	d.Step = ClampStep(d.Step)
	return d, nil
}

// HasDraft reports whether a draft is stored.
func (s *Store) HasDraft(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM draft WHERE id = 1)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check draft existence: %w", err)
	}
	return exists, nil
}

// ClearDraft removes the stored draft. Clearing an empty draft is not an error.
func (s *Store) ClearDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft WHERE id = 1`); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
