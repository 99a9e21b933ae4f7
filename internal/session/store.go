// Package session keeps the wizard's working draft and the history of saved
// proposals in the local SQLite database.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Session is a saved snapshot: the profile as entered, the budget as computed
// at save time and the generated report. It is never recalculated.
type Session struct {
	ID            string                `json:"id"`
	CreatedAt     time.Time             `json:"timestamp"`
	TariffVersion string                `json:"tariffVersion"`
	Currency      string                `json:"currency"`
	Profile       profile.ClientProfile `json:"data"`
	Budget        pricing.BudgetResult  `json:"budget"`
	Report        string                `json:"report"`
}

// Summary is the history list entry.
type Summary struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"timestamp"`
	CompanyName          string    `json:"companyName"`
	Sector               string    `json:"sector"`
	TotalOneTime         float64   `json:"totalOneTime"`
	TotalRecurringYearly float64   `json:"totalRecurringYearly"`
}

// Draft is the in-progress wizard state.
type Draft struct {
	Step      int                   `json:"step"`
	Profile   profile.ClientProfile `json:"data"`
	UpdatedAt time.Time             `json:"updatedAt,omitempty"`
}

// Store persists sessions and the draft.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the UUID generator, for tests.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores sess under a new id and timestamp and returns the stored copy.
func (s *Store) Save(ctx context.Context, sess Session) (Session, error) {
	sess.ID = s.newID()
	sess.CreatedAt = s.now().UTC()
	if sess.Budget.Services == nil {
		sess.Budget.Services = []pricing.BudgetLineItem{}
	}
	if sess.Budget.Recurring == nil {
		sess.Budget.Recurring = []pricing.BudgetLineItem{}
	}

	profileJSON, err := json.Marshal(sess.Profile)
	if err != nil {
		return Session{}, fmt.Errorf("encode profile snapshot: %w", err)
	}
	budgetJSON, err := json.Marshal(sess.Budget)
	if err != nil {
		return Session{}, fmt.Errorf("encode budget snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
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
		sess.ID,
		sess.CreatedAt.Format(timeLayout),
		sess.Profile.CompanyName,
		sess.Profile.Sector,
		sess.TariffVersion,
		sess.Currency,
		sess.Budget.TotalOneTime,
		sess.Budget.TotalRecurringYearly,
		string(profileJSON),
		string(budgetJSON),
		sess.Report,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// List returns saved sessions newest first. A non-empty query keeps sessions
// whose company name, sector or report contains it (ASCII case-insensitive).
func (s *Store) List(ctx context.Context, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	search := "%" + escapeLike(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			created_at,
			company_name,
			sector,
			total_one_time,
			total_recurring_yearly
		FROM sessions
		WHERE (? = ''
			OR company_name LIKE ? ESCAPE '\'
			OR sector LIKE ? ESCAPE '\'
			OR report LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, rowid DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			item    Summary
			created string
		)
		if err := rows.Scan(&item.ID, &created, &item.CompanyName, &item.Sector, &item.TotalOneTime, &item.TotalRecurringYearly); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		if item.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Get returns the stored snapshot for id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	var (
		sess        Session
		created     string
		profileJSON string
		budgetJSON  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, tariff_version, currency, profile_json, budget_json, report
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &created, &sess.TariffVersion, &sess.Currency, &profileJSON, &budgetJSON, &sess.Report)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}

	if sess.CreatedAt, err = parseTime(created); err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(profileJSON), &sess.Profile); err != nil {
		return Session{}, fmt.Errorf("decode profile snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(budgetJSON), &sess.Budget); err != nil {
		return Session{}, fmt.Errorf("decode budget snapshot: %w", err)
	}
	return sess, nil
}

// Delete removes the session with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
