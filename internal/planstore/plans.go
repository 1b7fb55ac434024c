package planstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"versionup/internal/resolve"
)

var (
	// ErrNotFound is returned when no plan matches the requested ID.
	ErrNotFound = errors.New("plan not found")
	// ErrAmbiguousID is returned when an ID prefix matches several plans.
	ErrAmbiguousID = errors.New("plan id prefix is ambiguous")
)

// Record summarizes a stored plan without its clip reports.
type Record struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Timeline  string         `json:"timeline"`
	Track     string         `json:"track"`
	Clips     int            `json:"clips"`
	Counts    resolve.Counts `json:"counts"`
	AppliedAt *time.Time     `json:"applied_at,omitempty"`
}

// Applied reports whether the plan has been applied.
func (r Record) Applied() bool {
	return r.AppliedAt != nil
}

// Entry is a stored plan with its apply history.
type Entry struct {
	Record
	Plan    *resolve.Plan         `json:"plan"`
	Summary *resolve.ApplySummary `json:"apply_summary,omitempty"`
}

const recordColumns = `id, created_at, timeline, track, clip_count,
	update_available, no_newer_version, incompatible, unscannable, applied_at`

// Save stores plan, replacing any previous plan with the same ID.
func (s *Store) Save(ctx context.Context, plan *resolve.Plan) error {
	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan has no id")
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	counts := plan.Counts()
	_, err = s.execWithRetry(ctx, `INSERT OR REPLACE INTO plans (
			id, created_at, timeline, track, clip_count,
			update_available, no_newer_version, incompatible, unscannable, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		formatTime(plan.CreatedAt),
		plan.Timeline,
		plan.Track,
		len(plan.Clips),
		counts.UpdateAvailable,
		counts.NoNewerVersion,
		counts.Incompatible,
		counts.Unscannable,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return nil
}

// Get loads a plan by full ID or unique prefix.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+`, payload, apply_summary FROM plans WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`,
		id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if entry.ID == id {
			return entry, nil
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return entries[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
}

// Latest returns the most recently created plan.
func (s *Store) Latest(ctx context.Context) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`, payload, apply_summary FROM plans ORDER BY created_at DESC, id DESC LIMIT 1`)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return entry, err
}

// List returns plan summaries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM plans ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkApplied records the outcome of applying plan id.
func (s *Store) MarkApplied(ctx context.Context, id string, summary resolve.ApplySummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode apply summary: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE plans SET applied_at = ?, apply_summary = ? WHERE id = ?`,
		formatTime(s.now()), string(payload), id)
	if err != nil {
		return fmt.Errorf("mark plan %s applied: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Prune deletes plans created before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM plans WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune plans: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, rec *Record, extra ...any) error {
	var (
		created string
		applied sql.NullString
	)
	dest := []any{
		&rec.ID, &created, &rec.Timeline, &rec.Track, &rec.Clips,
		&rec.Counts.UpdateAvailable, &rec.Counts.NoNewerVersion, &rec.Counts.Incompatible, &rec.Counts.Unscannable,
		&applied,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	var err error
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return fmt.Errorf("plan %s created_at: %w", rec.ID, err)
	}
	if applied.Valid && applied.String != "" {
		at, err := parseTime(applied.String)
		if err != nil {
			return fmt.Errorf("plan %s applied_at: %w", rec.ID, err)
		}
		rec.AppliedAt = &at
	}
	return nil
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry   Entry
		payload string
		summary sql.NullString
	)
	if err := scanRecord(row, &entry.Record, &payload, &summary); err != nil {
		return nil, err
	}
	entry.Plan = &resolve.Plan{}
	if err := json.Unmarshal([]byte(payload), entry.Plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", entry.ID, err)
	}
	if summary.Valid && summary.String != "" {
		entry.Summary = &resolve.ApplySummary{}
		if err := json.Unmarshal([]byte(summary.String), entry.Summary); err != nil {
			return nil, fmt.Errorf("decode apply summary %s: %w", entry.ID, err)
		}
	}
	return &entry, nil
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
