package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var timeFormats = []string{
	timeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 +0000 UTC",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// InsertUsageSnapshots records a batch of usage readings taken at at.
func (db *DB) InsertUsageSnapshots(ctx context.Context, snapshots []models.UsageSnapshot, at time.Time) error {
	if len(snapshots) == 0 {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_snapshots (
			account_id, plan_type,
			primary_used_percent, primary_window_minutes, primary_resets_at,
			secondary_used_percent, secondary_window_minutes, secondary_resets_at,
			has_credits, unlimited_credits, credits_balance, error, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare usage insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	recordedAt := formatTime(at)
	for i := range snapshots {
		s := &snapshots[i]
		if s.AccountID == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			s.AccountID,
			nullString(s.PlanType),
			s.PrimaryUsedPercent,
			s.PrimaryWindowMinutes,
			s.PrimaryResetsAt,
			s.SecondaryUsedPercent,
			s.SecondaryWindowMinutes,
			s.SecondaryResetsAt,
			s.HasCredits,
			s.UnlimitedCredits,
			nullString(s.CreditsBalance),
			nullString(s.Error),
			recordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert usage snapshot for %s: %w", s.AccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage snapshots: %w", err)
	}
	return nil
}

// GetUsageHistory returns readings for accountID recorded at or after
// since, oldest first. Readings that carry only an error are skipped.
func (db *DB) GetUsageHistory(ctx context.Context, accountID string, since time.Time) ([]models.UsagePoint, error) {
	query := `
		SELECT recorded_at, primary_used_percent, primary_resets_at, secondary_used_percent
		FROM usage_snapshots
		WHERE account_id = ?
		  AND recorded_at >= ?
		  AND (primary_used_percent IS NOT NULL OR secondary_used_percent IS NOT NULL)
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, accountID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var points []models.UsagePoint
	for rows.Next() {
		var recordedAt string
		var primary, secondary sql.NullFloat64
		var resetsAt sql.NullInt64

		if err := rows.Scan(&recordedAt, &primary, &resetsAt, &secondary); err != nil {
			return nil, fmt.Errorf("failed to scan usage point: %w", err)
		}

		p := models.UsagePoint{
			PrimaryUsedPercent:   primary.Float64,
			HasPrimary:           primary.Valid,
			SecondaryUsedPercent: secondary.Float64,
			HasSecondary:         secondary.Valid,
		}
		p.RecordedAt, _ = parseTimeString(recordedAt)
		if resetsAt.Valid && resetsAt.Int64 > 0 {
			p.PrimaryResetsAt = time.Unix(resetsAt.Int64, 0).UTC()
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// GetLatestSnapshot returns the most recent reading for accountID and the
// time it was recorded. A nil snapshot means nothing was recorded.
func (db *DB) GetLatestSnapshot(ctx context.Context, accountID string) (*models.UsageSnapshot, time.Time, error) {
	query := `
		SELECT plan_type,
			   primary_used_percent, primary_window_minutes, primary_resets_at,
			   secondary_used_percent, secondary_window_minutes, secondary_resets_at,
			   has_credits, unlimited_credits, credits_balance, error, recorded_at
		FROM usage_snapshots
		WHERE account_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	var (
		planType, balance, errStr       sql.NullString
		primary, secondary              sql.NullFloat64
		primaryWindow, primaryReset     sql.NullInt64
		secondaryWindow, secondaryReset sql.NullInt64
		hasCredits, unlimited           sql.NullBool
		recordedAt                      string
	)

	err := db.QueryRowContext(ctx, query, accountID).Scan(
		&planType,
		&primary, &primaryWindow, &primaryReset,
		&secondary, &secondaryWindow, &secondaryReset,
		&hasCredits, &unlimited, &balance, &errStr, &recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	s := &models.UsageSnapshot{
		AccountID:              accountID,
		PlanType:               planType.String,
		PrimaryUsedPercent:     floatPtr(primary),
		PrimaryWindowMinutes:   intPtr(primaryWindow),
		PrimaryResetsAt:        intPtr(primaryReset),
		SecondaryUsedPercent:   floatPtr(secondary),
		SecondaryWindowMinutes: intPtr(secondaryWindow),
		SecondaryResetsAt:      intPtr(secondaryReset),
		HasCredits:             boolPtr(hasCredits),
		UnlimitedCredits:       boolPtr(unlimited),
		CreditsBalance:         balance.String,
		Error:                  errStr.String,
	}
	at, _ := parseTimeString(recordedAt)
	return s, at, nil
}

// GetHourlyPatterns returns the average primary usage per hour of day
// (UTC) for readings recorded at or after since. All 24 hours are returned.
func (db *DB) GetHourlyPatterns(ctx context.Context, accountID string, since time.Time) ([]models.HourlyPattern, error) {
	query := `
		SELECT
			CAST(strftime('%H', recorded_at) AS INTEGER) AS hour,
			AVG(primary_used_percent) AS avg_used,
			COUNT(*) AS occurrences
		FROM usage_snapshots
		WHERE account_id = ? AND recorded_at >= ? AND primary_used_percent IS NOT NULL
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := db.QueryContext(ctx, query, accountID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	patterns := make([]models.HourlyPattern, 24)
	for i := range 24 {
		patterns[i] = models.HourlyPattern{Hour: i}
	}

	for rows.Next() {
		var hour sql.NullInt64
		var avgUsed float64
		var occurrences int

		if err := rows.Scan(&hour, &avgUsed, &occurrences); err != nil {
			continue
		}

		if hour.Valid && hour.Int64 >= 0 && hour.Int64 < 24 {
			patterns[hour.Int64].AvgUsed = avgUsed
			patterns[hour.Int64].Occurrences = occurrences
		}
	}

	return patterns, rows.Err()
}

// GetAccountHistory assembles the history view for one account.
func (db *DB) GetAccountHistory(ctx context.Context, accountID string, tr models.TimeRange, now time.Time) (*models.AccountHistory, error) {
	since := tr.Since(now)

	points, err := db.GetUsageHistory(ctx, accountID, since)
	if err != nil {
		return nil, err
	}

	patterns, err := db.GetHourlyPatterns(ctx, accountID, since)
	if err != nil {
		logger.Warn("failed to load hourly patterns", "account", accountID, "error", err)
	}

	h := &models.AccountHistory{
		AccountID:      accountID,
		TimeRange:      tr,
		Points:         points,
		HourlyPatterns: patterns,
	}
	if len(points) > 0 {
		h.FirstDataPoint = points[0].RecordedAt
		h.LastDataPoint = points[len(points)-1].RecordedAt
		proj := ProjectExhaustion(points, now)
		h.Projection = &proj
	}
	return h, nil
}

// PruneBefore deletes readings and switch records older than cutoff and
// returns the number of readings removed.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM usage_snapshots WHERE recorded_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage snapshots: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM account_switches WHERE switched_at < ?", formatTime(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to prune account switches: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RecordSwitch stores a change of the active account.
func (db *DB) RecordSwitch(ctx context.Context, rec models.SwitchRecord) error {
	at := rec.SwitchedAt
	if at.IsZero() {
		at = time.Now()
	}
	source := rec.Source
	if source == "" {
		source = "switch"
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO account_switches (account_id, account_name, source, switched_at) VALUES (?, ?, ?, ?)",
		rec.AccountID, nullString(rec.AccountName), source, formatTime(at))
	if err != nil {
		return fmt.Errorf("failed to record switch: %w", err)
	}
	return nil
}

// GetRecentSwitches returns up to limit switch records, newest first.
func (db *DB) GetRecentSwitches(ctx context.Context, limit int) ([]models.SwitchRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT account_id, account_name, source, switched_at
		FROM account_switches
		ORDER BY switched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query switches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.SwitchRecord
	for rows.Next() {
		var rec models.SwitchRecord
		var name sql.NullString
		var at string
		if err := rows.Scan(&rec.AccountID, &name, &rec.Source, &at); err != nil {
			return nil, fmt.Errorf("failed to scan switch: %w", err)
		}
		rec.AccountName = name.String
		rec.SwitchedAt, _ = parseTimeString(at)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
