package planstore

import (
	"context"
	"fmt"
	"time"
)

// Health describes the plan database for diagnostics.
type Health struct {
	DBPath        string `json:"db_path"`
	Readable      bool   `json:"readable"`
	SchemaVersion int    `json:"schema_version"`
	Plans         int    `json:"plans"`
	Pending       int    `json:"pending"`
	Error         string `json:"error,omitempty"`
}

// CheckHealth pings the database and counts stored plans.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{DBPath: s.path}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping plan database: %w", err)
	}
	health.Readable = true

	version, err := s.SchemaVersion(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.SchemaVersion = version

	row := s.db.QueryRowContext(connCtx,
		`SELECT COUNT(1), COALESCE(SUM(CASE WHEN applied_at IS NULL AND update_available > 0 THEN 1 ELSE 0 END), 0) FROM plans`)
	if err := row.Scan(&health.Plans, &health.Pending); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("count plans: %w", err)
	}
	return health, nil
}
