// ./internal/state/snapshot_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/lendscope/cre/internal/types"
	"github.com/rs/zerolog/log"
)

// SaveCycleSnapshot saves a complete cycle snapshot to the database.
func SaveCycleSnapshot(snapshot types.CycleSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	ratingsJSON, err := json.Marshal(snapshot.Ratings)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal ratings: %w", err)
	}

	gradesJSON, err := json.Marshal(snapshot.Grades)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal grades: %w", err)
	}

	query := `
		INSERT INTO cycle_snapshots (
			cycle_number, cycle_id, snapshot_timestamp, config_id,
			market_count, idle_count, rated_count,
			ratings, grades, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.CycleNumber, snapshot.CycleID, snapshot.Timestamp, snapshot.ConfigID,
		snapshot.MarketCount, snapshot.IdleCount, snapshot.RatedCount,
		ratingsJSON, gradesJSON, snapshot.DurationMs,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cycle snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshotID", snapshotID).
		Int("cycleNumber", snapshot.CycleNumber).
		Int("marketCount", snapshot.MarketCount).
		Msg("Cycle snapshot saved")

	return snapshotID, nil
}

// GetRecentCycles returns the most recent cycle snapshots, newest first.
func GetRecentCycles(limit int) ([]types.CycleSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT snapshot_id, cycle_number, cycle_id, snapshot_timestamp, COALESCE(config_id, 0),
			market_count, idle_count, rated_count,
			ratings, grades, duration_ms
		FROM cycle_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.CycleSnapshot
	for rows.Next() {
		var snapshot types.CycleSnapshot
		var ratingsJSON, gradesJSON []byte

		err := rows.Scan(
			&snapshot.SnapshotID, &snapshot.CycleNumber, &snapshot.CycleID,
			&snapshot.Timestamp, &snapshot.ConfigID,
			&snapshot.MarketCount, &snapshot.IdleCount, &snapshot.RatedCount,
			&ratingsJSON, &gradesJSON, &snapshot.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle snapshot: %w", err)
		}

		if len(ratingsJSON) > 0 {
			if err := json.Unmarshal(ratingsJSON, &snapshot.Ratings); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ratings for snapshot %d: %w", snapshot.SnapshotID, err)
			}
		}
		if len(gradesJSON) > 0 {
			if err := json.Unmarshal(gradesJSON, &snapshot.Grades); err != nil {
				return nil, fmt.Errorf("failed to unmarshal grades for snapshot %d: %w", snapshot.SnapshotID, err)
			}
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle snapshots: %w", err)
	}

	return snapshots, nil
}
