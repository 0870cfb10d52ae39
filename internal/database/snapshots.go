package database

import "database/sql"

// UpsertSnapshot stores (or refreshes) a story's cached analysis.
func (db *DB) UpsertSnapshot(storyID int64, seriesJSON, graphJSON string) error {
	_, err := db.conn.Exec(
		`INSERT INTO snapshots (story_id, series_json, graph_json, generated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(story_id) DO UPDATE SET
			series_json = excluded.series_json,
			graph_json = excluded.graph_json,
			generated_at = excluded.generated_at`,
		storyID, seriesJSON, graphJSON,
	)
	return err
}

// GetSnapshot returns a story's cached analysis, or nil when none exists.
func (db *DB) GetSnapshot(storyID int64) (*Snapshot, error) {
	row := db.conn.QueryRow(
		`SELECT story_id, series_json, graph_json, generated_at
		FROM snapshots WHERE story_id = ?`, storyID,
	)

	var s Snapshot
	if err := row.Scan(&s.StoryID, &s.SeriesJSON, &s.GraphJSON, &s.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
