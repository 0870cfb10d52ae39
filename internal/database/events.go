package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

// dateFormat is how event and contradiction dates are stored.
const dateFormat = time.RFC3339

// InsertEvent inserts a timeline event. Returns the ID on success, 0 when the
// (story, date, title) combination already exists.
func (db *DB) InsertEvent(storyID int64, ev model.TimelineEvent) (int64, error) {
	var sourcesJSON *string
	if len(ev.Sources) > 0 {
		data, err := json.Marshal(ev.Sources)
		if err != nil {
			return 0, err
		}
		s := string(data)
		sourcesJSON = &s
	}

	result, err := db.conn.Exec(
		`INSERT INTO events (story_id, date, title, summary, narrative_phase, fact_density, sources, synthesis_id, similarity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		storyID, ev.Date.UTC().Format(dateFormat), ev.Title, ev.Summary, ev.Phase,
		ev.FactDensity, sourcesJSON, ev.SynthesisID, ev.Similarity,
	)
	if err != nil {
		// Duplicate (story, date, title) constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetEventsForStory returns a story's events in chronological order.
func (db *DB) GetEventsForStory(storyID int64) ([]model.TimelineEvent, error) {
	rows, err := db.conn.Query(
		`SELECT date, title, summary, narrative_phase, fact_density, sources, synthesis_id, similarity
		FROM events WHERE story_id = ? ORDER BY date ASC`, storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.TimelineEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// eventRow is an event that still needs a fact-density estimate.
type eventRow struct {
	ID      int64
	Title   string
	Sources []string
}

// GetEventsNeedingDensity returns events with no fact density that haven't
// been checked yet.
func (db *DB) GetEventsNeedingDensity(storyID int64) ([]eventRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, sources FROM events
		WHERE story_id = ? AND fact_density = 0 AND density_checked = 0
		ORDER BY date ASC`, storyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []eventRow
	for rows.Next() {
		var r eventRow
		var sourcesJSON *string
		if err := rows.Scan(&r.ID, &r.Title, &sourcesJSON); err != nil {
			return nil, err
		}
		if sourcesJSON != nil {
			if err := json.Unmarshal([]byte(*sourcesJSON), &r.Sources); err != nil {
				r.Sources = nil
			}
		}
		pending = append(pending, r)
	}
	return pending, rows.Err()
}

// UpdateEventDensity stores an estimated fact density for an event.
func (db *DB) UpdateEventDensity(eventID int64, density float64) error {
	_, err := db.conn.Exec(
		"UPDATE events SET fact_density = ?, density_checked = 1 WHERE id = ?",
		density, eventID,
	)
	return err
}

// MarkEventDensityChecked records that estimation was attempted and failed.
func (db *DB) MarkEventDensityChecked(eventID int64) error {
	_, err := db.conn.Exec(
		"UPDATE events SET density_checked = 1 WHERE id = ?", eventID,
	)
	return err
}

func scanEvent(rows *sql.Rows) (model.TimelineEvent, error) {
	var ev model.TimelineEvent
	var dateStr string
	var summary, sourcesJSON, synthesisID *string
	if err := rows.Scan(&dateStr, &ev.Title, &summary, &ev.Phase,
		&ev.FactDensity, &sourcesJSON, &synthesisID, &ev.Similarity); err != nil {
		return ev, err
	}
	if t, err := time.Parse(dateFormat, dateStr); err == nil {
		ev.Date = t
	}
	if summary != nil {
		ev.Summary = *summary
	}
	if synthesisID != nil {
		ev.SynthesisID = *synthesisID
	}
	if sourcesJSON != nil {
		if err := json.Unmarshal([]byte(*sourcesJSON), &ev.Sources); err != nil {
			ev.Sources = nil
		}
	}
	return ev, nil
}
