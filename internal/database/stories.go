package database

import (
	"database/sql"
	"encoding/json"
)

// InsertStory inserts a tracked story. Returns the ID on success, 0 if a
// story with the same slug exists.
func (db *DB) InsertStory(slug, title, category string, keywords []string) (int64, error) {
	var keywordsJSON *string
	if len(keywords) > 0 {
		data, err := json.Marshal(keywords)
		if err != nil {
			return 0, err
		}
		s := string(data)
		keywordsJSON = &s
	}

	result, err := db.conn.Exec(
		`INSERT INTO stories (slug, title, category, keywords) VALUES (?, ?, ?, ?)`,
		slug, title, category, keywordsJSON,
	)
	if err != nil {
		// Duplicate slug constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetStoryBySlug returns a story by slug, or nil when absent.
func (db *DB) GetStoryBySlug(slug string) (*Story, error) {
	row := db.conn.QueryRow(
		`SELECT id, slug, title, category, narrative_arc, synthesis_markdown, keywords,
		is_active, created_at, updated_at
		FROM stories WHERE slug = ?`, slug,
	)
	return scanStory(row)
}

// GetStory returns a story by ID, or nil when absent.
func (db *DB) GetStory(id int64) (*Story, error) {
	row := db.conn.QueryRow(
		`SELECT id, slug, title, category, narrative_arc, synthesis_markdown, keywords,
		is_active, created_at, updated_at
		FROM stories WHERE id = ?`, id,
	)
	return scanStory(row)
}

// GetAllStories returns every tracked story, newest first.
func (db *DB) GetAllStories() ([]Story, error) {
	rows, err := db.conn.Query(
		`SELECT id, slug, title, category, narrative_arc, synthesis_markdown, keywords,
		is_active, created_at, updated_at
		FROM stories ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// GetActiveStories returns the stories the pipeline should analyze.
func (db *DB) GetActiveStories() ([]Story, error) {
	rows, err := db.conn.Query(
		`SELECT id, slug, title, category, narrative_arc, synthesis_markdown, keywords,
		is_active, created_at, updated_at
		FROM stories WHERE is_active = 1 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// ToggleStory flips a story's active state.
func (db *DB) ToggleStory(id int64) error {
	_, err := db.conn.Exec(
		`UPDATE stories SET is_active = 1 - is_active, updated_at = datetime('now') WHERE id = ?`, id,
	)
	return err
}

// UpdateStoryNarrative stores the story's arc and synthesis markdown as
// reported by the intelligence provider.
func (db *DB) UpdateStoryNarrative(id int64, narrativeArc, synthesisMarkdown *string) error {
	_, err := db.conn.Exec(
		`UPDATE stories SET narrative_arc = ?, synthesis_markdown = ?, updated_at = datetime('now')
		WHERE id = ?`,
		narrativeArc, synthesisMarkdown, id,
	)
	return err
}

// DeleteStory removes a story and everything hanging off it.
func (db *DB) DeleteStory(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"events", "predictions", "contradictions", "relations", "snapshots"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE story_id = ?", id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM stories WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// GetStats returns aggregate counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM stories", &stats.TotalStories},
		{"SELECT COUNT(*) FROM stories WHERE is_active = 1", &stats.ActiveStories},
		{"SELECT COUNT(*) FROM events", &stats.TotalEvents},
		{"SELECT COUNT(*) FROM predictions", &stats.Predictions},
		{"SELECT COUNT(*) FROM contradictions", &stats.Contradictions},
		{"SELECT COUNT(*) FROM relations", &stats.Relations},
		{"SELECT COUNT(*) FROM snapshots", &stats.Snapshots},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func scanStory(row *sql.Row) (*Story, error) {
	var s Story
	var keywordsJSON *string
	var active int
	err := row.Scan(&s.ID, &s.Slug, &s.Title, &s.Category, &s.NarrativeArc,
		&s.SynthesisMarkdown, &keywordsJSON, &active, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.IsActive = active != 0
	decodeKeywords(keywordsJSON, &s)
	return &s, nil
}

func scanStories(rows *sql.Rows) ([]Story, error) {
	var stories []Story
	for rows.Next() {
		var s Story
		var keywordsJSON *string
		var active int
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.Category, &s.NarrativeArc,
			&s.SynthesisMarkdown, &keywordsJSON, &active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.IsActive = active != 0
		decodeKeywords(keywordsJSON, &s)
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

func decodeKeywords(keywordsJSON *string, s *Story) {
	if keywordsJSON == nil {
		return
	}
	if err := json.Unmarshal([]byte(*keywordsJSON), &s.Keywords); err != nil {
		s.Keywords = nil
	}
}
