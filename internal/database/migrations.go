package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS stories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'politics',
    narrative_arc TEXT,
    synthesis_markdown TEXT,
    keywords TEXT,
    is_active INTEGER DEFAULT 1,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    story_id INTEGER NOT NULL REFERENCES stories(id),
    date TEXT NOT NULL,
    title TEXT NOT NULL,
    summary TEXT,
    narrative_phase TEXT NOT NULL DEFAULT 'developing',
    fact_density REAL DEFAULT 0,
    density_checked INTEGER DEFAULT 0,
    sources TEXT,
    synthesis_id TEXT,
    similarity REAL DEFAULT 0,
    collected_at TEXT DEFAULT (datetime('now')),
    UNIQUE (story_id, date, title)
);

CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    story_id INTEGER NOT NULL REFERENCES stories(id),
    prediction TEXT NOT NULL,
    probability REAL NOT NULL,
    type TEXT,
    timeframe TEXT NOT NULL,
    rationale TEXT
);

CREATE TABLE IF NOT EXISTS contradictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    story_id INTEGER NOT NULL REFERENCES stories(id),
    date TEXT NOT NULL,
    type TEXT NOT NULL,
    claim_a TEXT NOT NULL,
    claim_b TEXT NOT NULL,
    source_a TEXT,
    source_b TEXT
);

CREATE TABLE IF NOT EXISTS relations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    story_id INTEGER NOT NULL REFERENCES stories(id),
    cause_text TEXT NOT NULL,
    effect_text TEXT NOT NULL,
    relation_type TEXT NOT NULL DEFAULT 'causes',
    confidence REAL DEFAULT 0,
    source_articles TEXT
);

CREATE TABLE IF NOT EXISTS snapshots (
    story_id INTEGER PRIMARY KEY REFERENCES stories(id),
    series_json TEXT NOT NULL,
    graph_json TEXT NOT NULL,
    generated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_events_story ON events(story_id);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(story_id, date);
CREATE INDEX IF NOT EXISTS idx_predictions_story ON predictions(story_id);
CREATE INDEX IF NOT EXISTS idx_contradictions_story ON contradictions(story_id);
CREATE INDEX IF NOT EXISTS idx_relations_story ON relations(story_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
